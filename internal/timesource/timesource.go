// Package timesource provides wall-clock time for the clock and calendar pages.
package timesource

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/beevik/ntp"
	"github.com/jonboulle/clockwork"
)

// ErrUnavailable is returned by WallClock before a successful sync.
var ErrUnavailable = errors.New("timesource: wall clock not synchronized")

// Config controls NTP synchronization.
type Config struct {
	Server   string
	Tries    int
	Interval time.Duration // pause between failed attempts
	Timeout  time.Duration // per-query timeout
	Retry    time.Duration // background re-query period after a failed Sync; 0 disables
	Location *time.Location
}

// DefaultConfig returns the device defaults: 20 attempts, 80ms apart, then
// one background query every 30s until a sync succeeds.
func DefaultConfig() Config {
	return Config{
		Server:   "pool.ntp.org",
		Tries:    20,
		Interval: 80 * time.Millisecond,
		Timeout:  time.Second,
		Retry:    30 * time.Second,
		Location: time.Local,
	}
}

// queryFunc returns the local clock's offset from the server.
type queryFunc func(server string, timeout time.Duration) (time.Duration, error)

// NTP applies an offset measured against an NTP server to the local clock.
//
// Once Sync has failed, WallClock keeps returning ErrUnavailable but starts a
// single background query at most every cfg.Retry until one succeeds.
type NTP struct {
	cfg   Config
	clock clockwork.Clock
	query queryFunc

	mu          sync.Mutex
	synced      bool
	offset      time.Duration
	attempted   bool
	lastAttempt time.Time
	retrying    bool
}

// NewNTP creates an unsynchronized NTP time source.
func NewNTP(cfg Config, clock clockwork.Clock) *NTP {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Tries < 1 {
		cfg.Tries = 1
	}
	return &NTP{cfg: cfg, clock: clock, query: queryNTP}
}

func queryNTP(server string, timeout time.Duration) (time.Duration, error) {
	resp, err := ntp.QueryWithOptions(server, ntp.QueryOptions{Timeout: timeout})
	if err != nil {
		return 0, err
	}
	if err := resp.Validate(); err != nil {
		return 0, err
	}
	return resp.ClockOffset, nil
}

// Sync queries the server up to cfg.Tries times, sleeping cfg.Interval between
// failures. A later Sync may refresh the offset.
func (n *NTP) Sync(ctx context.Context, progress func(attempt, tries int)) error {
	var lastErr error
	for attempt := 1; attempt <= n.cfg.Tries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if progress != nil {
			progress(attempt, n.cfg.Tries)
		}

		offset, err := n.query(n.cfg.Server, n.cfg.Timeout)
		n.record(offset, err)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt < n.cfg.Tries {
			n.clock.Sleep(n.cfg.Interval)
		}
	}
	return fmt.Errorf("ntp sync %s after %d attempts: %w", n.cfg.Server, n.cfg.Tries, lastErr)
}

func (n *NTP) record(offset time.Duration, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.attempted = true
	n.lastAttempt = n.clock.Now()
	if err == nil {
		n.offset = offset
		n.synced = true
	}
}

// WallClock returns corrected local time, or ErrUnavailable before a sync.
func (n *NTP) WallClock() (time.Time, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.synced {
		n.retryLocked()
		return time.Time{}, ErrUnavailable
	}
	return n.clock.Now().Add(n.offset).In(n.cfg.Location), nil
}

// retryLocked starts one background query when a failed Sync is due for
// another try. n.mu must be held.
func (n *NTP) retryLocked() {
	if !n.attempted || n.retrying || n.cfg.Retry <= 0 {
		return
	}
	if n.clock.Since(n.lastAttempt) < n.cfg.Retry {
		return
	}
	n.retrying = true
	go func() {
		offset, err := n.query(n.cfg.Server, n.cfg.Timeout)
		n.record(offset, err)
		n.mu.Lock()
		n.retrying = false
		n.mu.Unlock()
	}()
}

// Synced reports whether a sync has succeeded.
func (n *NTP) Synced() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.synced
}

// Offset returns the last measured correction.
func (n *NTP) Offset() time.Duration {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.offset
}

// System trusts the host clock, for hosts that already run an NTP daemon.
type System struct {
	clock clockwork.Clock
	loc   *time.Location
}

// NewSystem creates a time source that is always available.
func NewSystem(clock clockwork.Clock, loc *time.Location) *System {
	if loc == nil {
		loc = time.Local
	}
	return &System{clock: clock, loc: loc}
}

// Sync reports a single immediate successful attempt.
func (s *System) Sync(ctx context.Context, progress func(attempt, tries int)) error {
	if progress != nil {
		progress(1, 1)
	}
	return nil
}

// WallClock returns the host time.
func (s *System) WallClock() (time.Time, error) {
	return s.clock.Now().In(s.loc), nil
}

// Synced is always true.
func (s *System) Synced() bool {
	return true
}
