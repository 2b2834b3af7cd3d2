package button

import "time"

// Debouncer filters contact bounce on a single raw level.
// A raw level becomes stable only after holding unchanged for the debounce
// interval; until then the previous stable level is reported.
type Debouncer struct {
	debounce time.Duration

	raw      bool
	rawSince time.Time
	started  bool

	stable      bool
	stableSince time.Time
}

// NewDebouncer creates a debouncer that starts in the released (false) state.
func NewDebouncer(debounce time.Duration) *Debouncer {
	return &Debouncer{debounce: debounce}
}

// Sample feeds one raw reading and returns the current stable level.
func (d *Debouncer) Sample(raw bool, now time.Time) bool {
	if !d.started {
		d.started = true
		d.rawSince = now
		d.stableSince = now
	}

	if raw != d.raw {
		d.raw = raw
		d.rawSince = now
	}

	if d.stable != d.raw && now.Sub(d.rawSince) >= d.debounce {
		d.stable = d.raw
		d.stableSince = now
	}

	return d.stable
}

// Stable returns the last stable level without sampling.
func (d *Debouncer) Stable() bool {
	return d.stable
}

// StableSince returns when the current stable level was entered.
func (d *Debouncer) StableSince() time.Time {
	return d.stableSince
}
