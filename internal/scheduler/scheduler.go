// Package scheduler runs the cooperative main loop: sample the buttons,
// advance the controller, render, then sleep in short slices while still
// sampling the buttons so no gesture is lost.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/sweeney/oledclock/internal/app"
	"github.com/sweeney/oledclock/internal/button"
	"github.com/sweeney/oledclock/internal/gpio"
	"github.com/sweeney/oledclock/internal/mqtt"
	"github.com/sweeney/oledclock/internal/network"
	"github.com/sweeney/oledclock/internal/render"
	"github.com/sweeney/oledclock/internal/status"
)

// DefaultSlice is the input sampling granularity during sleeps.
const DefaultSlice = 14 * time.Millisecond

// Controller is the page state machine the loop drives.
type Controller interface {
	Advance(g button.Gestures, now time.Time) app.RenderRequest
	State() app.State
	Location() string
	InvalidateWeather()
}

// NetworkInfo supplies host network details for heartbeats.
type NetworkInfo interface {
	Info() *network.Info
}

// Config tunes the loop.
type Config struct {
	Slice     time.Duration
	Heartbeat time.Duration // 0 disables
}

// Deps are the loop's collaborators. Publisher, MQTTStatus, Tracker, Network
// and LocationChanged may be nil.
type Deps struct {
	Clock      clockwork.Clock
	Reader     gpio.Reader
	Panel      *button.Panel
	Controller Controller
	Renderer   Renderer
	Indicators *Indicators

	Publisher  mqtt.Publisher
	MQTTStatus mqtt.ConnectionStatus
	Tracker    *status.Tracker
	Network    NetworkInfo

	// LocationChanged is signalled by the web server after a new weather
	// location is saved.
	LocationChanged <-chan struct{}
}

// Scheduler owns the loop. Not safe for concurrent use.
type Scheduler struct {
	cfg  Config
	deps Deps

	location      string
	frames        int
	lastHeartbeat time.Time
	readErr       string
}

// New creates a scheduler.
func New(cfg Config, deps Deps) *Scheduler {
	if cfg.Slice <= 0 {
		cfg.Slice = DefaultSlice
	}
	if deps.Publisher == nil {
		deps.Publisher = mqtt.Nop{}
	}
	return &Scheduler{
		cfg:           cfg,
		deps:          deps,
		location:      deps.Controller.Location(),
		lastHeartbeat: deps.Clock.Now(),
	}
}

// Poll samples the buttons once and feeds the classifiers.
// A failed read is logged once per distinct error and skipped.
func (s *Scheduler) Poll() {
	sample, err := s.deps.Reader.Read()
	if err != nil {
		if msg := err.Error(); msg != s.readErr {
			log.Printf("gpio read error: %v", err)
			s.readErr = msg
		}
		return
	}
	if s.readErr != "" {
		log.Printf("gpio read recovered")
		s.readErr = ""
	}
	s.deps.Panel.Poll(button.Input{
		Left:   sample.Left,
		Center: sample.Center,
		Right:  sample.Right,
		Time:   s.deps.Clock.Now(),
	})
}

// SleepPolling waits for total, sampling the buttons after every slice.
// It returns early when ctx is done.
func (s *Scheduler) SleepPolling(ctx context.Context, total time.Duration) {
	for total > 0 {
		if ctx.Err() != nil {
			return
		}
		d := s.cfg.Slice
		if d > total {
			d = total
		}
		s.deps.Clock.Sleep(d)
		total -= d
		s.Poll()
	}
}

// Tick runs one loop iteration and returns how long to sleep before the next.
func (s *Scheduler) Tick() time.Duration {
	s.applyLocationChange()

	s.Poll()
	g := s.deps.Panel.Take()
	now := s.deps.Clock.Now()
	req := s.deps.Controller.Advance(g, now)

	if req.View != nil {
		s.render(req.View)
	}
	for _, e := range req.Events {
		s.publish(e)
	}
	s.updateTracker(now)
	s.maybeHeartbeat(now)
	return req.Interval
}

// Run loops until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		interval := s.Tick()
		if interval <= 0 {
			interval = s.cfg.Slice
		}
		s.SleepPolling(ctx, interval)
	}
	return nil
}

// Frames returns the number of page frames rendered by Tick.
func (s *Scheduler) Frames() int {
	return s.frames
}

func (s *Scheduler) applyLocationChange() {
	if s.deps.LocationChanged == nil {
		return
	}
	changed := false
drain:
	for {
		select {
		case <-s.deps.LocationChanged:
			changed = true
		default:
			break drain
		}
	}
	if !changed {
		return
	}
	s.deps.Controller.InvalidateWeather()
	s.location = s.deps.Controller.Location()
	log.Printf("weather location now %q, cache invalidated", s.location)
}

func (s *Scheduler) render(v app.View) {
	f := render.Frame{View: v}
	if s.deps.Indicators != nil {
		f.Status = s.deps.Indicators.Bar()
	}
	if err := s.deps.Renderer.Render(f); err != nil {
		log.Printf("render: %v", err)
		return
	}
	s.frames++
}

func (s *Scheduler) publish(e app.Event) {
	if e.Detail != "" {
		log.Printf("event: %s mode=%s (%s)", e.Type, e.Mode, e.Detail)
	} else {
		log.Printf("event: %s mode=%s", e.Type, e.Mode)
	}
	if err := s.deps.Publisher.Publish(e); err != nil {
		log.Printf("publish error: %v", err)
	}
}

func (s *Scheduler) updateTracker(now time.Time) {
	t := s.deps.Tracker
	if t == nil {
		return
	}
	t.Update(status.DeviceFromState(s.deps.Controller.State(), s.location, s.deps.Panel.Dropped(), now))
	if s.deps.Indicators != nil {
		bar := s.deps.Indicators.Bar()
		t.SetIndicators(bar.WiFi, bar.Battery)
	}
	t.SetFrames(s.frames)
	if s.deps.MQTTStatus != nil {
		t.SetMQTTConnected(s.deps.MQTTStatus.IsConnected())
	}
}

func (s *Scheduler) maybeHeartbeat(now time.Time) {
	if s.cfg.Heartbeat <= 0 || now.Sub(s.lastHeartbeat) < s.cfg.Heartbeat {
		return
	}
	s.lastHeartbeat = now

	hb := mqtt.SystemEvent{Timestamp: now, Event: "HEARTBEAT"}
	if t := s.deps.Tracker; t != nil {
		if s.deps.Network != nil {
			t.SetNetwork(s.deps.Network.Info())
		}
		snap := t.Snapshot()
		hb.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
		log.Printf("heartbeat: uptime=%v mode=%s frames=%d dropped=%d",
			snap.Uptime().Truncate(time.Second), snap.Device.Mode, snap.Frames, snap.Device.DroppedGestures)
	}
	if err := s.deps.Publisher.PublishSystem(hb); err != nil {
		log.Printf("heartbeat publish error: %v", err)
	}
}
