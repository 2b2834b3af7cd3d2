package app

import (
	"context"
	"strings"
	"time"

	"github.com/sweeney/oledclock/internal/button"
)

// Per-page render intervals.
const (
	IntervalMenu         = 80 * time.Millisecond
	IntervalClock        = 100 * time.Millisecond
	IntervalCalendar     = 80 * time.Millisecond
	IntervalWeather      = 200 * time.Millisecond
	IntervalTimerRunning = 50 * time.Millisecond
	IntervalTimerEditing = 80 * time.Millisecond
	IntervalStopwatch    = 50 * time.Millisecond
)

// Config tunes controller behaviour.
type Config struct {
	// DefaultLocation is used when no location has been saved.
	DefaultLocation string
	// WeatherStaleAfter is the cache age beyond which a fetch is attempted.
	WeatherStaleAfter time.Duration
	// FetchTimeout bounds a single weather fetch.
	FetchTimeout time.Duration
}

// DefaultConfig returns the device defaults.
func DefaultConfig() Config {
	return Config{
		DefaultLocation:   "kunming",
		WeatherStaleAfter: 10 * time.Minute,
		FetchTimeout:      8 * time.Second,
	}
}

// Deps are the controller's collaborators. Presenter may be nil.
type Deps struct {
	Time      TimeSource
	Network   Network
	Settings  Settings
	Alert     Alert
	Presenter Presenter
}

// page is one entry of the dispatch table.
type page struct {
	// enter runs when the page is selected from the menu; may be nil.
	enter func(now time.Time)
	// handle applies gestures and per-tick housekeeping.
	handle func(g button.Gestures, now time.Time)
	// view projects the state for the renderer; nil skips the render.
	view     func(now time.Time) View
	interval func() time.Duration
}

// Controller is the application mode state machine.
// Not safe for concurrent use; the scheduler owns it.
type Controller struct {
	cfg   Config
	deps  Deps
	state State
	pages [ModeStopwatch + 1]page

	events []Event
}

// NewController creates a controller in the menu.
func NewController(cfg Config, deps Deps) *Controller {
	c := &Controller{
		cfg:   cfg,
		deps:  deps,
		state: NewState(),
	}
	c.pages = [...]page{
		ModeMenu:      {handle: c.handleMenu, view: c.menuView, interval: fixed(IntervalMenu)},
		ModeClock:     {handle: ignore, view: c.clockView, interval: fixed(IntervalClock)},
		ModeCalendar:  {enter: c.enterCalendar, handle: c.handleCalendar, view: c.calendarView, interval: fixed(IntervalCalendar)},
		ModeWeather:   {handle: ignore, view: c.weatherView, interval: fixed(IntervalWeather)},
		ModeTimer:     {enter: c.enterTimer, handle: c.handleTimer, view: c.timerView, interval: c.timerInterval},
		ModeStopwatch: {handle: c.handleStopwatch, view: c.stopwatchView, interval: fixed(IntervalStopwatch)},
	}
	return c
}

// Advance runs one controller step: gestures are applied to the active page,
// then the (possibly new) active page is projected for rendering.
func (c *Controller) Advance(g button.Gestures, now time.Time) RenderRequest {
	c.events = nil

	if c.state.Mode != ModeMenu && g.Center == button.LongPress {
		c.enter(ModeMenu, now)
	} else {
		c.pages[c.state.Mode].handle(g, now)
	}

	p := c.pages[c.state.Mode]
	return RenderRequest{
		View:     p.view(now),
		Interval: p.interval(),
		Events:   c.events,
	}
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	return c.state
}

// Mode returns the active page.
func (c *Controller) Mode() Mode {
	return c.state.Mode
}

// InvalidateWeather forgets the last fetch time so the next weather render
// fetches again. The cached report is kept for display.
func (c *Controller) InvalidateWeather() {
	c.state.Weather.Fetched = time.Time{}
}

// Location returns the weather location in effect.
func (c *Controller) Location() string {
	if c.deps.Settings != nil {
		if v, ok := c.deps.Settings.Get(SettingLocation); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return c.cfg.DefaultLocation
}

func (c *Controller) enter(m Mode, now time.Time) {
	from := c.state.Mode
	c.state.Mode = m
	if e := c.pages[m].enter; e != nil {
		e(now)
	}
	c.emit(now, EventModeChanged, "from "+from.String())
}

func (c *Controller) emit(now time.Time, t EventType, detail string) {
	c.events = append(c.events, Event{
		Timestamp: now,
		Type:      t,
		Mode:      c.state.Mode,
		Detail:    detail,
	})
}

func (c *Controller) present(v View) {
	if c.deps.Presenter != nil {
		c.deps.Presenter.Present(v)
	}
}

// ensureSynced performs the one-time blocking time sync. It reports whether a
// sync attempt was made during this call. The flag is set whatever the
// outcome so a failing time source is not retried on every tick.
func (c *Controller) ensureSynced(now time.Time) bool {
	if c.state.Synced {
		return false
	}

	err := c.deps.Time.Sync(context.Background(), func(attempt, tries int) {
		c.present(SyncView{Attempt: attempt, Tries: tries})
	})
	c.state.Synced = true

	if err != nil {
		c.emit(now, EventClockSyncFailed, err.Error())
	} else {
		c.emit(now, EventClockSynced, "")
	}
	return true
}

// isPress reports a click of either kind.
func isPress(g button.Gesture) bool {
	return g == button.Click || g == button.DoubleClick
}

func ignore(button.Gestures, time.Time) {}

func fixed(d time.Duration) func() time.Duration {
	return func() time.Duration { return d }
}
