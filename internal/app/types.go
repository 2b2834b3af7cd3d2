// Package app contains the application mode controller: the page state machine
// that turns button gestures and elapsed time into what the screen should show.
// Collaborators (time source, network, settings, alert) are injected as
// interfaces; time is always passed in as a time.Time parameter.
package app

import (
	"time"

	"github.com/sweeney/oledclock/internal/weather"
)

// Mode is the active page. Exactly one is active at a time.
type Mode int

const (
	ModeMenu Mode = iota
	ModeClock
	ModeCalendar
	ModeWeather
	ModeTimer
	ModeStopwatch
)

func (m Mode) String() string {
	switch m {
	case ModeMenu:
		return "MENU"
	case ModeClock:
		return "CLOCK"
	case ModeCalendar:
		return "CALENDAR"
	case ModeWeather:
		return "WEATHER"
	case ModeTimer:
		return "TIMER"
	case ModeStopwatch:
		return "STOPWATCH"
	default:
		return "UNKNOWN"
	}
}

// menuEntries lists the pages reachable from the menu, in selection order.
var menuEntries = [...]struct {
	mode  Mode
	label string
}{
	{ModeClock, "Clock"},
	{ModeCalendar, "Calendar"},
	{ModeWeather, "Weather"},
	{ModeTimer, "Timer"},
	{ModeStopwatch, "Stopwatch"},
}

// MenuItems is the number of selectable menu entries.
const MenuItems = len(menuEntries)

// MenuState is the menu selection, always in [0, MenuItems).
type MenuState struct {
	Index int
}

// CalendarState is the displayed month. It follows "today" only when
// explicitly reset.
type CalendarState struct {
	Year  int
	Month int // 1..12
}

// CountdownState is the timer edit buffer and run state.
// Digits are minutes tens, minutes units, seconds tens, seconds units.
type CountdownState struct {
	Digits  [4]int
	Cursor  int
	Running bool
	End     time.Time
}

// Total returns the edit buffer as a duration.
func (c CountdownState) Total() time.Duration {
	minutes := c.Digits[0]*10 + c.Digits[1]
	seconds := c.Digits[2]*10 + c.Digits[3]
	return time.Duration(minutes*60+seconds) * time.Second
}

// StopwatchState accumulates elapsed time across pauses.
type StopwatchState struct {
	Accumulated time.Duration
	Running     bool
	StartedAt   time.Time
}

// Elapsed returns the accumulated time plus the current run, if any.
func (s StopwatchState) Elapsed(now time.Time) time.Duration {
	if !s.Running {
		return s.Accumulated
	}
	return s.Accumulated + now.Sub(s.StartedAt)
}

// WeatherCache holds the last successful fetch. A zero Fetched means never.
type WeatherCache struct {
	Fetched time.Time
	Report  weather.Report
}

// State is the whole application state, owned by the controller.
type State struct {
	Mode      Mode
	Menu      MenuState
	Calendar  CalendarState
	Countdown CountdownState
	Stopwatch StopwatchState
	Weather   WeatherCache
	// Synced is set once the one-time time synchronization has been attempted.
	Synced bool
}

// NewState returns the power-on state: the menu, with the calendar parked on
// a fixed month until it can be reset to today.
func NewState() State {
	return State{
		Mode:     ModeMenu,
		Calendar: CalendarState{Year: 2026, Month: 1},
	}
}

// EventType names a notable controller transition.
type EventType string

const (
	EventModeChanged     EventType = "MODE_CHANGED"
	EventTimerStarted    EventType = "TIMER_STARTED"
	EventTimerFinished   EventType = "TIMER_FINISHED"
	EventAlertFailed     EventType = "ALERT_FAILED"
	EventWeatherUpdated  EventType = "WEATHER_UPDATED"
	EventWeatherFailed   EventType = "WEATHER_FAILED"
	EventClockSynced     EventType = "CLOCK_SYNCED"
	EventClockSyncFailed EventType = "CLOCK_SYNC_FAILED"
)

// Event is a transition worth logging or publishing.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Mode      Mode
	Detail    string
}

// RenderRequest is the outcome of one controller step.
type RenderRequest struct {
	// View is the page projection to draw; nil means skip rendering this tick.
	View View
	// Interval is how long the scheduler should wait before the next tick.
	Interval time.Duration
	// Events lists transitions that happened during the step.
	Events []Event
}
