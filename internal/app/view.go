package app

import (
	"time"

	"github.com/sweeney/oledclock/internal/weather"
)

// View is an immutable projection of one page for the renderer.
// The set of views is closed; renderers switch on the concrete type.
type View interface {
	Mode() Mode
}

// MenuView shows the selected entry between its neighbours.
type MenuView struct {
	Index   int
	Prev    string
	Current string
	Next    string
}

// ClockView shows wall-clock time.
type ClockView struct {
	Now time.Time
}

// CalendarView is one month grid.
type CalendarView struct {
	Year         int
	Month        int
	Days         int
	FirstWeekday int // Sunday = 0
	Today        int // day of month to highlight, 0 when today is not in this month
}

// WeatherView shows the cached report, however old.
type WeatherView struct {
	Location  string
	Report    weather.Report
	Fetched   bool // false until the first successful fetch
	Age       time.Duration
	Connected bool
}

// TimerView shows either the edit buffer or the remaining time.
type TimerView struct {
	Digits    [4]int // MMSS
	Cursor    int
	Running   bool
	Remaining time.Duration
}

// StopwatchView shows elapsed time clamped for display.
type StopwatchView struct {
	Running bool
	Elapsed time.Duration
	Seconds int // 0..999
	Millis  int // 0..999
}

// SyncView is shown while the clock is being synchronized.
type SyncView struct {
	Attempt int
	Tries   int
}

// LoadingView is shown while weather is being fetched.
type LoadingView struct {
	Location string
}

func (MenuView) Mode() Mode      { return ModeMenu }
func (ClockView) Mode() Mode     { return ModeClock }
func (CalendarView) Mode() Mode  { return ModeCalendar }
func (WeatherView) Mode() Mode   { return ModeWeather }
func (TimerView) Mode() Mode     { return ModeTimer }
func (StopwatchView) Mode() Mode { return ModeStopwatch }

// SyncView belongs to whichever page requested the sync; it reports Clock.
func (SyncView) Mode() Mode    { return ModeClock }
func (LoadingView) Mode() Mode { return ModeWeather }
