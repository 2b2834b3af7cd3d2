package app

import (
	"context"
	"time"

	"github.com/sweeney/oledclock/internal/button"
)

// maxStopwatchSeconds is the largest seconds value the stopwatch can show.
const maxStopwatchSeconds = 999

// Menu

func (c *Controller) handleMenu(g button.Gestures, now time.Time) {
	m := &c.state.Menu
	if isPress(g.Left) {
		m.Index = (m.Index + MenuItems - 1) % MenuItems
	}
	if isPress(g.Right) {
		m.Index = (m.Index + 1) % MenuItems
	}
	if isPress(g.Center) {
		c.enter(menuEntries[m.Index].mode, now)
	}
}

func (c *Controller) menuView(now time.Time) View {
	i := c.state.Menu.Index
	return MenuView{
		Index:   i,
		Prev:    menuEntries[(i+MenuItems-1)%MenuItems].label,
		Current: menuEntries[i].label,
		Next:    menuEntries[(i+1)%MenuItems].label,
	}
}

// Clock

func (c *Controller) clockView(now time.Time) View {
	c.ensureSynced(now)
	wall, err := c.deps.Time.WallClock()
	if err != nil {
		return nil
	}
	return ClockView{Now: wall}
}

// Calendar

func (c *Controller) enterCalendar(now time.Time) {
	c.resetCalendar()
}

// resetCalendar moves the calendar to today; a no-op without wall-clock time.
func (c *Controller) resetCalendar() {
	wall, err := c.deps.Time.WallClock()
	if err != nil {
		return
	}
	c.state.Calendar = CalendarState{Year: wall.Year(), Month: int(wall.Month())}
}

func (c *Controller) handleCalendar(g button.Gestures, now time.Time) {
	cal := &c.state.Calendar
	if isPress(g.Left) {
		*cal = cal.Prev()
	}
	if isPress(g.Right) {
		*cal = cal.Next()
	}
	if g.Center == button.DoubleClick {
		c.resetCalendar()
	}
}

func (c *Controller) calendarView(now time.Time) View {
	if c.ensureSynced(now) {
		c.resetCalendar()
	}

	cal := c.state.Calendar
	v := CalendarView{
		Year:         cal.Year,
		Month:        cal.Month,
		Days:         DaysInMonth(cal.Year, cal.Month),
		FirstWeekday: FirstWeekday(cal.Year, cal.Month),
	}
	if wall, err := c.deps.Time.WallClock(); err == nil {
		if wall.Year() == cal.Year && int(wall.Month()) == cal.Month {
			v.Today = wall.Day()
		}
	}
	return v
}

// Weather

func (c *Controller) weatherView(now time.Time) View {
	w := &c.state.Weather
	connected := c.deps.Network.Connected()

	if connected && (w.Fetched.IsZero() || now.Sub(w.Fetched) > c.cfg.WeatherStaleAfter) {
		c.fetchWeather(now)
	}

	v := WeatherView{
		Location:  c.Location(),
		Report:    w.Report,
		Fetched:   !w.Fetched.IsZero(),
		Connected: connected,
	}
	if v.Fetched {
		v.Age = now.Sub(w.Fetched)
	}
	return v
}

// fetchWeather makes one bounded fetch attempt. Failure leaves the cache and
// its timestamp untouched so the next render retries.
func (c *Controller) fetchWeather(now time.Time) {
	location := c.Location()
	c.present(LoadingView{Location: location})

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.FetchTimeout)
	defer cancel()

	report, err := c.deps.Network.FetchWeather(ctx, location)
	if err != nil {
		c.emit(now, EventWeatherFailed, err.Error())
		return
	}

	c.state.Weather = WeatherCache{Fetched: now, Report: report}
	c.emit(now, EventWeatherUpdated, report.City+" "+report.Temperature+"C "+report.Condition)
}

// Timer

func (c *Controller) enterTimer(now time.Time) {
	c.state.Countdown.Running = false
	c.state.Countdown.Cursor = 0
}

func (c *Controller) handleTimer(g button.Gestures, now time.Time) {
	t := &c.state.Countdown

	if t.Running {
		if !now.Before(t.End) {
			t.Running = false
			c.emit(now, EventTimerFinished, "")
			if err := c.deps.Alert.Play(); err != nil {
				c.emit(now, EventAlertFailed, err.Error())
			}
		}
		return
	}

	if isPress(g.Left) {
		t.Cursor = (t.Cursor + len(t.Digits) - 1) % len(t.Digits)
	}
	if isPress(g.Right) {
		t.Cursor = (t.Cursor + 1) % len(t.Digits)
	}

	switch g.Center {
	case button.Click:
		t.Digits[t.Cursor] = (t.Digits[t.Cursor] + 1) % 10
	case button.DoubleClick:
		total := t.Total()
		if total <= 0 {
			return
		}
		t.Running = true
		t.End = now.Add(total)
		c.emit(now, EventTimerStarted, total.String())
	}
}

func (c *Controller) timerView(now time.Time) View {
	t := c.state.Countdown
	v := TimerView{
		Digits:  t.Digits,
		Cursor:  t.Cursor,
		Running: t.Running,
	}
	if t.Running {
		remaining := t.End.Sub(now)
		if remaining < 0 {
			remaining = 0
		}
		secs := int(remaining / time.Second)
		mins, secs := secs/60, secs%60
		v.Remaining = remaining
		v.Digits = [4]int{mins / 10 % 10, mins % 10, secs / 10, secs % 10}
	}
	return v
}

func (c *Controller) timerInterval() time.Duration {
	if c.state.Countdown.Running {
		return IntervalTimerRunning
	}
	return IntervalTimerEditing
}

// Stopwatch

func (c *Controller) handleStopwatch(g button.Gestures, now time.Time) {
	s := &c.state.Stopwatch
	switch g.Center {
	case button.Click:
		if s.Running {
			s.Accumulated += now.Sub(s.StartedAt)
			s.Running = false
			s.StartedAt = time.Time{}
		} else {
			s.Running = true
			s.StartedAt = now
		}
	case button.DoubleClick:
		*s = StopwatchState{}
	}
}

func (c *Controller) stopwatchView(now time.Time) View {
	s := c.state.Stopwatch
	elapsed := s.Elapsed(now)

	ms := int(elapsed / time.Millisecond)
	if ms < 0 {
		ms = 0
	}
	// Only the seconds saturate; the millisecond digits keep running.
	secs := ms / 1000
	if secs > maxStopwatchSeconds {
		secs = maxStopwatchSeconds
	}

	return StopwatchView{
		Running: s.Running,
		Elapsed: elapsed,
		Seconds: secs,
		Millis:  ms % 1000,
	}
}
