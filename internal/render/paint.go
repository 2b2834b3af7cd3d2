package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/sweeney/oledclock/internal/app"
)

// StatusBar is the strip drawn above every page.
type StatusBar struct {
	WiFi    bool
	Battery int // percent, negative when unknown
}

// Frame is everything needed to draw one screen.
type Frame struct {
	Status StatusBar
	View   app.View
}

// Layout constants.
const (
	statusHeight = 11
	contentTop   = statusHeight + 1
)

// Paint clears c and draws f onto it.
func Paint(c *Canvas, f Frame) {
	c.Clear()
	if f.View == nil {
		return
	}
	paintStatus(c, f.Status, f.View.Mode())

	switch v := f.View.(type) {
	case app.MenuView:
		paintMenu(c, v)
	case app.ClockView:
		paintClock(c, v)
	case app.CalendarView:
		paintCalendar(c, v)
	case app.WeatherView:
		paintWeather(c, v)
	case app.TimerView:
		paintTimer(c, v)
	case app.StopwatchView:
		paintStopwatch(c, v)
	case app.SyncView:
		paintSync(c, v)
	case app.LoadingView:
		paintLoading(c, v)
	}
}

func paintStatus(c *Canvas, s StatusBar, mode app.Mode) {
	c.WiFi(0, 0, s.WiFi)
	c.CenterSmallText(Width/2, 7, mode.String(), true)
	c.Battery(Width-18, 0, s.Battery)
	c.HLine(0, statusHeight-1, Width)
}

func paintMenu(c *Canvas, v app.MenuView) {
	c.CenterSmallText(Width/2, contentTop+8, v.Prev, true)

	// Selected entry, inverted.
	c.FillRect(14, contentTop+12, Width-28, 17, true)
	c.CenterText(Width/2, contentTop+25, v.Current, false)

	c.CenterSmallText(Width/2, contentTop+39, v.Next, true)

	// Position dots.
	x := Width/2 - (app.MenuItems*6)/2
	for i := 0; i < app.MenuItems; i++ {
		if i == v.Index {
			c.FillRect(x+i*6, Height-4, 3, 3, true)
		} else {
			c.Set(x+i*6+1, Height-3, true)
		}
	}
}

// Large seven-segment digit geometry.
const (
	bigW = 18
	bigH = 30
	bigT = 3
)

func paintClock(c *Canvas, v app.ClockView) {
	t := v.Now
	y := contentTop + 2
	c.Digit(4, y, bigW, bigH, bigT, t.Hour()/10)
	c.Digit(26, y, bigW, bigH, bigT, t.Hour()%10)
	c.Colon(49, y, bigH, bigT)
	c.Digit(56, y, bigW, bigH, bigT, t.Minute()/10)
	c.Digit(78, y, bigW, bigH, bigT, t.Minute()%10)
	c.Text(101, y+bigH-1, fmt.Sprintf("%02d", t.Second()), true)

	c.CenterText(Width/2, Height-2, t.Format("Mon 2006-01-02"), true)
}

// Calendar grid geometry.
const (
	calCell   = 14
	calRowH   = 9
	calHeader = contentTop + 6
	calTop    = contentTop + 8
	calWidth  = 7*calCell + 3
	calRows   = 5
)

var weekdayInitials = [7]string{"S", "M", "T", "W", "T", "F", "S"}

// calendarCell returns the grid slot of a day. Days that would land past the
// fifth row wrap into the first.
func calendarCell(firstWeekday, day int) (col, row int) {
	i := firstWeekday + day - 1
	i %= 7 * calRows
	return i % 7, i / 7
}

func paintCalendar(c *Canvas, v app.CalendarView) {
	for i, s := range weekdayInitials {
		c.CenterSmallText(1+i*calCell+calCell/2, calHeader, s, true)
	}
	for day := 1; day <= v.Days; day++ {
		col, row := calendarCell(v.FirstWeekday, day)
		x := 1 + col*calCell
		y := calTop + row*calRowH
		label := fmt.Sprint(day)
		if day == v.Today {
			c.FillRect(x, y, calCell-1, calRowH, true)
			c.CenterSmallText(x+calCell/2, y+calRowH-2, label, false)
			continue
		}
		c.CenterSmallText(x+calCell/2, y+calRowH-2, label, true)
	}

	c.VLine(calWidth, contentTop, Height-contentTop)
	panel := calWidth + (Width-calWidth)/2
	c.CenterSmallText(panel, contentTop+14, fmt.Sprint(v.Year), true)
	month := time.Month(v.Month)
	if month >= time.January && month <= time.December {
		c.CenterText(panel, contentTop+32, month.String()[:3], true)
	}
	c.CenterSmallText(panel, contentTop+44, fmt.Sprintf("%02d", v.Month), true)
}

func paintWeather(c *Canvas, v app.WeatherView) {
	if !v.Fetched {
		c.CenterText(Width/2, contentTop+20, v.Location, true)
		msg := "No data"
		if !v.Connected {
			msg = "Offline"
		}
		c.CenterSmallText(Width/2, contentTop+34, msg, true)
		return
	}

	c.WeatherIcon(4, contentTop+6, v.Report.Icon)

	x := 44
	c.Text(x, contentTop+12, placeName(v), true)

	temp := fmt.Sprint(v.Report.Temperature)
	c.Text(x, contentTop+30, temp, true)
	dx := x + TextWidth(temp) + 1
	c.Rect(dx, contentTop+19, 3, 3)
	c.Text(dx+4, contentTop+30, "C", true)

	c.SmallText(x, contentTop+42, v.Report.Label(), true)
	if !v.Connected {
		c.SmallText(x, contentTop+50, "offline "+age(v.Age), true)
	} else if v.Age >= time.Minute {
		c.SmallText(x, contentTop+50, age(v.Age)+" ago", true)
	}
}

// placeName prefers the reported city and falls back to the configured
// location when the city cannot be drawn with the panel font.
func placeName(v app.WeatherView) string {
	if v.Report.City != "" && printable(v.Report.City) {
		return v.Report.City
	}
	return v.Location
}

func printable(s string) bool {
	for _, r := range s {
		if r < 0x20 || r > 0x7e {
			return false
		}
	}
	return true
}

func age(d time.Duration) string {
	switch {
	case d >= time.Hour:
		return fmt.Sprintf("%dh", int(d/time.Hour))
	default:
		return fmt.Sprintf("%dm", int(d/time.Minute))
	}
}

func paintTimer(c *Canvas, v app.TimerView) {
	digits := v.Digits
	if v.Running {
		secs := int(v.Remaining / time.Second)
		if secs < 0 {
			secs = 0
		}
		m, s := secs/60, secs%60
		if m > 99 {
			m = 99
		}
		digits = [4]int{m / 10, m % 10, s / 10, s % 10}
	}

	y := contentTop + 2
	xs := [4]int{10, 32, 62, 84}
	for i, d := range digits {
		c.Digit(xs[i], y, bigW, bigH, bigT, d)
	}
	c.Colon(55, y, bigH, bigT)

	if v.Running {
		c.CenterSmallText(Width/2, Height-3, "RUNNING", true)
		return
	}
	if v.Cursor >= 0 && v.Cursor < len(xs) {
		c.FillRect(xs[v.Cursor], y+bigH+3, bigW, 2, true)
	}
	c.CenterSmallText(Width/2, Height-3, "SET", true)
}

// Small seven-segment digit geometry.
const (
	smallW = 13
	smallH = 24
	smallT = 2
)

func paintStopwatch(c *Canvas, v app.StopwatchView) {
	y := contentTop + 6
	x := 6
	for _, d := range []int{v.Seconds / 100, v.Seconds / 10 % 10, v.Seconds % 10} {
		c.Digit(x, y, smallW, smallH, smallT, d)
		x += smallW + 4
	}
	c.FillRect(x-1, y+smallH-3, 3, 3, true)
	x += 5
	for _, d := range []int{v.Millis / 100, v.Millis / 10 % 10, v.Millis % 10} {
		c.Digit(x, y, smallW, smallH, smallT, d)
		x += smallW + 4
	}

	state := "PAUSED"
	if v.Running {
		state = "RUNNING"
	} else if v.Elapsed == 0 {
		state = "READY"
	}
	c.CenterSmallText(Width/2, Height-3, state, true)
}

func paintSync(c *Canvas, v app.SyncView) {
	c.CenterText(Width/2, contentTop+20, "Syncing time", true)
	dots := strings.Repeat(".", v.Attempt%4)
	c.CenterText(Width/2, contentTop+34, dots, true)
	if v.Tries > 0 {
		c.CenterSmallText(Width/2, Height-3, fmt.Sprintf("%d/%d", v.Attempt, v.Tries), true)
	}
}

func paintLoading(c *Canvas, v app.LoadingView) {
	c.CenterText(Width/2, contentTop+20, "Loading", true)
	c.CenterSmallText(Width/2, contentTop+34, v.Location, true)
}
