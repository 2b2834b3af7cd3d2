package scheduler

import (
	"log"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/sweeney/oledclock/internal/app"
	"github.com/sweeney/oledclock/internal/render"
)

// IndicatorRefresh is how often the status bar sources are re-read.
const IndicatorRefresh = time.Second

// Connectivity reports whether the device is online.
type Connectivity interface {
	Connected() bool
}

// Battery reports the charge level, -1 when unknown.
type Battery interface {
	Percent() (int, error)
}

// Indicators caches the status bar values so the slow sources (interface
// scan, sysfs read) are not hit on every frame.
type Indicators struct {
	clock   clockwork.Clock
	net     Connectivity
	battery Battery

	refreshed time.Time
	bar       render.StatusBar
	lastErr   string
}

// NewIndicators creates a status bar source. Either source may be nil.
func NewIndicators(clock clockwork.Clock, net Connectivity, battery Battery) *Indicators {
	return &Indicators{clock: clock, net: net, battery: battery, bar: render.StatusBar{Battery: -1}}
}

// Bar returns the current status bar, refreshing it when due.
func (i *Indicators) Bar() render.StatusBar {
	now := i.clock.Now()
	if !i.refreshed.IsZero() && now.Sub(i.refreshed) < IndicatorRefresh {
		return i.bar
	}
	i.refreshed = now

	if i.net != nil {
		i.bar.WiFi = i.net.Connected()
	}
	if i.battery != nil {
		p, err := i.battery.Percent()
		if err != nil {
			if msg := err.Error(); msg != i.lastErr {
				log.Printf("battery: %v", err)
				i.lastErr = msg
			}
			p = -1
		} else {
			i.lastErr = ""
		}
		i.bar.Battery = p
	}
	return i.bar
}

// Renderer draws a frame.
type Renderer interface {
	Render(f render.Frame) error
}

// Presenter draws views with the current status bar. The controller uses it
// for progress frames during blocking calls.
type Presenter struct {
	renderer   Renderer
	indicators *Indicators
}

// NewPresenter creates a presenter.
func NewPresenter(r Renderer, ind *Indicators) *Presenter {
	return &Presenter{renderer: r, indicators: ind}
}

// Present renders v immediately. Render failures are logged. A nil
// Indicators leaves the status bar empty.
func (p *Presenter) Present(v app.View) {
	f := render.Frame{View: v}
	if p.indicators != nil {
		f.Status = p.indicators.Bar()
	}
	if err := p.renderer.Render(f); err != nil {
		log.Printf("render: %v", err)
	}
}
