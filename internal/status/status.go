// Package status provides a thread-safe status tracker for the clock.
// The loop goroutine writes it; HTTP handlers and MQTT heartbeats read it.
package status

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/sweeney/oledclock/internal/app"
	"github.com/sweeney/oledclock/internal/network"
	"github.com/sweeney/oledclock/internal/weather"
)

// Config contains daemon configuration for display.
type Config struct {
	SliceMs     int64
	DebounceMs  int64
	LongPressMs int64
	DoubleMs    int64
	HeartbeatMs int64
	Display     string
	Buttons     string
	Broker      string
	HTTPAddr    string
}

// Device is the part of the snapshot derived from controller state.
type Device struct {
	Mode             app.Mode
	Synced           bool
	Location         string
	WeatherFetched   time.Time // zero until the first successful fetch
	Weather          weather.Report
	TimerRunning     bool
	TimerRemaining   time.Duration
	StopwatchRunning bool
	Stopwatch        time.Duration
	DroppedGestures  int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Device        Device
	WiFi          bool
	Battery       int // percent, -1 when unknown
	Frames        int
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *network.Info
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// WeatherAge returns how old the cached weather is, or -1 when there is none.
func (s Snapshot) WeatherAge() time.Duration {
	if s.Device.WeatherFetched.IsZero() {
		return -1
	}
	return s.Now.Sub(s.Device.WeatherFetched)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	clock clockwork.Clock

	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker started at the clock's current time.
func NewTracker(clock clockwork.Clock, cfg Config) *Tracker {
	return &Tracker{
		clock: clock,
		snap: Snapshot{
			Battery:   -1,
			StartTime: clock.Now(),
			Config:    cfg,
		},
	}
}

// DeviceFromState projects controller state into a Device at now.
func DeviceFromState(st app.State, location string, dropped int, now time.Time) Device {
	d := Device{
		Mode:             st.Mode,
		Synced:           st.Synced,
		Location:         location,
		WeatherFetched:   st.Weather.Fetched,
		Weather:          st.Weather.Report,
		TimerRunning:     st.Countdown.Running,
		StopwatchRunning: st.Stopwatch.Running,
		Stopwatch:        st.Stopwatch.Elapsed(now),
		DroppedGestures:  dropped,
	}
	if st.Countdown.Running {
		if rem := st.Countdown.End.Sub(now); rem > 0 {
			d.TimerRemaining = rem
		}
	}
	return d
}

// Update replaces the device state. Called from the loop on every tick.
func (t *Tracker) Update(d Device) {
	t.mu.Lock()
	t.snap.Device = d
	t.mu.Unlock()
}

// SetIndicators sets the status bar values.
func (t *Tracker) SetIndicators(wifi bool, battery int) {
	t.mu.Lock()
	t.snap.WiFi = wifi
	t.snap.Battery = battery
	t.mu.Unlock()
}

// SetFrames records the number of frames rendered so far.
func (t *Tracker) SetFrames(n int) {
	t.mu.Lock()
	t.snap.Frames = n
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *network.Info) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the clock's time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = t.clock.Now()
	return s
}
