package internal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/sweeney/oledclock/internal/app"
	"github.com/sweeney/oledclock/internal/button"
	"github.com/sweeney/oledclock/internal/gpio"
	"github.com/sweeney/oledclock/internal/mqtt"
	"github.com/sweeney/oledclock/internal/render"
	"github.com/sweeney/oledclock/internal/scheduler"
	"github.com/sweeney/oledclock/internal/settings"
	"github.com/sweeney/oledclock/internal/status"
	"github.com/sweeney/oledclock/internal/timesource"
	"github.com/sweeney/oledclock/internal/weather"
	"github.com/sweeney/oledclock/internal/web"
)

var start = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

// press is one scripted button hold.
type press struct {
	ch       button.Channel
	from, to time.Time
}

// scriptedReader reports the buttons held by the script at the clock's time.
type scriptedReader struct {
	clock   clockwork.Clock
	presses []press
}

func (r *scriptedReader) Read() (gpio.Sample, error) {
	now := r.clock.Now()
	var s gpio.Sample
	for _, p := range r.presses {
		if now.Before(p.from) || !now.Before(p.to) {
			continue
		}
		switch p.ch {
		case button.Left:
			s.Left = true
		case button.Center:
			s.Center = true
		case button.Right:
			s.Right = true
		}
	}
	return s, nil
}

func (r *scriptedReader) Close() error { return nil }

type stubNetwork struct {
	locations []string
}

func (n *stubNetwork) Connected() bool { return true }

func (n *stubNetwork) FetchWeather(ctx context.Context, location string) (weather.Report, error) {
	n.locations = append(n.locations, location)
	return weather.Report{City: strings.ToUpper(location[:1]) + location[1:], Temperature: "21", Condition: "Sunny", Icon: weather.IconSunny}, nil
}

type countingAlert struct {
	plays int
}

func (a *countingAlert) Play() error {
	a.plays++
	return nil
}

// rig wires the real loop, controller, renderer and status tracker around
// scripted buttons and a fake clock.
type rig struct {
	t        *testing.T
	clock    clockwork.FakeClock
	reader   *scriptedReader
	loop     *scheduler.Scheduler
	ctrl     *app.Controller
	recorder *render.Recorder
	pub      *mqtt.FakePublisher
	tracker  *status.Tracker
	store    *settings.Memory
	network  *stubNetwork
	alert    *countingAlert
	server   *web.Server
}

func newRig(t *testing.T) *rig {
	clock := clockwork.NewFakeClockAt(start)
	r := &rig{
		t:        t,
		clock:    clock,
		reader:   &scriptedReader{clock: clock},
		recorder: &render.Recorder{},
		pub:      mqtt.NewFakePublisher(),
		tracker:  status.NewTracker(clock, status.Config{}),
		store:    settings.NewMemory(),
		network:  &stubNetwork{},
		alert:    &countingAlert{},
	}

	renderer := render.NewRenderer(r.recorder)
	indicators := scheduler.NewIndicators(clock, r.network, nil)
	r.ctrl = app.NewController(app.DefaultConfig(), app.Deps{
		Time:      timesource.NewSystem(clock, time.UTC),
		Network:   r.network,
		Settings:  r.store,
		Alert:     r.alert,
		Presenter: scheduler.NewPresenter(renderer, indicators),
	})

	notify := make(chan struct{}, 1)
	r.server = web.New("", web.Deps{Tracker: r.tracker, Settings: r.store, Screen: renderer, Notify: notify})
	r.loop = scheduler.New(scheduler.Config{Slice: scheduler.DefaultSlice}, scheduler.Deps{
		Clock:           clock,
		Reader:          r.reader,
		Panel:           button.NewPanel(button.DefaultTiming()),
		Controller:      r.ctrl,
		Renderer:        renderer,
		Indicators:      indicators,
		Publisher:       r.pub,
		MQTTStatus:      r.pub,
		Tracker:         r.tracker,
		LocationChanged: notify,
	})
	return r
}

// runFor drives Tick and the sliced polling the way Run does, advancing the
// fake clock directly instead of sleeping.
func (r *rig) runFor(d time.Duration) {
	end := r.clock.Now().Add(d)
	for r.clock.Now().Before(end) {
		interval := r.loop.Tick()
		for rem := interval; rem > 0 && r.clock.Now().Before(end); {
			step := scheduler.DefaultSlice
			if step > rem {
				step = rem
			}
			r.clock.Advance(step)
			r.loop.Poll()
			rem -= step
		}
	}
}

func (r *rig) hold(ch button.Channel, offset, length time.Duration) {
	now := r.clock.Now()
	r.reader.presses = append(r.reader.presses, press{ch: ch, from: now.Add(offset), to: now.Add(offset + length)})
}

func (r *rig) click(ch button.Channel) {
	r.hold(ch, 10*time.Millisecond, 60*time.Millisecond)
	r.runFor(600 * time.Millisecond)
}

func (r *rig) doubleClick(ch button.Channel) {
	r.hold(ch, 10*time.Millisecond, 60*time.Millisecond)
	r.hold(ch, 170*time.Millisecond, 60*time.Millisecond)
	r.runFor(600 * time.Millisecond)
}

func (r *rig) longPress(ch button.Channel) {
	r.hold(ch, 10*time.Millisecond, 800*time.Millisecond)
	r.runFor(time.Second)
}

func (r *rig) expectMode(want app.Mode) {
	r.t.Helper()
	if got := r.ctrl.Mode(); got != want {
		r.t.Fatalf("expected mode %s, got %s", want, got)
	}
}

func (r *rig) eventTypes() []app.EventType {
	var out []app.EventType
	for _, e := range r.pub.Events {
		out = append(out, e.Type)
	}
	return out
}

func TestIntegrationMenuNavigation(t *testing.T) {
	r := newRig(t)
	r.runFor(200 * time.Millisecond)
	r.expectMode(app.ModeMenu)

	r.click(button.Right)
	if idx := r.ctrl.State().Menu.Index; idx != 1 {
		t.Fatalf("expected menu index 1, got %d", idx)
	}
	r.click(button.Left)
	r.click(button.Left)
	if idx := r.ctrl.State().Menu.Index; idx != app.MenuItems-1 {
		t.Fatalf("expected wrap to last entry, got %d", idx)
	}

	r.click(button.Center)
	r.expectMode(app.ModeStopwatch)

	r.longPress(button.Center)
	r.expectMode(app.ModeMenu)

	types := r.eventTypes()
	if len(types) != 2 || types[0] != app.EventModeChanged || types[1] != app.EventModeChanged {
		t.Errorf("unexpected events: %v", types)
	}
	if r.pub.Events[1].Detail != "from STOPWATCH" {
		t.Errorf("unexpected detail: %q", r.pub.Events[1].Detail)
	}
}

func TestIntegrationClockSyncsOnce(t *testing.T) {
	r := newRig(t)
	r.click(button.Center)
	r.expectMode(app.ModeClock)
	r.runFor(time.Second)

	synced := 0
	for _, e := range r.pub.Events {
		if e.Type == app.EventClockSynced {
			synced++
		}
	}
	if synced != 1 {
		t.Errorf("expected one CLOCK_SYNCED event, got %d", synced)
	}
	if !r.tracker.Snapshot().Device.Synced {
		t.Error("expected tracker to report synced")
	}

	last := r.recorder.Images[r.recorder.Count()-1]
	if last.Bounds().Dx() != render.Width {
		t.Errorf("unexpected frame size %v", last.Bounds())
	}
}

func TestIntegrationStopwatch(t *testing.T) {
	r := newRig(t)
	r.click(button.Left)
	r.click(button.Center)
	r.expectMode(app.ModeStopwatch)

	r.click(button.Center) // start
	if !r.ctrl.State().Stopwatch.Running {
		t.Fatal("expected stopwatch running")
	}
	r.runFor(2 * time.Second)
	r.click(button.Center) // stop

	sw := r.ctrl.State().Stopwatch
	if sw.Running {
		t.Fatal("expected stopwatch stopped")
	}
	// The start and stop clicks are both reported a click window after release,
	// so the measured span is the run plus one click cycle.
	if sw.Accumulated < 2*time.Second || sw.Accumulated > 3*time.Second {
		t.Errorf("unexpected elapsed %v", sw.Accumulated)
	}

	snap := r.tracker.Snapshot()
	if snap.Device.StopwatchRunning || snap.Device.Stopwatch != sw.Accumulated {
		t.Errorf("tracker out of date: %+v", snap.Device)
	}

	r.doubleClick(button.Center) // reset
	if got := r.ctrl.State().Stopwatch; got.Accumulated != 0 || got.Running {
		t.Errorf("expected reset stopwatch, got %+v", got)
	}
}

func TestIntegrationTimerCountdown(t *testing.T) {
	r := newRig(t)
	for i := 0; i < 3; i++ {
		r.click(button.Right)
	}
	r.click(button.Center)
	r.expectMode(app.ModeTimer)

	// Cursor to the seconds digit, set it to 2.
	for i := 0; i < 3; i++ {
		r.click(button.Right)
	}
	r.click(button.Center)
	r.click(button.Center)
	if d := r.ctrl.State().Countdown.Digits; d != [4]int{0, 0, 0, 2} {
		t.Fatalf("unexpected digits %v", d)
	}

	r.doubleClick(button.Center)
	if !r.ctrl.State().Countdown.Running {
		t.Fatal("expected countdown running")
	}
	r.runFor(3 * time.Second)

	if r.ctrl.State().Countdown.Running {
		t.Error("expected countdown finished")
	}
	if r.alert.plays != 1 {
		t.Errorf("expected one alert, got %d", r.alert.plays)
	}

	var started, finished bool
	for _, e := range r.pub.Events {
		switch e.Type {
		case app.EventTimerStarted:
			started = true
			if e.Detail != "2s" {
				t.Errorf("unexpected start detail %q", e.Detail)
			}
		case app.EventTimerFinished:
			finished = true
		}
	}
	if !started || !finished {
		t.Errorf("expected start and finish events, got %v", r.eventTypes())
	}
}

func TestIntegrationWeatherLocationChange(t *testing.T) {
	r := newRig(t)
	r.click(button.Right)
	r.click(button.Right)
	r.click(button.Center)
	r.expectMode(app.ModeWeather)
	r.runFor(time.Second)

	if len(r.network.locations) != 1 || r.network.locations[0] != "kunming" {
		t.Fatalf("unexpected fetches %v", r.network.locations)
	}

	form := url.Values{"location": {"  beijing  "}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}

	r.runFor(time.Second)

	if len(r.network.locations) != 2 || r.network.locations[1] != "beijing" {
		t.Fatalf("expected refetch for beijing, got %v", r.network.locations)
	}
	if v, _ := r.store.Get(app.SettingLocation); v != "beijing" {
		t.Errorf("stored location %q", v)
	}

	rec = httptest.NewRecorder()
	r.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/index.json", nil))
	var body struct {
		Status struct {
			Mode    string `json:"mode"`
			Weather struct {
				Location string `json:"location"`
				City     string `json:"city"`
			} `json:"weather"`
		} `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Status.Mode != "WEATHER" {
		t.Errorf("mode: got %q, want WEATHER", body.Status.Mode)
	}
	if body.Status.Weather.Location != "beijing" || body.Status.Weather.City != "Beijing" {
		t.Errorf("unexpected weather %+v", body.Status.Weather)
	}
}

func TestIntegrationScreenSnapshot(t *testing.T) {
	r := newRig(t)
	r.runFor(200 * time.Millisecond)

	rec := httptest.NewRecorder()
	r.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/screen.png", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("unexpected content type %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "\x89PNG") {
		t.Error("expected PNG body")
	}
}

func TestIntegrationPayloadsAreJSON(t *testing.T) {
	r := newRig(t)
	r.click(button.Center)

	if len(r.pub.Payloads) == 0 {
		t.Fatal("expected payloads")
	}
	for i, p := range r.pub.Payloads {
		var parsed mqtt.Payload
		if err := json.Unmarshal(p, &parsed); err != nil {
			t.Errorf("payload %d: invalid JSON: %v", i, err)
		}
		if parsed.Clock.Timestamp == "" || parsed.Clock.Event == "" {
			t.Errorf("payload %d: missing fields: %s", i, p)
		}
	}
}
