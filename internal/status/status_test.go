package status

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/sweeney/oledclock/internal/app"
	"github.com/sweeney/oledclock/internal/network"
	"github.com/sweeney/oledclock/internal/weather"
)

var start = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

func TestNewTracker(t *testing.T) {
	clock := clockwork.NewFakeClockAt(start)
	cfg := Config{SliceMs: 14, DebounceMs: 20, Broker: "tcp://localhost:1883", HTTPAddr: ":80"}
	tr := NewTracker(clock, cfg)

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Config.SliceMs != 14 {
		t.Errorf("Config.SliceMs: got %d, want 14", snap.Config.SliceMs)
	}
	if snap.Config.HTTPAddr != ":80" {
		t.Errorf("Config.HTTPAddr: got %q, want %q", snap.Config.HTTPAddr, ":80")
	}
	if snap.Battery != -1 {
		t.Errorf("expected Battery=-1 initially, got %d", snap.Battery)
	}
	if snap.MQTTConnected {
		t.Error("expected MQTTConnected=false initially")
	}
	if snap.WeatherAge() != -1 {
		t.Errorf("expected no weather age initially, got %v", snap.WeatherAge())
	}
}

func TestDeviceFromState(t *testing.T) {
	now := start.Add(time.Hour)
	st := app.NewState()
	st.Mode = app.ModeTimer
	st.Synced = true
	st.Countdown.Running = true
	st.Countdown.End = now.Add(90 * time.Second)
	st.Stopwatch = app.StopwatchState{Accumulated: time.Second, Running: true, StartedAt: now.Add(-2 * time.Second)}
	st.Weather = app.WeatherCache{Fetched: start, Report: weather.Report{City: "Kunming", Temperature: "21"}}

	d := DeviceFromState(st, "kunming", 3, now)

	if d.Mode != app.ModeTimer {
		t.Errorf("Mode: got %v, want TIMER", d.Mode)
	}
	if !d.Synced {
		t.Error("expected Synced=true")
	}
	if d.TimerRemaining != 90*time.Second {
		t.Errorf("TimerRemaining: got %v, want 90s", d.TimerRemaining)
	}
	if d.Stopwatch != 3*time.Second {
		t.Errorf("Stopwatch: got %v, want 3s", d.Stopwatch)
	}
	if d.Location != "kunming" || d.Weather.City != "Kunming" {
		t.Errorf("unexpected weather fields: %+v", d)
	}
	if d.DroppedGestures != 3 {
		t.Errorf("DroppedGestures: got %d, want 3", d.DroppedGestures)
	}
}

func TestDeviceFromStateExpiredTimer(t *testing.T) {
	now := start
	st := app.NewState()
	st.Countdown.Running = true
	st.Countdown.End = now.Add(-time.Second)

	d := DeviceFromState(st, "", 0, now)
	if d.TimerRemaining != 0 {
		t.Errorf("TimerRemaining: got %v, want 0", d.TimerRemaining)
	}
}

func TestUpdateAndSnapshot(t *testing.T) {
	clock := clockwork.NewFakeClockAt(start)
	tr := NewTracker(clock, Config{})

	tr.Update(Device{Mode: app.ModeClock, Synced: true, WeatherFetched: start})
	tr.SetIndicators(true, 72)
	tr.SetFrames(40)
	clock.Advance(5 * time.Minute)

	snap := tr.Snapshot()
	if snap.Device.Mode != app.ModeClock {
		t.Errorf("Mode: got %v, want CLOCK", snap.Device.Mode)
	}
	if !snap.WiFi || snap.Battery != 72 {
		t.Errorf("indicators: got wifi=%v battery=%d", snap.WiFi, snap.Battery)
	}
	if snap.Frames != 40 {
		t.Errorf("Frames: got %d, want 40", snap.Frames)
	}
	if snap.WeatherAge() != 5*time.Minute {
		t.Errorf("WeatherAge: got %v, want 5m", snap.WeatherAge())
	}
	if snap.Uptime() != 5*time.Minute {
		t.Errorf("Uptime: got %v, want 5m", snap.Uptime())
	}
}

func TestSetMQTTConnected(t *testing.T) {
	tr := NewTracker(clockwork.NewFakeClock(), Config{})

	tr.SetMQTTConnected(true)
	if !tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}

	tr.SetMQTTConnected(false)
	if tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=false")
	}
}

func TestSetNetwork(t *testing.T) {
	tr := NewTracker(clockwork.NewFakeClock(), Config{})

	if tr.Snapshot().Network != nil {
		t.Error("expected nil Network initially")
	}

	tr.SetNetwork(&network.Info{Type: "wifi", IP: "192.168.1.42", Status: "connected"})

	snap := tr.Snapshot()
	if snap.Network == nil {
		t.Fatal("expected non-nil Network")
	}
	if snap.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q, want %q", snap.Network.IP, "192.168.1.42")
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	tr := NewTracker(clockwork.NewFakeClock(), Config{})
	tr.Update(Device{Mode: app.ModeClock})

	snap1 := tr.Snapshot()

	tr.Update(Device{Mode: app.ModeWeather})

	if snap1.Device.Mode != app.ModeClock {
		t.Error("snapshot should be a copy; Mode was modified")
	}
}

func TestFormatJSON(t *testing.T) {
	snap := Snapshot{
		Device: Device{
			Mode:           app.ModeWeather,
			Synced:         true,
			Location:       "kunming",
			WeatherFetched: start,
			Weather:        weather.Report{City: "Kunming", Temperature: "21", Condition: "Sunny", Icon: weather.IconSunny},
			TimerRunning:   true,
			TimerRemaining: 1500 * time.Millisecond,
		},
		WiFi:          true,
		Battery:       64,
		StartTime:     start,
		Now:           start.Add(15 * time.Minute),
		MQTTConnected: true,
		Config:        Config{SliceMs: 14, DebounceMs: 20, HeartbeatMs: 900000, Broker: "tcp://localhost:1883", HTTPAddr: ":80"},
	}

	data := FormatJSON(snap)

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.Mode != "WEATHER" {
		t.Errorf("Mode: got %q, want WEATHER", parsed.Status.Mode)
	}
	if !parsed.Status.Synced {
		t.Error("expected Synced=true")
	}
	if parsed.Status.UptimeSeconds != 900 {
		t.Errorf("UptimeSeconds: got %d, want 900", parsed.Status.UptimeSeconds)
	}
	if parsed.Status.Battery == nil || *parsed.Status.Battery != 64 {
		t.Errorf("Battery: got %v, want 64", parsed.Status.Battery)
	}
	if parsed.Status.Weather.AgeSeconds == nil || *parsed.Status.Weather.AgeSeconds != 900 {
		t.Errorf("Weather.AgeSeconds: got %v, want 900", parsed.Status.Weather.AgeSeconds)
	}
	if parsed.Status.Weather.City != "Kunming" {
		t.Errorf("Weather.City: got %q, want Kunming", parsed.Status.Weather.City)
	}
	if parsed.Status.Timer.Ms != 1500 || !parsed.Status.Timer.Running {
		t.Errorf("Timer: got %+v", parsed.Status.Timer)
	}
	if parsed.Status.MQTT.Connected != true {
		t.Error("expected MQTT.Connected=true")
	}
	// Event and Reason should be omitted
	if parsed.Status.Event != "" {
		t.Errorf("expected empty Event for web format, got %q", parsed.Status.Event)
	}
	if parsed.Status.Reason != "" {
		t.Errorf("expected empty Reason for web format, got %q", parsed.Status.Reason)
	}
}

func TestFormatJSONUnknowns(t *testing.T) {
	snap := Snapshot{
		Battery:   -1,
		StartTime: start,
		Now:       start.Add(time.Second),
	}

	var raw map[string]map[string]interface{}
	if err := json.Unmarshal(FormatJSON(snap), &raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	status := raw["status"]
	if status["battery_percent"] != nil {
		t.Errorf("battery_percent: got %v, want null", status["battery_percent"])
	}
	if status["mode"] != "MENU" {
		t.Errorf("mode: got %v, want MENU", status["mode"])
	}
	weatherJSON := status["weather"].(map[string]interface{})
	if weatherJSON["age_seconds"] != nil {
		t.Errorf("age_seconds: got %v, want null", weatherJSON["age_seconds"])
	}
}

func TestFormatStatusEvent(t *testing.T) {
	snap := Snapshot{
		Device:        Device{Mode: app.ModeClock},
		StartTime:     start,
		Now:           start.Add(15 * time.Minute),
		MQTTConnected: true,
		Config:        Config{Broker: "tcp://localhost:1883"},
	}

	data := FormatStatusEvent(snap, "HEARTBEAT", "")

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.Event != "HEARTBEAT" {
		t.Errorf("Event: got %q, want HEARTBEAT", parsed.Status.Event)
	}
	if parsed.Status.Reason != "" {
		t.Errorf("Reason: got %q, want empty", parsed.Status.Reason)
	}
	if parsed.Status.Mode != "CLOCK" {
		t.Errorf("Mode: got %q, want CLOCK", parsed.Status.Mode)
	}
	if parsed.Status.UptimeSeconds != 900 {
		t.Errorf("UptimeSeconds: got %d, want 900", parsed.Status.UptimeSeconds)
	}
}

func TestFormatStatusEventShutdown(t *testing.T) {
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(30 * time.Minute),
		Config:    Config{Broker: "tcp://localhost:1883"},
	}

	data := FormatStatusEvent(snap, "SHUTDOWN", "SIGTERM")

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.Event != "SHUTDOWN" {
		t.Errorf("Event: got %q, want SHUTDOWN", parsed.Status.Event)
	}
	if parsed.Status.Reason != "SIGTERM" {
		t.Errorf("Reason: got %q, want SIGTERM", parsed.Status.Reason)
	}
}

func TestFormatStatusEventOmitsReasonWhenEmpty(t *testing.T) {
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(time.Second),
	}

	data := FormatStatusEvent(snap, "STARTUP", "")

	var raw map[string]interface{}
	json.Unmarshal(data, &raw)
	status := raw["status"].(map[string]interface{})
	if _, exists := status["reason"]; exists {
		t.Error("reason should be omitted when empty")
	}
	if status["event"] != "STARTUP" {
		t.Errorf("event: got %v, want STARTUP", status["event"])
	}
}

func TestFormatJSONWithNetwork(t *testing.T) {
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(time.Minute),
		Network:   &network.Info{Type: "wifi", IP: "192.168.1.42", Status: "connected", SSID: "MyNet"},
		Config:    Config{Broker: "tcp://localhost:1883"},
	}

	data := FormatJSON(snap)

	var parsed StatusJSON
	json.Unmarshal(data, &parsed)

	if parsed.Status.Network == nil {
		t.Fatal("expected Network in JSON")
	}
	if parsed.Status.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q, want 192.168.1.42", parsed.Status.Network.IP)
	}
	if parsed.Status.Network.SSID != "MyNet" {
		t.Errorf("Network.SSID: got %q, want MyNet", parsed.Status.Network.SSID)
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(clockwork.NewRealClock(), Config{})
	var wg sync.WaitGroup

	// Writer
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			tr.Update(Device{Mode: app.Mode(i % 6), DroppedGestures: i})
			tr.SetIndicators(i%2 == 0, i%101)
			tr.SetMQTTConnected(i%2 == 0)
			tr.SetNetwork(&network.Info{IP: "1.2.3.4"})
		}
	}()

	// Reader
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			snap := tr.Snapshot()
			_ = FormatJSON(snap)
		}
	}()

	wg.Wait()
}
