package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Mode          string       `json:"mode"`
	Synced        bool         `json:"synced"`
	WiFi          bool         `json:"wifi"`
	Battery       *int         `json:"battery_percent"`
	Frames        int          `json:"frames"`
	Dropped       int          `json:"dropped_gestures"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	Weather       WeatherJSON  `json:"weather"`
	Timer         TimerJSON    `json:"timer"`
	Stopwatch     TimerJSON    `json:"stopwatch"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// WeatherJSON reports the cached weather.
type WeatherJSON struct {
	Location    string `json:"location"`
	City        string `json:"city,omitempty"`
	Temperature string `json:"temperature,omitempty"`
	Condition   string `json:"condition,omitempty"`
	Icon        int    `json:"icon,omitempty"`
	AgeSeconds  *int64 `json:"age_seconds"`
}

// TimerJSON reports a countdown or stopwatch.
type TimerJSON struct {
	Running bool  `json:"running"`
	Ms      int64 `json:"ms"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	SliceMs     int64  `json:"slice_ms"`
	DebounceMs  int64  `json:"debounce_ms"`
	LongPressMs int64  `json:"long_press_ms"`
	DoubleMs    int64  `json:"double_click_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Display     string `json:"display"`
	Buttons     string `json:"buttons"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	d := snap.Device
	inner := StatusInner{
		Mode:          d.Mode.String(),
		Synced:        d.Synced,
		WiFi:          snap.WiFi,
		Frames:        snap.Frames,
		Dropped:       d.DroppedGestures,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Weather: WeatherJSON{
			Location:    d.Location,
			City:        d.Weather.City,
			Temperature: d.Weather.Temperature,
			Condition:   d.Weather.Condition,
			Icon:        d.Weather.Icon,
		},
		Timer:     TimerJSON{Running: d.TimerRunning, Ms: d.TimerRemaining.Milliseconds()},
		Stopwatch: TimerJSON{Running: d.StopwatchRunning, Ms: d.Stopwatch.Milliseconds()},
		MQTT:      MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			SliceMs:     snap.Config.SliceMs,
			DebounceMs:  snap.Config.DebounceMs,
			LongPressMs: snap.Config.LongPressMs,
			DoubleMs:    snap.Config.DoubleMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Display:     snap.Config.Display,
			Buttons:     snap.Config.Buttons,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
		},
	}
	if snap.Battery >= 0 {
		b := snap.Battery
		inner.Battery = &b
	}
	if age := snap.WeatherAge(); age >= 0 {
		s := int64(age / time.Second)
		inner.Weather.AgeSeconds = &s
	}
	return inner
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
