package web

import (
	"fmt"
	"html/template"
	"io"
	"log"
	"time"

	"github.com/sweeney/oledclock/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"age": func(d time.Duration) string {
		if d < 0 {
			return "never"
		}
		return d.Truncate(time.Second).String() + " ago"
	},
	"ms": func(d time.Duration) string {
		return d.Truncate(time.Millisecond).String()
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>OLED Clock</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.connected { color: green; }
.disconnected { color: red; }
.error { color: red; }
.ok { color: green; }
#screen { image-rendering: pixelated; width: 384px; height: 192px; background: #000; border: 4px solid #333; }
</style>
</head>
<body>
<h1>OLED Clock</h1>

<img id="screen" src="/screen.png" alt="screen">

<h2>Weather Location</h2>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{if .Message}}<p class="ok">{{.Message}}</p>{{end}}
<form method="post" action="/">
<input type="text" name="location" maxlength="31" value="{{.Device.Location}}">
<button type="submit">Save</button>
</form>

<h2>Device</h2>
<table>
<tr><th>Page</th><td>{{.Device.Mode}}</td></tr>
<tr><th>Time synced</th><td>{{if .Device.Synced}}yes{{else}}no{{end}}</td></tr>
<tr><th>Weather</th><td>{{if .Device.Weather.City}}{{.Device.Weather.City}} {{.Device.Weather.Temperature}}&deg;C {{.Device.Weather.Condition}}{{else}}none{{end}}</td></tr>
<tr><th>Weather fetched</th><td>{{age .WeatherAge}}</td></tr>
<tr><th>Timer</th><td>{{if .Device.TimerRunning}}{{ms .Device.TimerRemaining}} left{{else}}idle{{end}}</td></tr>
<tr><th>Stopwatch</th><td>{{ms .Device.Stopwatch}}{{if .Device.StopwatchRunning}} (running){{end}}</td></tr>
<tr><th>Battery</th><td>{{if lt .Battery 0}}unknown{{else}}{{.Battery}}%{{end}}</td></tr>
<tr><th>Dropped gestures</th><td>{{.Device.DroppedGestures}}</td></tr>
<tr><th>Frames</th><td>{{.Frames}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>Wi-Fi</th><td class="{{if .WiFi}}connected{{else}}disconnected{{end}}">{{if .WiFi}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Display</th><td>{{.Config.Display}}</td></tr>
<tr><th>Buttons</th><td>{{.Config.Buttons}}</td></tr>
<tr><th>Slice</th><td>{{.Config.SliceMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Long press</th><td>{{.Config.LongPressMs}}ms</td></tr>
<tr><th>Double click</th><td>{{.Config.DoubleMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
<script>
setInterval(function() {
  document.getElementById("screen").src = "/screen.png?t=" + Date.now();
}, 1000);
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot, msg, errMsg string) {
	// The template needs method results as fields.
	data := struct {
		status.Snapshot
		Uptime     time.Duration
		WeatherAge time.Duration
		Message    string
		Error      string
	}{
		Snapshot:   snap,
		Uptime:     snap.Uptime(),
		WeatherAge: snap.WeatherAge(),
		Message:    msg,
		Error:      errMsg,
	}
	if err := indexTmpl.Execute(w, data); err != nil {
		log.Printf("http: render index: %v", err)
	}
}
