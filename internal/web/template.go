package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/Schop/rotary-dial-test/internal/status"
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
	"digitOrDash": func(d int) string {
		if d < 0 {
			return "—"
		}
		return fmt.Sprintf("%d", d)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Rotary Dial</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.dialing { color: green; font-weight: bold; }
.idle { color: #888; }
.digit { font-size: 1.6em; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Rotary Dial</h1>

<h2>Dial</h2>
<table>
<tr><th>Phase</th><td class="{{if eq (printf "%s" .Phase) "DIALING"}}dialing{{else}}idle{{end}}">{{.Phase}}</td></tr>
<tr><th>Last digit</th><td class="digit">{{digitOrDash .LastDigit}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
{{if .Config.SerialPort}}<tr><th>Serial</th><td>{{.Config.SerialPort}}</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Dial cycles started</th><td>{{.Counts.Started}}</td></tr>
<tr><th>Dial cycles ended</th><td>{{.Counts.Ended}}</td></tr>
<tr><th>Pulses</th><td>{{.Counts.Pulses}}</td></tr>
<tr><th>Digits decoded</th><td>{{.Counts.Digits}}</td></tr>
<tr><th>Safety timeouts</th><td>{{.Counts.Timeouts}}</td></tr>
<tr><th>Ring drops</th><td>{{.RingDrops}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Pins</th><td>pulse={{.Config.PinPulse}} shunt={{.Config.PinShunt}}</td></tr>
<tr><th>Tick</th><td>{{.Config.TickMs}}ms</td></tr>
<tr><th>Debounce</th><td>pulse={{.Config.PulseDebounceMs}}ms shunt={{.Config.ShuntDebounceMs}}ms</td></tr>
<tr><th>Safety timeout</th><td>{{.Config.SafetyTimeoutMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but the template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
