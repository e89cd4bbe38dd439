package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/splitkbd/internal/status"
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
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Split Keyboard ({{.Config.Role}})</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.connected { color: green; }
.waiting { color: orange; }
.sleeping { color: #888; }
.disconnected { color: red; }
.good { color: green; }
.low { color: orange; }
.critical { color: red; font-weight: bold; }
.charging { color: #06c; }
</style>
</head>
<body>
<h1>Split Keyboard ({{.Config.Role}})</h1>

<h2>State</h2>
<table>
<tr><th>Peer Link</th><td class="{{.Conn}}">{{.Conn}}</td></tr>
<tr><th>Power Mode</th><td>{{.Power}}</td></tr>
<tr><th>Scanning</th><td class="{{if .Scanning}}on{{else}}off{{end}}">{{if .Scanning}}yes{{else}}no{{end}}</td></tr>
<tr><th>Base Layer</th><td>{{.Keys.BaseLayer}}</td></tr>
<tr><th>Effective Layer</th><td>{{.Keys.EffectiveLayer}}</td></tr>
<tr><th>Held Keys</th><td>{{.Keys.HeldKeys}}</td></tr>
</table>
{{if .Battery}}
<h2>Battery</h2>
<table>
<tr><th>Level</th><td class="{{.Battery.Level}}">{{.Battery.Level}}</td></tr>
<tr><th>Voltage</th><td>{{.Battery.VoltageMV}}mV</td></tr>
<tr><th>USB Power</th><td>{{if .Battery.USBPowered}}yes{{else}}no{{end}}</td></tr>
</table>
{{end}}
<h2>Link</h2>
<table>
<tr><th>MQTT</th><td class="{{if .LinkConnected}}connected{{else}}disconnected{{end}}">{{if .LinkConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Sent</th><td>{{.Link.Sent}}</td></tr>
<tr><th>Received</th><td>{{.Link.Received}}</td></tr>
<tr><th>Dropped</th><td>{{.Link.Dropped}}</td></tr>
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Presses</th><td>{{.Scan.Presses}}</td></tr>
<tr><th>Releases</th><td>{{.Scan.Releases}}</td></tr>
<tr><th>Skipped Sweeps</th><td>{{.Keys.SkippedSweeps}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Layout</th><td>{{.Config.Layout}}</td></tr>
<tr><th>Tap-Hold</th><td>{{.Config.TapHoldMs}}ms</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
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
