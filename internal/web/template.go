package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/alarm-clock/internal/status"
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
	"orUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Alarm Clock</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.ringing { color: red; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
.screen { image-rendering: pixelated; background: #000; border: 4px solid #333; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>Alarm Clock{{if .Config.WSBroker}}<span id="live-dot" class="live-dot pending" title="connecting"></span>{{end}}</h1>
{{if .HasDisplay}}<img class="screen" src="/display.png?scale=3" width="384" height="192" alt="display">{{end}}

<h2>Alarm</h2>
<table>
<tr><th>Clock</th><td>{{if .ClockOK}}{{.Clock}}{{else}}--:--:--{{end}}</td></tr>
<tr><th>Alarm</th><td id="alarm-time" class="{{if .Settings.Alarm.Enabled}}on{{else}}off{{end}}">{{.Settings.Alarm}} {{if .Settings.Alarm.Enabled}}on{{else}}off{{end}}</td></tr>
{{if .Next}}<tr><th>Next</th><td>{{.Next.Format "Mon 02 Jan 15:04"}}</td></tr>{{end}}
<tr><th>Ringtone</th><td id="ringtone">{{.Ringtone}}</td></tr>
<tr><th>Brightness</th><td id="brightness">{{.Settings.Brightness}}/10</td></tr>
<tr><th>Screen</th><td>{{orUnknown .Screen}}</td></tr>
<tr><th>Ringing</th><td id="ringing" class="{{if .FeedbackActive}}ringing{{else}}off{{end}}">{{if .FeedbackActive}}yes{{else}}no{{end}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Time sync</th><td>{{if not .TimeSync.Attempted}}disabled{{else if .TimeSync.OK}}ok ({{.TimeSync.Time}}){{else}}failed: {{.TimeSync.Error}}{{end}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Triggered</th><td>{{.Counts.Triggered}}</td></tr>
<tr><th>Cancelled</th><td>{{.Counts.Cancelled}}</td></tr>
<tr><th>Setting changes</th><td>{{.Counts.Changes}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Tick</th><td>{{.Config.TickMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>Timezone</th><td>{{.Config.Timezone}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
{{if .Config.WSBroker}}
<script src="https://unpkg.com/mqtt@5/dist/mqtt.min.js"></script>
<script>
(function() {
  var broker = "{{.Config.WSBroker}}";
  var topic = "home/alarm-clock/events";
  var dot = document.getElementById("live-dot");
  var alarmEl = document.getElementById("alarm-time");
  var ringtoneEl = document.getElementById("ringtone");
  var brightnessEl = document.getElementById("brightness");
  var ringingEl = document.getElementById("ringing");

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  var client = mqtt.connect(broker, { reconnectPeriod: 5000 });

  client.on("connect", function() {
    setDot("ok", "live");
    client.subscribe(topic);
  });

  client.on("reconnect", function() {
    setDot("pending", "reconnecting");
  });

  client.on("offline", function() {
    setDot("err", "offline");
  });

  client.on("error", function() {
    setDot("err", "error");
  });

  client.on("message", function(t, payload) {
    try {
      var msg = JSON.parse(payload.toString());
      if (msg.alarm) {
        alarmEl.textContent = msg.alarm.alarm + (msg.alarm.enabled ? " on" : " off");
        alarmEl.className = msg.alarm.enabled ? "on" : "off";
        ringtoneEl.textContent = msg.alarm.ringtone;
        brightnessEl.textContent = msg.alarm.brightness + "/10";
        var ringing = msg.alarm.event === "ALARM_TRIGGERED";
        ringingEl.textContent = ringing ? "yes" : "no";
        ringingEl.className = ringing ? "ringing" : "off";
      }
    } catch (e) {}
  });
})();
</script>
{{end}}
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot, screen bool) {
	// Snapshot has Uptime() and NextAlarm() methods but the template needs fields.
	data := struct {
		status.Snapshot
		Uptime     time.Duration
		Next       *time.Time
		HasDisplay bool
	}{
		Snapshot:   snap,
		Uptime:     snap.Uptime(),
		HasDisplay: screen,
	}
	if next, ok := snap.NextAlarm(); ok {
		data.Next = &next
	}
	indexTmpl.Execute(w, data)
}
