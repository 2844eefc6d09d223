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
	Screen        string       `json:"screen"`
	Clock         string       `json:"clock"`
	Alarm         AlarmJSON    `json:"alarm"`
	Ringtone      string       `json:"ringtone"`
	Brightness    int          `json:"brightness"`
	Ringing       bool         `json:"ringing"`
	SessionID     string       `json:"session_id,omitempty"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	TimeSync      TimeSyncJSON `json:"time_sync"`
	Counts        CountsJSON   `json:"event_counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// AlarmJSON is the JSON representation of the configured alarm.
type AlarmJSON struct {
	Time    string `json:"time"`
	Enabled bool   `json:"enabled"`
	Next    string `json:"next,omitempty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// TimeSyncJSON is the JSON representation of the boot-time sync.
type TimeSyncJSON struct {
	Attempted bool   `json:"attempted"`
	OK        bool   `json:"ok"`
	Time      string `json:"time,omitempty"`
	Error     string `json:"error,omitempty"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Triggered int `json:"triggered"`
	Cancelled int `json:"cancelled"`
	Changes   int `json:"changes"`
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
	TickMs      int64  `json:"tick_ms"`
	DebounceMs  int64  `json:"debounce_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPPort    string `json:"http_port"`
	WSBroker    string `json:"ws_broker,omitempty"`
	NTPServer   string `json:"ntp_server,omitempty"`
	Timezone    string `json:"timezone"`
}

func buildInner(snap Snapshot) StatusInner {
	screen := snap.Screen
	if screen == "" {
		screen = "UNKNOWN"
	}
	clk := "--:--:--"
	if snap.ClockOK {
		clk = snap.Clock.String()
	}

	alarm := AlarmJSON{
		Time:    snap.Settings.Alarm.String(),
		Enabled: snap.Settings.Alarm.Enabled(),
	}
	if next, ok := snap.NextAlarm(); ok {
		alarm.Next = next.Format(time.RFC3339)
	}

	sync := TimeSyncJSON{
		Attempted: snap.TimeSync.Attempted,
		OK:        snap.TimeSync.OK,
		Error:     snap.TimeSync.Error,
	}
	if snap.TimeSync.OK {
		sync.Time = snap.TimeSync.Time.String()
	}

	return StatusInner{
		Screen:        screen,
		Clock:         clk,
		Alarm:         alarm,
		Ringtone:      snap.Ringtone,
		Brightness:    snap.Settings.Brightness,
		Ringing:       snap.FeedbackActive,
		SessionID:     snap.SessionID,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		TimeSync:      sync,
		Counts: CountsJSON{
			Triggered: snap.Counts.Triggered,
			Cancelled: snap.Counts.Cancelled,
			Changes:   snap.Counts.Changes,
		},
		Config: ConfigJSON{
			TickMs:      snap.Config.TickMs,
			DebounceMs:  snap.Config.DebounceMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPPort:    snap.Config.HTTPPort,
			WSBroker:    snap.Config.WSBroker,
			NTPServer:   snap.Config.NTPServer,
			Timezone:    snap.Config.Timezone,
		},
	}
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
