// Package status provides a thread-safe status tracker for the alarm clock.
// It is read by the HTTP handlers, the MQTT lifecycle events and the simulator.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/alarm-clock/internal/logic"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	TickMs      int64
	DebounceMs  int64
	HeartbeatMs int64
	Broker      string
	HTTPPort    string
	WSBroker    string // Websocket broker URL for browser MQTT (empty = disabled)
	NTPServer   string // empty = sync disabled
	Timezone    string
}

// TimeSync records the outcome of the boot-time network sync.
type TimeSync struct {
	Attempted bool
	OK        bool
	Time      logic.Timestamp
	Error     string
}

// Device is the part of the snapshot that changes every tick.
type Device struct {
	Screen         string
	Clock          logic.Timestamp
	ClockOK        bool
	Settings       logic.Settings
	Ringtone       string
	FeedbackActive bool
	SessionID      string
	Counts         logic.EventCounts
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Device
	StartTime     time.Time
	Now           time.Time
	WallTime      time.Time // device clock, in its time zone
	MQTTConnected bool
	TimeSync      TimeSync
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// NextAlarm returns the next firing time on the device clock, if the alarm
// is enabled.
func (s Snapshot) NextAlarm() (time.Time, bool) {
	now := s.WallTime
	if now.IsZero() {
		now = s.Now
	}
	return logic.NextAlarm(s.Settings.Alarm, now)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot

	wall func() time.Time

	// replaced in tests
	now func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
			Device:    Device{Settings: logic.DefaultSettings()},
		},
		now: time.Now,
	}
}

// Update replaces the per-tick device state.
// Called from the tick loop after every tick.
func (t *Tracker) Update(d Device) {
	t.mu.Lock()
	t.snap.Device = d
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetTimeSync records the boot-time sync outcome.
func (t *Tracker) SetTimeSync(ts TimeSync) {
	t.mu.Lock()
	t.snap.TimeSync = ts
	t.mu.Unlock()
}

// SetWallClock sets the source of the device's wall time. Without one the
// host clock is used.
func (t *Tracker) SetWallClock(fn func() time.Time) {
	t.mu.Lock()
	t.wall = fn
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	wall := t.wall
	t.mu.RUnlock()
	s.Now = t.now()
	s.WallTime = s.Now
	if wall != nil {
		s.WallTime = wall()
	}
	return s
}
