// Package logic contains pure business logic for the alarm clock.
// This package has NO hardware dependencies (no GPIO, MQTT, display or time.Sleep).
// Time is always injectable via Timestamp or time.Time parameters.
package logic

import (
	"fmt"
	"time"
)

// Timestamp is a wall-clock reading with hour, minute and second.
// Fields are unexported so that out-of-range values cannot be constructed.
type Timestamp struct {
	hour   uint8
	minute uint8
	second uint8
}

// NewTimestamp builds a Timestamp, wrapping each component into its range
// (hour mod 24, minute mod 60, second mod 60).
func NewTimestamp(hour, minute, second int) Timestamp {
	return Timestamp{
		hour:   uint8(wrap(hour, 24)),
		minute: uint8(wrap(minute, 60)),
		second: uint8(wrap(second, 60)),
	}
}

// TimestampOf snapshots the clock fields of t in t's location.
func TimestampOf(t time.Time) Timestamp {
	h, m, s := t.Clock()
	return NewTimestamp(h, m, s)
}

func (t Timestamp) Hour() int   { return int(t.hour) }
func (t Timestamp) Minute() int { return int(t.minute) }
func (t Timestamp) Second() int { return int(t.second) }

// String formats the timestamp as HH:MM:SS.
func (t Timestamp) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.hour, t.minute, t.second)
}

// AlarmConfig is the single configured alarm.
// Hour and minute are always in range; mutators return modified copies.
type AlarmConfig struct {
	hour    uint8
	minute  uint8
	enabled bool
}

// NewAlarmConfig builds an AlarmConfig, wrapping hour mod 24 and minute mod 60.
func NewAlarmConfig(hour, minute int, enabled bool) AlarmConfig {
	return AlarmConfig{
		hour:    uint8(wrap(hour, 24)),
		minute:  uint8(wrap(minute, 60)),
		enabled: enabled,
	}
}

func (a AlarmConfig) Hour() int     { return int(a.hour) }
func (a AlarmConfig) Minute() int   { return int(a.minute) }
func (a AlarmConfig) Enabled() bool { return a.enabled }

// WithHour returns a copy with the hour moved by delta, wrapping at 24.
func (a AlarmConfig) WithHour(delta int) AlarmConfig {
	a.hour = uint8(wrap(int(a.hour)+delta, 24))
	return a
}

// WithMinute returns a copy with the minute moved by delta, wrapping at 60.
// The hour is not carried.
func (a AlarmConfig) WithMinute(delta int) AlarmConfig {
	a.minute = uint8(wrap(int(a.minute)+delta, 60))
	return a
}

// WithEnabled returns a copy with the enabled flag set.
func (a AlarmConfig) WithEnabled(enabled bool) AlarmConfig {
	a.enabled = enabled
	return a
}

// String formats the alarm as HH:MM.
func (a AlarmConfig) String() string {
	return fmt.Sprintf("%02d:%02d", a.hour, a.minute)
}

// Brightness bounds for the light collaborator, as levels of ten.
const (
	MinBrightness     = 1
	MaxBrightness     = 10
	DefaultBrightness = 4
)

// Settings is the configuration aggregate owned by the menu controller.
type Settings struct {
	Alarm      AlarmConfig
	Ringtone   int
	Brightness int
}

// DefaultSettings returns the factory settings:
// alarm 07:00 disabled, first ringtone, brightness 4.
func DefaultSettings() Settings {
	return Settings{
		Alarm:      NewAlarmConfig(7, 0, false),
		Ringtone:   0,
		Brightness: DefaultBrightness,
	}
}

// ClampBrightness limits a level to [MinBrightness, MaxBrightness].
func ClampBrightness(level int) int {
	if level < MinBrightness {
		return MinBrightness
	}
	if level > MaxBrightness {
		return MaxBrightness
	}
	return level
}

// EventType represents a user-visible change or alarm lifecycle event.
type EventType string

const (
	EventAlarmSet       EventType = "ALARM_SET"
	EventAlarmTriggered EventType = "ALARM_TRIGGERED"
	EventAlarmCancelled EventType = "ALARM_CANCELLED"
	EventRingtoneSet    EventType = "RINGTONE_SET"
	EventBrightnessSet  EventType = "BRIGHTNESS_SET"
	EventSettingsReset  EventType = "SETTINGS_RESET"
)

// Lifecycle reports whether t is an alarm trigger or cancellation rather
// than a settings change.
func (t EventType) Lifecycle() bool {
	return t == EventAlarmTriggered || t == EventAlarmCancelled
}

// Event represents a change to be published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Settings  Settings
	Ringtone  string // ringtone name at the time of the event
	SessionID string // feedback session, trigger/cancel only
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	Triggered int
	Cancelled int
	Changes   int
}

// Count adds the event to the counters.
func (c *EventCounts) Count(t EventType) {
	switch t {
	case EventAlarmTriggered:
		c.Triggered++
	case EventAlarmCancelled:
		c.Cancelled++
	default:
		c.Changes++
	}
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    EventCounts
}

func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
