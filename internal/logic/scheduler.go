package logic

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler decides when the configured alarm fires.
//
// The alarm only matches at second 0 of the configured minute. A tick that
// misses second 0 (for example while a note is playing) skips the alarm for
// that day; this is accepted and not compensated.
type Scheduler struct {
	// fired is set when the alarm fires and cleared by any reading whose
	// second is not 0, so it fires at most once per matching minute.
	fired bool
}

// NewScheduler creates a scheduler that has not fired yet.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Check reports whether the alarm should fire for the reading now.
// It returns true at most once until a reading with a non-zero second is seen.
func (s *Scheduler) Check(cfg AlarmConfig, now Timestamp) bool {
	if now.Second() != 0 {
		s.fired = false
		return false
	}
	if s.fired {
		return false
	}
	if !cfg.Enabled() || now.Hour() != cfg.Hour() || now.Minute() != cfg.Minute() {
		return false
	}
	s.fired = true
	return true
}

// Fired reports whether the scheduler has fired within the current second-0 window.
func (s *Scheduler) Fired() bool {
	return s.fired
}

// NextAlarm returns the next wall time after now at which cfg fires,
// in now's location. ok is false when the alarm is disabled.
func NextAlarm(cfg AlarmConfig, now time.Time) (next time.Time, ok bool) {
	if !cfg.Enabled() {
		return time.Time{}, false
	}
	sched, err := cron.ParseStandard(fmt.Sprintf("%d %d * * *", cfg.Minute(), cfg.Hour()))
	if err != nil {
		// Unreachable: hour and minute are always in range.
		return time.Time{}, false
	}
	return sched.Next(now), true
}

// Heartbeat tracks when the next heartbeat is due.
type Heartbeat struct {
	startTime     time.Time
	lastHeartbeat time.Time
}

// NewHeartbeat creates a heartbeat tracker. The startTime is used for uptime.
func NewHeartbeat(startTime time.Time) *Heartbeat {
	return &Heartbeat{startTime: startTime, lastHeartbeat: startTime}
}

// Check returns heartbeat data if the interval has elapsed since the last
// heartbeat (or startup). Returns nil if the interval has not elapsed, or if
// interval is <= 0 (disabled).
func (h *Heartbeat) Check(now time.Time, interval time.Duration, counts EventCounts) *HeartbeatData {
	if interval <= 0 {
		return nil
	}
	if now.Sub(h.lastHeartbeat) < interval {
		return nil
	}
	h.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(h.startTime),
		Counts:    counts,
	}
}
