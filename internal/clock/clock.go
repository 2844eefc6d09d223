// Package clock provides the time source for the alarm scheduler.
// The peripheral is abstracted so the host clock, a fake, or a hardware RTC
// can back it; the network time sync runs once at boot.
package clock

import (
	"fmt"
	"sync"
	"time"

	"github.com/sweeney/alarm-clock/internal/logic"
)

// Error is a sentinel error type.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrNoClock      = Error("clock: no peripheral available")
	ErrNotSupported = Error("clock: not supported")
)

// Peripheral is the clock collaborator.
type Peripheral interface {
	// Time returns the current wall-clock reading.
	Time() (logic.Timestamp, error)

	// SetTime moves the clock to ts.
	SetTime(ts logic.Timestamp) error
}

// Source is the time source read by the scheduler.
type Source struct {
	p Peripheral
}

// NewSource wraps a peripheral. A nil peripheral yields ErrNoClock from every call.
func NewSource(p Peripheral) *Source {
	return &Source{p: p}
}

// Available reports whether a peripheral is attached.
func (s *Source) Available() bool {
	return s != nil && s.p != nil
}

// Now returns the current timestamp.
func (s *Source) Now() (logic.Timestamp, error) {
	if !s.Available() {
		return logic.Timestamp{}, ErrNoClock
	}
	ts, err := s.p.Time()
	if err != nil {
		return logic.Timestamp{}, fmt.Errorf("read clock: %w", err)
	}
	return ts, nil
}

// Set sets the current timestamp.
func (s *Source) Set(ts logic.Timestamp) error {
	if !s.Available() {
		return ErrNoClock
	}
	if err := s.p.SetTime(ts); err != nil {
		return fmt.Errorf("set clock: %w", err)
	}
	return nil
}

// SystemRTC emulates a battery-backed RTC on top of the host clock.
// SetTime stores an offset rather than touching the system clock.
type SystemRTC struct {
	mu     sync.Mutex
	loc    *time.Location
	offset time.Duration
	now    func() time.Time
}

// NewSystemRTC creates an RTC reading the host clock in loc.
func NewSystemRTC(loc *time.Location) *SystemRTC {
	if loc == nil {
		loc = time.Local
	}
	return &SystemRTC{loc: loc, now: time.Now}
}

// Time returns the host time plus any offset applied by SetTime.
func (r *SystemRTC) Time() (logic.Timestamp, error) {
	return logic.TimestampOf(r.WallTime()), nil
}

// WallTime returns the full adjusted time, for status output.
func (r *SystemRTC) WallTime() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.now().Add(r.offset).In(r.loc)
}

// SetTime adjusts the offset so that the clock reads ts on today's date.
func (r *SystemRTC) SetTime(ts logic.Timestamp) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	host := r.now().In(r.loc)
	current := host.Add(r.offset)
	target := time.Date(current.Year(), current.Month(), current.Day(),
		ts.Hour(), ts.Minute(), ts.Second(), 0, r.loc)
	r.offset = target.Sub(host)
	return nil
}

// SetWallTime aligns the clock to an absolute time, keeping the date.
func (r *SystemRTC) SetWallTime(t time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offset = t.Sub(r.now())
}

// Offset returns the current correction relative to the host clock.
func (r *SystemRTC) Offset() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.offset
}
