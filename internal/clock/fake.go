package clock

import (
	"context"
	"time"

	"github.com/sweeney/alarm-clock/internal/logic"
)

// FakeRTC is a test double holding a settable timestamp.
type FakeRTC struct {
	// Current is returned by Time().
	Current logic.Timestamp

	// ReadError, if set, will be returned by Time().
	ReadError error

	// SetError, if set, will be returned by SetTime().
	SetError error

	// Sets records every timestamp passed to SetTime.
	Sets []logic.Timestamp
}

// NewFakeRTC creates a FakeRTC reading h:m:s.
func NewFakeRTC(h, m, s int) *FakeRTC {
	return &FakeRTC{Current: logic.NewTimestamp(h, m, s)}
}

// Time returns Current.
func (f *FakeRTC) Time() (logic.Timestamp, error) {
	if f.ReadError != nil {
		return logic.Timestamp{}, f.ReadError
	}
	return f.Current, nil
}

// SetTime records ts and makes it current.
func (f *FakeRTC) SetTime(ts logic.Timestamp) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Sets = append(f.Sets, ts)
	f.Current = ts
	return nil
}

// Advance moves the clock forward by d.
func (f *FakeRTC) Advance(d time.Duration) {
	secs := f.Current.Hour()*3600 + f.Current.Minute()*60 + f.Current.Second() + int(d/time.Second)
	f.Current = logic.NewTimestamp(secs/3600, (secs/60)%60, secs%60)
}

// FakeNetworkTime is a scripted network time collaborator.
type FakeNetworkTime struct {
	Time  time.Time
	Err   error
	Calls int
}

// FetchTime returns the scripted time or error.
func (f *FakeNetworkTime) FetchTime(ctx context.Context) (time.Time, error) {
	f.Calls++
	if f.Err != nil {
		return time.Time{}, f.Err
	}
	return f.Time, nil
}
