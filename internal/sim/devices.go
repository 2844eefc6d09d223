package sim

import (
	"sync"
	"time"

	"github.com/sweeney/alarm-clock/internal/input"
)

// Joystick is an input.AxisReader driven by key presses. Terminals report
// no key releases, so each press deflects the stick for a single read.
type Joystick struct {
	mu      sync.Mutex
	pending input.Event
}

// Push deflects the stick towards dir for the next read. Non-direction
// events are ignored.
func (j *Joystick) Push(dir input.Event) {
	switch dir {
	case input.Up, input.Down, input.Left, input.Right:
	default:
		return
	}
	j.mu.Lock()
	j.pending = dir
	j.mu.Unlock()
}

// ReadAxes implements input.AxisReader.
func (j *Joystick) ReadAxes() (int, int, error) {
	j.mu.Lock()
	dir := j.pending
	j.pending = input.None
	j.mu.Unlock()

	x, y := input.AxisCenter, input.AxisCenter
	switch dir {
	case input.Up:
		y = input.AxisMax
	case input.Down:
		y = 0
	case input.Left:
		x = 0
	case input.Right:
		x = input.AxisMax
	}
	return x, y, nil
}

// Speaker is a feedback.Audio that shows the playing tone on screen.
// PlayTone blocks for the note duration like a real buzzer.
type Speaker struct {
	mu   sync.Mutex
	hz   int
	last int

	// replaced in tests
	sleep func(time.Duration)
}

// NewSpeaker creates a silent speaker.
func NewSpeaker() *Speaker {
	return &Speaker{sleep: time.Sleep}
}

// PlayTone implements feedback.Audio.
func (s *Speaker) PlayTone(hz, ms int) {
	if hz <= 0 || ms <= 0 {
		return
	}
	s.mu.Lock()
	s.hz, s.last = hz, hz
	s.mu.Unlock()

	s.sleep(time.Duration(ms) * time.Millisecond)

	s.mu.Lock()
	s.hz = 0
	s.mu.Unlock()
}

// Stop implements feedback.Audio.
func (s *Speaker) Stop() {
	s.mu.Lock()
	s.hz = 0
	s.mu.Unlock()
}

// Playing returns the frequency currently sounding, 0 if silent.
func (s *Speaker) Playing() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hz
}

// LastTone returns the most recent frequency played.
func (s *Speaker) LastTone() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
