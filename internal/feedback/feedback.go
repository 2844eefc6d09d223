// Package feedback plays the alarm: ringtone notes on the audio collaborator
// and a blink pattern on the light collaborator.
//
// The sequencer is stepped by the tick loop. Each Step performs one discrete
// action so that a cancel press is observed between notes.
package feedback

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Audio is the tone output collaborator.
type Audio interface {
	// PlayTone sounds hz for ms milliseconds and returns silent.
	// It may block for the duration.
	PlayTone(hz, ms int)

	// Stop silences any tone immediately.
	Stop()
}

// Light is the pixel output collaborator.
type Light interface {
	SetPixel(i int, r, g, b uint8)
	SetBrightness(level int)
	Flush() error
	Len() int
}

// Blink timing.
const (
	HalfPeriod      = 500 * time.Millisecond
	BlinkHalfCycles = 6
	NoteGap         = 50 * time.Millisecond
)

// StepKind reports what a Step did.
type StepKind int

const (
	StepIdle StepKind = iota
	StepLight
	StepNote
)

func (k StepKind) String() string {
	switch k {
	case StepLight:
		return "light"
	case StepNote:
		return "note"
	default:
		return "idle"
	}
}

// Sequencer owns one feedback session at a time.
type Sequencer struct {
	audio Audio
	light Light

	// sleep is replaced in tests.
	sleep func(time.Duration)
	newID func() string

	active     bool
	session    string
	ringtone   Ringtone
	note       int
	passes     int
	halfCycles int
	nextBlink  time.Time
}

// NewSequencer creates an idle sequencer. light may be nil.
func NewSequencer(audio Audio, light Light) *Sequencer {
	return &Sequencer{
		audio: audio,
		light: light,
		sleep: time.Sleep,
		newID: uuid.NewString,
	}
}

// SetBrightness applies a light level to the light collaborator.
func (s *Sequencer) SetBrightness(level int) {
	if s.light != nil {
		s.light.SetBrightness(level)
	}
}

// Start begins a session for r at now and returns its ID. A running session
// is replaced. The first light half-cycle is due immediately.
func (s *Sequencer) Start(r Ringtone, now time.Time) string {
	s.active = true
	s.session = s.newID()
	s.ringtone = r
	s.note = 0
	s.passes = 0
	s.halfCycles = 0
	s.nextBlink = now
	log.Info().Str("component", "feedback").
		Str("session", s.session).
		Str("ringtone", r.Name).
		Msg("alarm feedback started")
	return s.session
}

// Step performs one action: a light half-cycle if one is due, otherwise the
// next note followed by a short silence. Notes repeat until Stop.
func (s *Sequencer) Step(now time.Time) StepKind {
	if !s.active {
		return StepIdle
	}

	if s.halfCycles < BlinkHalfCycles && !now.Before(s.nextBlink) {
		on := s.halfCycles%2 == 0
		if on {
			s.fill(255, 255, 255)
		} else {
			s.fill(0, 0, 0)
		}
		s.halfCycles++
		s.nextBlink = now.Add(HalfPeriod)
		return StepLight
	}

	if len(s.ringtone.Notes) == 0 || s.audio == nil {
		return StepIdle
	}
	n := s.ringtone.Notes[s.note]
	s.audio.PlayTone(n.Hz, n.Ms)
	s.sleep(NoteGap)
	s.note++
	if s.note == len(s.ringtone.Notes) {
		s.note = 0
		s.passes++
	}
	return StepNote
}

// Stop ends the session: audio is silenced and every pixel blanked.
// Calling Stop while idle still silences the outputs.
func (s *Sequencer) Stop() {
	if s.audio != nil {
		s.audio.Stop()
	}
	s.fill(0, 0, 0)
	if s.active {
		log.Info().Str("component", "feedback").
			Str("session", s.session).
			Int("passes", s.passes).
			Msg("alarm feedback stopped")
	}
	s.active = false
}

// Active reports whether a session is running.
func (s *Sequencer) Active() bool {
	return s.active
}

// SessionID returns the current or last session ID.
func (s *Sequencer) SessionID() string {
	return s.session
}

// Passes returns the number of completed passes through the ringtone.
func (s *Sequencer) Passes() int {
	return s.passes
}

// Ringtone returns the ringtone of the current or last session.
func (s *Sequencer) Ringtone() Ringtone {
	return s.ringtone
}

func (s *Sequencer) fill(r, g, b uint8) {
	if s.light == nil {
		return
	}
	for i := 0; i < s.light.Len(); i++ {
		s.light.SetPixel(i, r, g, b)
	}
	if err := s.light.Flush(); err != nil {
		log.Warn().Str("component", "feedback").Err(err).Msg("light flush failed")
	}
}
