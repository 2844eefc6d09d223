// Package input turns raw joystick samples and button edges into discrete
// menu events.
//
// Directions are level-triggered: they are re-evaluated from the analog axis
// samples on every poll. Buttons are edge-triggered: an Edge is set by the
// capture path (a GPIO event goroutine or the simulator) and consumed at most
// once by the tick loop.
package input

import (
	"github.com/rs/zerolog/log"
)

// Axis thresholds on the 0–4095 sample range.
const (
	AxisMax       = 4095
	AxisCenter    = 2048
	ThresholdLow  = 500
	ThresholdHigh = 3900
)

// AxisReader reads the raw joystick samples.
type AxisReader interface {
	// ReadAxes returns the horizontal (x) and vertical (y) samples, 0–4095.
	ReadAxes() (x, y int, err error)
}

// Axes is the level-triggered direction state of one poll.
type Axes struct {
	Left  bool
	Right bool
	Up    bool
	Down  bool
}

// AxesFromSamples maps raw samples to directions: below ThresholdLow is
// left/down, above ThresholdHigh is right/up, anything between is centred.
func AxesFromSamples(x, y int) Axes {
	return Axes{
		Left:  x < ThresholdLow,
		Right: x > ThresholdHigh,
		Down:  y < ThresholdLow,
		Up:    y > ThresholdHigh,
	}
}

// Event is one discrete input event delivered per tick.
type Event int

const (
	None Event = iota
	Up
	Down
	Left
	Right
	Confirm
	Cancel
)

func (e Event) String() string {
	switch e {
	case Up:
		return "UP"
	case Down:
		return "DOWN"
	case Left:
		return "LEFT"
	case Right:
		return "RIGHT"
	case Confirm:
		return "CONFIRM"
	case Cancel:
		return "CANCEL"
	default:
		return "NONE"
	}
}

// Service polls the joystick and consumes button edges.
type Service struct {
	axes    AxisReader
	confirm *Edge
	cancel  *Edge
}

// NewService creates an input service. axes may be nil when no joystick is
// fitted; directions then never fire.
func NewService(axes AxisReader, confirm, cancel *Edge) *Service {
	return &Service{axes: axes, confirm: confirm, cancel: cancel}
}

// PollAxes samples the joystick. A read error is treated as no direction.
func (s *Service) PollAxes() Axes {
	if s.axes == nil {
		return Axes{}
	}
	x, y, err := s.axes.ReadAxes()
	if err != nil {
		log.Debug().Str("component", "input").Err(err).Msg("axis read failed, ignoring")
		return Axes{}
	}
	return AxesFromSamples(x, y)
}

// PollConfirm consumes the confirm edge. It returns true at most once per
// registered press.
func (s *Service) PollConfirm() bool {
	return s.confirm != nil && s.confirm.Take()
}

// PollCancel consumes the cancel edge. It returns true at most once per
// registered press.
func (s *Service) PollCancel() bool {
	return s.cancel != nil && s.cancel.Take()
}

// Next returns the single event for this tick.
// Priority: Cancel, Confirm, Up, Down, Left, Right. When both edges are
// pending only Cancel is consumed; Confirm stays pending for the next tick.
func (s *Service) Next() Event {
	if s.PollCancel() {
		return Cancel
	}
	if s.PollConfirm() {
		return Confirm
	}
	a := s.PollAxes()
	switch {
	case a.Up:
		return Up
	case a.Down:
		return Down
	case a.Left:
		return Left
	case a.Right:
		return Right
	}
	return None
}
