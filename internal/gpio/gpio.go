// Package gpio provides the alarm clock's buttons, joystick and buzzer with
// hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sweeney/alarm-clock/internal/input"
)

// Line is a single requested GPIO line.
type Line interface {
	Value() (int, error)
	SetValue(value int) error
	Close() error
}

// Pin definitions (BCM numbering)
const (
	PinConfirm = 5
	PinCancel  = 6
	PinUp      = 17
	PinDown    = 27
	PinLeft    = 22
	PinRight   = 23
	PinBuzzer  = 18
)

// DefaultChip is the GPIO character device of the Raspberry Pi header.
const DefaultChip = "gpiochip0"

// Pins holds the line offsets of every input and output.
type Pins struct {
	Confirm int
	Cancel  int
	Up      int
	Down    int
	Left    int
	Right   int
	Buzzer  int
}

// DefaultPins returns the standard wiring.
func DefaultPins() Pins {
	return Pins{
		Confirm: PinConfirm,
		Cancel:  PinCancel,
		Up:      PinUp,
		Down:    PinDown,
		Left:    PinLeft,
		Right:   PinRight,
		Buzzer:  PinBuzzer,
	}
}

// Joystick is a four-switch digital joystick, active low with pull-ups.
// It reports positions on the analog sample range so that the input service
// treats it like an analog stick pushed to its end stops.
type Joystick struct {
	up, down, left, right Line
}

// NewJoystick creates a joystick from its four direction lines.
func NewJoystick(up, down, left, right Line) *Joystick {
	return &Joystick{up: up, down: down, left: left, right: right}
}

// ReadAxes implements input.AxisReader.
func (j *Joystick) ReadAxes() (int, int, error) {
	var pressed [4]bool
	for i, l := range []Line{j.up, j.down, j.left, j.right} {
		v, err := l.Value()
		if err != nil {
			return 0, 0, fmt.Errorf("read joystick: %w", err)
		}
		pressed[i] = v == 0
	}
	up, down, left, right := pressed[0], pressed[1], pressed[2], pressed[3]

	x, y := input.AxisCenter, input.AxisCenter
	switch {
	case left && !right:
		x = 0
	case right && !left:
		x = input.AxisMax
	}
	switch {
	case up && !down:
		y = input.AxisMax
	case down && !up:
		y = 0
	}
	return x, y, nil
}

// Buzzer drives a passive buzzer by toggling a line at the tone frequency.
type Buzzer struct {
	line Line

	mu      sync.Mutex
	stopped atomic.Bool

	// replaced in tests
	now   func() time.Time
	sleep func(time.Duration)
}

// NewBuzzer creates a buzzer on an output line.
func NewBuzzer(line Line) *Buzzer {
	return &Buzzer{line: line, now: time.Now, sleep: time.Sleep}
}

// PlayTone implements feedback.Audio. It blocks for ms milliseconds unless
// Stop is called, and leaves the line low.
func (b *Buzzer) PlayTone(hz, ms int) {
	if hz <= 0 || ms <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopped.Store(false)

	half := time.Second / time.Duration(2*hz)
	deadline := b.now().Add(time.Duration(ms) * time.Millisecond)
	v := 0
	for b.now().Before(deadline) && !b.stopped.Load() {
		v ^= 1
		_ = b.line.SetValue(v)
		b.sleep(half)
	}
	_ = b.line.SetValue(0)
}

// Stop implements feedback.Audio.
func (b *Buzzer) Stop() {
	b.stopped.Store(true)
	_ = b.line.SetValue(0)
}
