//go:build !linux

package gpio

import (
	"errors"

	"github.com/sweeney/alarm-clock/internal/input"
)

// Hardware is not available on non-Linux platforms.
type Hardware struct {
	Joystick *Joystick
	Buzzer   *Buzzer
}

// Open returns an error on non-Linux platforms.
func Open(chipName string, pins Pins, confirm, cancel *input.Edge) (*Hardware, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Close is not implemented on non-Linux platforms.
func (h *Hardware) Close() error {
	return nil
}
