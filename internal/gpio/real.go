//go:build linux

package gpio

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/alarm-clock/internal/input"
)

// Hardware owns every requested line of the alarm clock.
type Hardware struct {
	Joystick *Joystick
	Buzzer   *Buzzer

	chip  *gpiocdev.Chip
	lines []*gpiocdev.Line
}

// Open requests the button, joystick and buzzer lines on chipName.
// Button presses are captured from kernel edge events into confirm and
// cancel; the event timestamps feed the debounce.
func Open(chipName string, pins Pins, confirm, cancel *input.Edge) (*Hardware, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	h := &Hardware{chip: chip}

	request := func(name string, offset int, opts ...gpiocdev.LineReqOption) (*gpiocdev.Line, error) {
		l, err := chip.RequestLine(offset, opts...)
		if err != nil {
			h.Close()
			return nil, fmt.Errorf("request %s pin %d: %w", name, offset, err)
		}
		h.lines = append(h.lines, l)
		return l, nil
	}

	button := func(name string, offset int, edge *input.Edge) error {
		_, err := request(name, offset,
			gpiocdev.AsInput,
			gpiocdev.WithPullUp,
			gpiocdev.WithFallingEdge,
			gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
				if !edge.Capture(evt.Timestamp) {
					log.Debug().Str("component", "gpio").Str("button", name).Msg("bounce dropped")
				}
			}))
		return err
	}
	if err := button("confirm", pins.Confirm, confirm); err != nil {
		return nil, err
	}
	if err := button("cancel", pins.Cancel, cancel); err != nil {
		return nil, err
	}

	var dirs [4]*gpiocdev.Line
	for i, p := range []struct {
		name   string
		offset int
	}{{"up", pins.Up}, {"down", pins.Down}, {"left", pins.Left}, {"right", pins.Right}} {
		l, err := request(p.name, p.offset, gpiocdev.AsInput, gpiocdev.WithPullUp)
		if err != nil {
			return nil, err
		}
		dirs[i] = l
	}
	h.Joystick = NewJoystick(dirs[0], dirs[1], dirs[2], dirs[3])

	buzzer, err := request("buzzer", pins.Buzzer, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, err
	}
	h.Buzzer = NewBuzzer(buzzer)

	log.Info().Str("component", "gpio").Str("chip", chipName).Msg("lines requested")
	return h, nil
}

// Close releases GPIO resources.
// Lines are reconfigured to input with pull-down (matching Pi boot defaults)
// before closing so the buzzer is never left driven.
func (h *Hardware) Close() error {
	var errs []error
	for _, l := range h.lines {
		if err := l.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure line %d: %w", l.Offset(), err))
		}
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line %d: %w", l.Offset(), err))
		}
	}
	h.lines = nil
	if h.chip != nil {
		if err := h.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		h.chip = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
