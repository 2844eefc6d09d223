// Package device runs one cooperative tick of the alarm clock: poll input,
// advance the menu, check the alarm, step the feedback, render.
package device

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sweeney/alarm-clock/internal/clock"
	"github.com/sweeney/alarm-clock/internal/feedback"
	"github.com/sweeney/alarm-clock/internal/input"
	"github.com/sweeney/alarm-clock/internal/logic"
	"github.com/sweeney/alarm-clock/internal/menu"
)

// DefaultTick is the control loop period.
const DefaultTick = 200 * time.Millisecond

// Result describes what one tick did.
type Result struct {
	Time    time.Time
	Input   input.Event
	Events  []logic.Event
	Step    feedback.StepKind
	Clock   logic.Timestamp
	ClockOK bool
	Kind    menu.Kind
	Took    time.Duration // processing time, measured by Run
}

// Device wires the core components. All methods must be called from the
// tick loop goroutine.
type Device struct {
	input *input.Service
	clock *clock.Source
	menu  *menu.Controller
	seq   *feedback.Sequencer
	sched *logic.Scheduler

	counts    logic.EventCounts
	clockErrs int

	// replaced in tests
	elapsed func() time.Time
}

// New creates a device. clk may be nil or empty; the menu then runs without
// alarm scheduling.
func New(in *input.Service, clk *clock.Source, ctrl *menu.Controller, seq *feedback.Sequencer) *Device {
	if !clk.Available() {
		log.Warn().Str("component", "device").Msg("no clock available, alarm scheduling disabled")
	}
	return &Device{
		input:   in,
		clock:   clk,
		menu:    ctrl,
		seq:     seq,
		sched:   logic.NewScheduler(),
		elapsed: time.Now,
	}
}

// Tick runs one iteration of the control loop at wall time now.
func (d *Device) Tick(now time.Time) Result {
	r := Result{Time: now, Input: d.input.Next()}
	r.Events = d.menu.Step(r.Input, now)

	if d.clock.Available() {
		ts, err := d.clock.Now()
		if err != nil {
			d.clockErrs++
			log.Debug().Str("component", "device").Err(err).Msg("clock read failed")
		} else {
			r.Clock, r.ClockOK = ts, true
		}
	}
	d.menu.SetClock(r.Clock, r.ClockOK)

	if r.ClockOK && d.menu.Kind() == menu.MainMenu {
		if d.sched.Check(d.menu.Alarm(), r.Clock) {
			if e, ok := d.menu.TriggerAlarm(now); ok {
				r.Events = append(r.Events, e)
			}
		}
	}

	if d.menu.Kind() == menu.AlarmTriggered && d.seq != nil {
		r.Step = d.seq.Step(now)
	}

	d.menu.Render()

	for _, e := range r.Events {
		d.counts.Count(e.Type)
	}
	r.Kind = d.menu.Kind()
	return r
}

// Run ticks on every value from tick until ctx is done. handle, if set, is
// called with each result on the loop goroutine.
func (d *Device) Run(ctx context.Context, tick <-chan time.Time, handle func(Result)) error {
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case now := <-tick:
			started := d.elapsed()
			r := d.Tick(now)
			r.Took = d.elapsed().Sub(started)
			if handle != nil {
				handle(r)
			}
		}
	}
}

// Shutdown silences the outputs.
func (d *Device) Shutdown() {
	if d.seq != nil {
		d.seq.Stop()
	}
}

// Counts returns the events emitted since startup.
func (d *Device) Counts() logic.EventCounts {
	return d.counts
}

// ClockErrors returns the number of failed clock reads.
func (d *Device) ClockErrors() int {
	return d.clockErrs
}

// Menu returns the menu controller.
func (d *Device) Menu() *menu.Controller {
	return d.menu
}

// Sequencer returns the feedback sequencer.
func (d *Device) Sequencer() *feedback.Sequencer {
	return d.seq
}
