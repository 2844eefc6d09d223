// Package menu implements the screen state machine of the alarm clock.
//
// The Controller is the single writer of the settings aggregate and of the
// menu state. Other components read copies through its accessors; the
// scheduler requests the AlarmTriggered transition through TriggerAlarm.
package menu

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sweeney/alarm-clock/internal/display"
	"github.com/sweeney/alarm-clock/internal/feedback"
	"github.com/sweeney/alarm-clock/internal/input"
	"github.com/sweeney/alarm-clock/internal/logic"
)

// Kind identifies the active screen.
type Kind int

const (
	MainMenu Kind = iota
	AlarmSetup
	LightingSetup
	RingtoneSetup
	ResetConfirm
	AlarmTriggered
)

func (k Kind) String() string {
	switch k {
	case MainMenu:
		return "MAIN_MENU"
	case AlarmSetup:
		return "ALARM_SETUP"
	case LightingSetup:
		return "LIGHTING_SETUP"
	case RingtoneSetup:
		return "RINGTONE_SETUP"
	case ResetConfirm:
		return "RESET_CONFIRM"
	case AlarmTriggered:
		return "ALARM_TRIGGERED"
	default:
		return "UNKNOWN"
	}
}

// Field is the alarm component under edit.
type Field int

const (
	FieldHour Field = iota
	FieldMinute
)

// Entries of the main menu, in order. Confirm on entry i enters entryKinds[i].
var Entries = []string{"Alarm", "Lighting", "Ringtone", "Reset"}

var entryKinds = []Kind{AlarmSetup, LightingSetup, RingtoneSetup, ResetConfirm}

// State is the active screen and its local edit fields.
type State struct {
	Kind     Kind
	Selected int               // main menu entry or ringtone choice
	Field    Field             // AlarmSetup
	Alarm    logic.AlarmConfig // AlarmSetup working copy
	Level    int               // LightingSetup working copy
	Yes      bool              // ResetConfirm choice
}

// DefaultConfirmDelay is how long confirmation messages stay on screen.
const DefaultConfirmDelay = time.Second

// Config holds the controller collaborators.
type Config struct {
	Display      display.Display
	Sequencer    *feedback.Sequencer
	Library      *feedback.Library
	Settings     logic.Settings // startup values, restored by Reset with the alarm disabled
	ConfirmDelay time.Duration
}

// Controller is the menu state machine.
type Controller struct {
	display      display.Display
	seq          *feedback.Sequencer
	lib          *feedback.Library
	confirmDelay time.Duration

	// sleep is replaced in tests.
	sleep func(time.Duration)

	settings logic.Settings
	defaults logic.Settings
	state    State
	mainSel  int
	tick     uint64

	clock    logic.Timestamp
	hasClock bool

	fresh bool
	last  view
}

// New creates a controller in MainMenu. The initial settings are applied to
// the light collaborator.
func New(cfg Config) *Controller {
	lib := cfg.Library
	if lib == nil {
		lib = feedback.DefaultLibrary()
	}
	s := cfg.Settings
	s.Ringtone = ((s.Ringtone % lib.Len()) + lib.Len()) % lib.Len()
	s.Brightness = logic.ClampBrightness(s.Brightness)

	c := &Controller{
		display:      cfg.Display,
		seq:          cfg.Sequencer,
		lib:          lib,
		confirmDelay: cfg.ConfirmDelay,
		sleep:        time.Sleep,
		settings:     s,
		defaults:     s,
		state:        State{Kind: MainMenu},
		fresh:        true,
	}
	c.defaults.Alarm = s.Alarm.WithEnabled(false)
	if c.seq != nil {
		c.seq.SetBrightness(s.Brightness)
	}
	return c
}

// Step advances the state machine by one input event and returns the
// changes to publish.
func (c *Controller) Step(ev input.Event, now time.Time) []logic.Event {
	c.tick++
	switch c.state.Kind {
	case MainMenu:
		return c.stepMain(ev)
	case AlarmSetup:
		return c.stepAlarm(ev, now)
	case LightingSetup:
		return c.stepLighting(ev, now)
	case RingtoneSetup:
		return c.stepRingtone(ev, now)
	case ResetConfirm:
		return c.stepReset(ev, now)
	case AlarmTriggered:
		return c.stepTriggered(ev, now)
	}
	return nil
}

func (c *Controller) stepMain(ev input.Event) []logic.Event {
	n := len(Entries)
	switch ev {
	case input.Down:
		c.state.Selected = (c.state.Selected + 1) % n
	case input.Up:
		c.state.Selected = (c.state.Selected - 1 + n) % n
	case input.Confirm:
		c.mainSel = c.state.Selected
		c.enter(entryKinds[c.state.Selected])
	}
	return nil
}

func (c *Controller) stepAlarm(ev input.Event, now time.Time) []logic.Event {
	switch ev {
	case input.Up, input.Down:
		delta := 1
		if ev == input.Down {
			delta = -1
		}
		if c.state.Field == FieldHour {
			c.state.Alarm = c.state.Alarm.WithHour(delta)
		} else {
			c.state.Alarm = c.state.Alarm.WithMinute(delta)
		}
	case input.Left:
		c.state.Field = FieldHour
	case input.Right:
		c.state.Field = FieldMinute
	case input.Confirm:
		c.settings.Alarm = c.state.Alarm.WithEnabled(true)
		log.Info().Str("component", "menu").Str("alarm", c.settings.Alarm.String()).Msg("alarm set")
		c.confirm("Alarm set\n" + c.settings.Alarm.String())
		return []logic.Event{c.event(logic.EventAlarmSet, now)}
	case input.Cancel:
		c.enter(MainMenu)
	}
	return nil
}

func (c *Controller) stepLighting(ev input.Event, now time.Time) []logic.Event {
	switch ev {
	case input.Up:
		c.state.Level = logic.ClampBrightness(c.state.Level + 1)
	case input.Down:
		c.state.Level = logic.ClampBrightness(c.state.Level - 1)
	case input.Confirm:
		c.settings.Brightness = c.state.Level
		if c.seq != nil {
			c.seq.SetBrightness(c.settings.Brightness)
		}
		log.Info().Str("component", "menu").Int("brightness", c.settings.Brightness).Msg("brightness set")
		c.confirm("Lighting set")
		return []logic.Event{c.event(logic.EventBrightnessSet, now)}
	case input.Cancel:
		c.enter(MainMenu)
	}
	return nil
}

func (c *Controller) stepRingtone(ev input.Event, now time.Time) []logic.Event {
	n := c.lib.Len()
	switch ev {
	case input.Down:
		c.state.Selected = (c.state.Selected + 1) % n
	case input.Up:
		c.state.Selected = (c.state.Selected - 1 + n) % n
	case input.Confirm:
		c.settings.Ringtone = c.state.Selected
		log.Info().Str("component", "menu").Str("ringtone", c.lib.At(c.settings.Ringtone).Name).Msg("ringtone set")
		c.confirm("Ringtone set")
		return []logic.Event{c.event(logic.EventRingtoneSet, now)}
	case input.Cancel:
		c.enter(MainMenu)
	}
	return nil
}

func (c *Controller) stepReset(ev input.Event, now time.Time) []logic.Event {
	switch ev {
	case input.Up, input.Down:
		c.state.Yes = !c.state.Yes
	case input.Confirm:
		if !c.state.Yes {
			c.enter(MainMenu)
			return nil
		}
		c.settings = c.defaults
		if c.seq != nil {
			c.seq.SetBrightness(c.settings.Brightness)
		}
		log.Info().Str("component", "menu").Msg("settings reset to startup values")
		c.confirm("Settings\nreset")
		return []logic.Event{c.event(logic.EventSettingsReset, now)}
	case input.Cancel:
		c.enter(MainMenu)
	}
	return nil
}

func (c *Controller) stepTriggered(ev input.Event, now time.Time) []logic.Event {
	if ev != input.Cancel {
		return nil
	}
	e := c.event(logic.EventAlarmCancelled, now)
	if c.seq != nil {
		e.SessionID = c.seq.SessionID()
		c.seq.Stop()
	}
	log.Info().Str("component", "menu").Str("session", e.SessionID).Msg("alarm cancelled")
	c.enter(MainMenu)
	return []logic.Event{e}
}

// TriggerAlarm moves to AlarmTriggered and starts a feedback session with
// the selected ringtone. It is ignored outside MainMenu.
func (c *Controller) TriggerAlarm(now time.Time) (logic.Event, bool) {
	if c.state.Kind != MainMenu {
		return logic.Event{}, false
	}
	e := c.event(logic.EventAlarmTriggered, now)
	if c.seq != nil {
		e.SessionID = c.seq.Start(c.lib.At(c.settings.Ringtone), now)
	}
	log.Info().Str("component", "menu").
		Str("alarm", c.settings.Alarm.String()).
		Str("ringtone", e.Ringtone).
		Msg("alarm triggered")
	c.enter(AlarmTriggered)
	return e, true
}

// enter switches screens with a fresh local edit state seeded from the
// committed settings.
func (c *Controller) enter(k Kind) {
	st := State{Kind: k}
	switch k {
	case MainMenu:
		st.Selected = c.mainSel
	case AlarmSetup:
		st.Alarm = c.settings.Alarm
		st.Field = FieldHour
	case LightingSetup:
		st.Level = c.settings.Brightness
	case RingtoneSetup:
		st.Selected = c.settings.Ringtone
	}
	c.state = st
	c.fresh = true
}

// confirm shows a message for the confirmation delay and returns to MainMenu.
func (c *Controller) confirm(msg string) {
	if c.display != nil {
		c.display.Clear()
		c.display.DrawText(msg, 0, 25)
	}
	if c.confirmDelay > 0 {
		c.sleep(c.confirmDelay)
	}
	c.enter(MainMenu)
}

func (c *Controller) event(t logic.EventType, now time.Time) logic.Event {
	return logic.Event{
		Timestamp: now,
		Type:      t,
		Settings:  c.settings,
		Ringtone:  c.lib.At(c.settings.Ringtone).Name,
	}
}

// SetClock updates the time shown on the main menu footer.
// ok is false when no clock is available.
func (c *Controller) SetClock(ts logic.Timestamp, ok bool) {
	c.clock = ts
	c.hasClock = ok
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	return c.state
}

// Kind returns the active screen.
func (c *Controller) Kind() Kind {
	return c.state.Kind
}

// Settings returns a copy of the committed settings.
func (c *Controller) Settings() logic.Settings {
	return c.settings
}

// Alarm returns a copy of the committed alarm.
func (c *Controller) Alarm() logic.AlarmConfig {
	return c.settings.Alarm
}

// Ringtone returns the committed ringtone.
func (c *Controller) Ringtone() feedback.Ringtone {
	return c.lib.At(c.settings.Ringtone)
}

// Library returns the ringtone library.
func (c *Controller) Library() *feedback.Library {
	return c.lib
}
