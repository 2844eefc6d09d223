package menu

import (
	"fmt"
	"strings"

	"github.com/sweeney/alarm-clock/internal/display"
)

const maxItems = 10

// Fixed positions on the 128x64 screen.
const (
	rowHeight  = display.LineHeight
	menuRows   = 4
	labelX     = 10
	separatorY = 40
	footerY    = 50
	valueX     = 30
	valueY     = 20
	caretY     = 30
	hourCaretX = 33
	minCaretX  = 51
	footerW    = 20
	labelW     = 16
)

type item struct {
	text string
	x, y int
}

// view is everything a screen draws, comparable so that an unchanged screen
// is not redrawn. Each screen always emits the same items in the same order.
type view struct {
	kind  Kind
	n     int
	items [maxItems]item
}

func (v *view) add(text string, x, y int) {
	v.items[v.n] = item{text: text, x: x, y: y}
	v.n++
}

// Render draws the current screen. The display is cleared only on the first
// render after entering a state; afterwards only changed items are redrawn
// and nothing is drawn when the screen is unchanged.
func (c *Controller) Render() {
	if c.display == nil {
		return
	}
	v := c.view()

	if c.fresh || v.kind != c.last.kind || v.n != c.last.n {
		c.display.Clear()
		for i := 0; i < v.n; i++ {
			it := v.items[i]
			if strings.TrimSpace(it.text) != "" {
				c.display.DrawText(it.text, it.x, it.y)
			}
		}
		c.display.DrawLine(0, separatorY, 120, separatorY)
		c.fresh = false
		c.last = v
		return
	}

	if v == c.last {
		return
	}
	for i := 0; i < v.n; i++ {
		if v.items[i] != c.last.items[i] {
			it := v.items[i]
			c.display.DrawText(it.text, it.x, it.y)
		}
	}
	c.last = v
}

func (c *Controller) view() view {
	v := view{kind: c.state.Kind}
	switch c.state.Kind {
	case MainMenu:
		for i, name := range Entries {
			v.add(marker(i == c.state.Selected), 0, i*rowHeight)
			v.add(fmt.Sprintf("%d %s", i+1, name), labelX, i*rowHeight)
		}
		v.add(pad(c.footer(), footerW), 0, footerY)

	case AlarmSetup:
		v.add("Set alarm", 0, 0)
		v.add(c.state.Alarm.String(), valueX, valueY)
		// the caret under the edited field blinks on tick parity
		show := c.tick%2 == 0
		v.add(caret(show && c.state.Field == FieldHour), hourCaretX, caretY)
		v.add(caret(show && c.state.Field == FieldMinute), minCaretX, caretY)
		v.add("A ok  B back", 0, footerY)

	case LightingSetup:
		v.add("Lighting", 0, 0)
		v.add(fmt.Sprintf("Level %2d", c.state.Level), valueX, valueY)
		v.add("["+strings.Repeat("#", c.state.Level)+strings.Repeat("-", 10-c.state.Level)+"]", valueX, caretY)
		v.add("A ok  B back", 0, footerY)

	case RingtoneSetup:
		top := 0
		if c.state.Selected >= menuRows {
			top = c.state.Selected - menuRows + 1
		}
		for row := 0; row < menuRows; row++ {
			i := top + row
			label := ""
			if i < c.lib.Len() {
				label = fmt.Sprintf("%d %s", i+1, c.lib.At(i).Name)
			}
			v.add(marker(i == c.state.Selected), 0, row*rowHeight)
			v.add(pad(label, labelW), labelX, row*rowHeight)
		}
		v.add("A ok  B back", 0, footerY)

	case ResetConfirm:
		v.add("Reset settings?", 0, 0)
		v.add(marker(!c.state.Yes), 0, valueY)
		v.add("No", labelX, valueY)
		v.add(marker(c.state.Yes), 0, caretY)
		v.add("Yes", labelX, caretY)
		v.add("A ok  B back", 0, footerY)

	case AlarmTriggered:
		v.add("ALARM", 0, 0)
		v.add(c.settings.Alarm.String(), valueX, valueY)
		v.add(pad(c.lib.At(c.settings.Ringtone).Name, labelW), 0, caretY)
		v.add("B to stop", 0, footerY)
	}
	return v
}

// footer is the main menu status line: the clock and the alarm when a clock
// is available, otherwise a prompt.
func (c *Controller) footer() string {
	if !c.hasClock {
		return "Press A"
	}
	alarm := "off"
	if c.settings.Alarm.Enabled() {
		alarm = c.settings.Alarm.String()
	}
	return fmt.Sprintf("%s  A %s", c.clock, alarm)
}

func marker(selected bool) string {
	if selected {
		return ">"
	}
	return " "
}

func caret(show bool) string {
	if show {
		return "^"
	}
	return " "
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
