// Package sim runs the alarm clock in a terminal: the display is drawn with
// half-block characters, the light strip as coloured dots, and keys stand in
// for the joystick and buttons.
package sim

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sweeney/alarm-clock/internal/device"
	"github.com/sweeney/alarm-clock/internal/display"
	"github.com/sweeney/alarm-clock/internal/feedback"
	"github.com/sweeney/alarm-clock/internal/input"
)

// Hardware is the simulated peripheral set.
type Hardware struct {
	Joystick *Joystick
	Confirm  *input.Edge
	Cancel   *input.Edge
	Speaker  *Speaker
	Screen   *display.Framebuffer
	Light    *feedback.MemoryLight
}

// NewHardware creates simulated peripherals with a light of n pixels.
func NewHardware(debounce time.Duration, pixels int) *Hardware {
	return &Hardware{
		Joystick: &Joystick{},
		Confirm:  input.NewEdge(debounce),
		Cancel:   input.NewEdge(debounce),
		Speaker:  NewSpeaker(),
		Screen:   display.NewFramebuffer(),
		Light:    feedback.NewMemoryLight(pixels),
	}
}

// resultMsg carries one tick result from the device loop to the UI.
type resultMsg device.Result

// Styles holds lipgloss styles for the UI.
type Styles struct {
	Screen lipgloss.Style
	Title  lipgloss.Style
	Label  lipgloss.Style
	Value  lipgloss.Style
	Alert  lipgloss.Style
	Help   lipgloss.Style
	Unlit  lipgloss.Style
}

func newStyles() Styles {
	return Styles{
		Screen: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Foreground(lipgloss.Color("81")),
		Title: lipgloss.NewStyle().Bold(true),
		Label: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Value: lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		Alert: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		Help:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Unlit: lipgloss.NewStyle().Foreground(lipgloss.Color("236")),
	}
}

// Model is the bubbletea model of the simulator.
type Model struct {
	hw     *Hardware
	styles Styles
	start  time.Time
	last   device.Result
	ticks  int

	quitting bool

	// replaced in tests
	now func() time.Time
}

// NewModel creates a model over hw.
func NewModel(hw *Hardware) Model {
	return Model{
		hw:     hw,
		styles: newStyles(),
		start:  time.Now(),
		now:    time.Now,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case resultMsg:
		m.last = device.Result(msg)
		m.ticks++
		return m, nil
	}
	return m, nil
}

// handleKey maps keys onto the joystick and buttons.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		m.hw.Joystick.Push(input.Up)
	case "down", "j":
		m.hw.Joystick.Push(input.Down)
	case "left", "h":
		m.hw.Joystick.Push(input.Left)
	case "right", "l":
		m.hw.Joystick.Push(input.Right)

	case "enter", " ":
		m.hw.Confirm.Capture(m.now().Sub(m.start))
	case "esc", "backspace", "x":
		m.hw.Cancel.Capture(m.now().Sub(m.start))
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Alarm Clock simulator"))
	b.WriteString("\n")
	b.WriteString(m.styles.Screen.Render(RenderScreen(m.hw.Screen.Snapshot())))
	b.WriteString("\n")
	b.WriteString(m.styles.Label.Render("light "))
	b.WriteString(m.renderLight())
	b.WriteString("\n")

	clk := "--:--:--"
	if m.last.ClockOK {
		clk = m.last.Clock.String()
	}
	b.WriteString(m.styles.Label.Render("clock "))
	b.WriteString(m.styles.Value.Render(clk))
	b.WriteString(m.styles.Label.Render("  screen "))
	b.WriteString(m.styles.Value.Render(m.last.Kind.String()))
	if hz := m.hw.Speaker.Playing(); hz > 0 {
		b.WriteString("  ")
		b.WriteString(m.styles.Alert.Render(fmt.Sprintf("♪ %d Hz", hz)))
	}
	b.WriteString("\n")
	if len(m.last.Events) > 0 {
		b.WriteString(m.styles.Label.Render("event "))
		b.WriteString(m.styles.Value.Render(string(m.last.Events[len(m.last.Events)-1].Type)))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Help.Render("arrows/hjkl move · enter confirm · esc cancel · q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderLight() string {
	var b strings.Builder
	for _, p := range m.hw.Light.Flushed() {
		if p == (feedback.Pixel{}) {
			b.WriteString(m.styles.Unlit.Render("·"))
			continue
		}
		c := lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", p.R, p.G, p.B))
		b.WriteString(lipgloss.NewStyle().Foreground(c).Render("●"))
	}
	return b.String()
}

// RenderScreen draws a framebuffer snapshot two rows per line with
// half-block characters.
func RenderScreen(px [display.Height][display.Width]bool) string {
	var b strings.Builder
	for y := 0; y < display.Height; y += 2 {
		for x := 0; x < display.Width; x++ {
			top, bottom := px[y][x], px[y+1][x]
			switch {
			case top && bottom:
				b.WriteRune('█')
			case top:
				b.WriteRune('▀')
			case bottom:
				b.WriteRune('▄')
			default:
				b.WriteRune(' ')
			}
		}
		if y+2 < display.Height {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Run drives d from a ticker and shows it in the terminal until the user
// quits or ctx is done. handle, if set, also receives every result.
func Run(ctx context.Context, d *device.Device, hw *Hardware, tick time.Duration, handle func(device.Result)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewModel(hw), tea.WithContext(ctx), tea.WithAltScreen())

	var wg sync.WaitGroup
	var loopErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		loopErr = d.Run(ctx, ticker.C, func(r device.Result) {
			if handle != nil {
				handle(r)
			}
			p.Send(resultMsg(r))
		})
	}()

	_, err := p.Run()
	cancel()
	wg.Wait()
	d.Shutdown()

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("simulator: %w", err)
	}
	return loopErr
}
