package display

import (
	"fmt"
	"strings"
	"sync"
)

// Op is one recorded drawing call.
type Op struct {
	Kind string // "clear", "text" or "line"
	Text string
	X, Y   int
	X2, Y2 int
}

func (o Op) String() string {
	switch o.Kind {
	case "text":
		return fmt.Sprintf("text(%q @%d,%d)", o.Text, o.X, o.Y)
	case "line":
		return fmt.Sprintf("line(%d,%d-%d,%d)", o.X, o.Y, o.X2, o.Y2)
	default:
		return o.Kind
	}
}

type cell struct{ x, y int }

// Recorder is a test double that records drawing calls and keeps the text
// currently visible at each position.
type Recorder struct {
	mu     sync.Mutex
	Ops    []Op
	screen map[cell]string
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{screen: map[cell]string{}}
}

func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Ops = append(r.Ops, Op{Kind: "clear"})
	r.screen = map[cell]string{}
}

func (r *Recorder) DrawText(text string, x, y int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Ops = append(r.Ops, Op{Kind: "text", Text: text, X: x, Y: y})
	r.screen[cell{x, y}] = text
}

func (r *Recorder) DrawLine(x1, y1, x2, y2 int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Ops = append(r.Ops, Op{Kind: "line", X: x1, Y: y1, X2: x2, Y2: y2})
}

// Clears returns the number of Clear calls.
func (r *Recorder) Clears() int {
	return r.count("clear")
}

// Draws returns the number of text and line calls.
func (r *Recorder) Draws() int {
	return r.count("text") + r.count("line")
}

func (r *Recorder) count(kind string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, op := range r.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// TextAt returns the text last drawn at (x, y) since the last Clear.
func (r *Recorder) TextAt(x, y int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.screen[cell{x, y}]
}

// Visible reports whether any text on screen contains s.
func (r *Recorder) Visible(s string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.screen {
		if strings.Contains(t, s) {
			return true
		}
	}
	return false
}

// Reset forgets recorded calls but keeps the screen.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Ops = nil
}
