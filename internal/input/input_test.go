package input

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestAxesFromSamples(t *testing.T) {
	tests := []struct {
		name string
		x, y int
		want Axes
	}{
		{"centred", AxisCenter, AxisCenter, Axes{}},
		{"left", 0, AxisCenter, Axes{Left: true}},
		{"right", AxisMax, AxisCenter, Axes{Right: true}},
		{"up", AxisCenter, AxisMax, Axes{Up: true}},
		{"down", AxisCenter, 0, Axes{Down: true}},
		{"low threshold is not a direction", ThresholdLow, ThresholdLow, Axes{}},
		{"high threshold is not a direction", ThresholdHigh, ThresholdHigh, Axes{}},
		{"just below low", ThresholdLow - 1, AxisCenter, Axes{Left: true}},
		{"just above high", AxisCenter, ThresholdHigh + 1, Axes{Up: true}},
		{"diagonal", 0, AxisMax, Axes{Left: true, Up: true}},
	}
	for _, tt := range tests {
		if got := AxesFromSamples(tt.x, tt.y); got != tt.want {
			t.Errorf("%s: AxesFromSamples(%d, %d) = %+v, want %+v", tt.name, tt.x, tt.y, got, tt.want)
		}
	}
}

func TestPollAxesReadErrorIsNoEvent(t *testing.T) {
	axes := NewFakeAxes(PushUp)
	axes.ReadError = errors.New("adc glitch")
	s := NewService(axes, NewEdge(DefaultDebounce), NewEdge(DefaultDebounce))

	if got := s.PollAxes(); got != (Axes{}) {
		t.Errorf("expected no direction on read error, got %+v", got)
	}
	if got := s.Next(); got != None {
		t.Errorf("expected None on read error, got %s", got)
	}
}

func TestPollAxesIsLevelTriggered(t *testing.T) {
	axes := NewFakeAxes(PushUp, PushUp, Centered)
	s := NewService(axes, nil, nil)

	if !s.PollAxes().Up {
		t.Error("poll 1: expected Up")
	}
	if !s.PollAxes().Up {
		t.Error("poll 2: expected Up while held")
	}
	if s.PollAxes().Up {
		t.Error("poll 3: expected no direction after release")
	}
}

func TestPollConfirmAtMostOnce(t *testing.T) {
	confirm := NewEdge(DefaultDebounce)
	s := NewService(nil, confirm, NewEdge(DefaultDebounce))

	confirm.Capture(0)
	if !s.PollConfirm() {
		t.Fatal("first poll: expected true")
	}
	if s.PollConfirm() {
		t.Error("second poll without a new press: expected false")
	}
}

func TestPollCancelAtMostOnce(t *testing.T) {
	cancel := NewEdge(DefaultDebounce)
	s := NewService(nil, NewEdge(DefaultDebounce), cancel)

	cancel.Capture(time.Second)
	if !s.PollCancel() {
		t.Fatal("first poll: expected true")
	}
	if s.PollCancel() {
		t.Error("second poll without a new press: expected false")
	}
}

func TestEdgeDebounceCollapses(t *testing.T) {
	e := NewEdge(DefaultDebounce)

	if !e.Capture(0) {
		t.Fatal("first edge should register")
	}
	if e.Capture(50 * time.Millisecond) {
		t.Error("edge 50ms later should be dropped")
	}

	delivered := 0
	for i := 0; i < 3; i++ {
		if e.Take() {
			delivered++
		}
	}
	if delivered != 1 {
		t.Errorf("expected 1 delivered edge, got %d", delivered)
	}

	captured, dropped := e.Stats()
	if captured != 1 || dropped != 1 {
		t.Errorf("stats: got captured=%d dropped=%d, want 1/1", captured, dropped)
	}
}

func TestEdgeDebounceSeparatePresses(t *testing.T) {
	e := NewEdge(DefaultDebounce)
	delivered := 0

	e.Capture(0)
	if e.Take() {
		delivered++
	}
	e.Capture(300 * time.Millisecond)
	if e.Take() {
		delivered++
	}

	if delivered != 2 {
		t.Errorf("expected 2 delivered edges, got %d", delivered)
	}
}

func TestEdgeDebounceExactInterval(t *testing.T) {
	e := NewEdge(DefaultDebounce)
	e.Capture(0)
	e.Take()

	if e.Capture(249 * time.Millisecond) {
		t.Error("should drop at 249ms")
	}
	if !e.Capture(250 * time.Millisecond) {
		t.Error("should register at exactly 250ms")
	}
}

func TestEdgeDebounceMeasuredFromRegisteredEdge(t *testing.T) {
	e := NewEdge(DefaultDebounce)
	e.Capture(0)
	// Dropped bounces do not extend the window
	e.Capture(100 * time.Millisecond)
	e.Capture(200 * time.Millisecond)
	if !e.Capture(260 * time.Millisecond) {
		t.Error("edge 260ms after the registered edge should register")
	}
}

func TestEdgeNoQueueing(t *testing.T) {
	e := NewEdge(DefaultDebounce)

	// Two registered presses before the consumer reads
	e.Capture(0)
	e.Capture(time.Second)

	if !e.Take() {
		t.Fatal("expected pending edge")
	}
	if e.Take() {
		t.Error("presses must not be queued")
	}
}

func TestEdgeConcurrentProducer(t *testing.T) {
	e := NewEdge(DefaultDebounce)
	const presses = 200

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < presses; i++ {
			e.Capture(time.Duration(i) * time.Second)
		}
	}()

	taken := 0
	for i := 0; i < 10000; i++ {
		if e.Take() {
			taken++
		}
	}
	wg.Wait()
	if e.Take() {
		taken++
	}

	if taken < 1 || taken > presses {
		t.Errorf("taken %d edges, want between 1 and %d", taken, presses)
	}
	captured, _ := e.Stats()
	if captured != presses {
		t.Errorf("captured: got %d, want %d", captured, presses)
	}
}

func TestNextPriority(t *testing.T) {
	confirm := NewEdge(DefaultDebounce)
	cancel := NewEdge(DefaultDebounce)
	axes := NewFakeAxes(PushUp, PushUp, PushUp)
	s := NewService(axes, confirm, cancel)

	confirm.Capture(0)
	cancel.Capture(0)

	if got := s.Next(); got != Cancel {
		t.Errorf("tick 1: got %s, want CANCEL", got)
	}
	if got := s.Next(); got != Confirm {
		t.Errorf("tick 2: got %s, want CONFIRM (left pending)", got)
	}
	if got := s.Next(); got != Up {
		t.Errorf("tick 3: got %s, want UP", got)
	}
}

func TestNextDirections(t *testing.T) {
	axes := NewFakeAxes(PushUp, PushDown, PushLeft, PushRight, Centered)
	s := NewService(axes, nil, nil)

	want := []Event{Up, Down, Left, Right, None, None}
	for i, w := range want {
		if got := s.Next(); got != w {
			t.Errorf("tick %d: got %s, want %s", i, got, w)
		}
	}
}

func TestNilAxes(t *testing.T) {
	s := NewService(nil, nil, nil)
	if got := s.Next(); got != None {
		t.Errorf("got %s, want NONE", got)
	}
}

func TestEventString(t *testing.T) {
	tests := map[Event]string{
		None: "NONE", Up: "UP", Down: "DOWN", Left: "LEFT",
		Right: "RIGHT", Confirm: "CONFIRM", Cancel: "CANCEL",
	}
	for e, want := range tests {
		if got := e.String(); got != want {
			t.Errorf("Event(%d).String() = %q, want %q", int(e), got, want)
		}
	}
}
