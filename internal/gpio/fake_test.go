package gpio

import (
	"errors"
	"testing"
	"time"

	"github.com/sweeney/alarm-clock/internal/input"
)

func TestFakeLine(t *testing.T) {
	l := NewFakeLine(1)

	v, err := l.Value()
	if err != nil || v != 1 {
		t.Fatalf("Value: got %d, %v", v, err)
	}
	l.Press()
	if v, _ := l.Value(); v != 0 {
		t.Errorf("after Press: got %d, want 0", v)
	}
	l.Release()
	if v, _ := l.Value(); v != 1 {
		t.Errorf("after Release: got %d, want 1", v)
	}

	l.SetValue(0)
	l.SetValue(1)
	if l.WriteCount() != 2 {
		t.Errorf("writes: got %d, want 2", l.WriteCount())
	}

	if err := l.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if !l.Closed {
		t.Error("expected Closed to be true")
	}
}

func TestFakeLineReadError(t *testing.T) {
	l := NewFakeLine(1)
	l.ReadError = errors.New("line busy")
	if _, err := l.Value(); err == nil {
		t.Error("expected error")
	}
}

func TestJoystickCentred(t *testing.T) {
	j, _, _, _, _ := FakeJoystick()
	x, y, err := j.ReadAxes()
	if err != nil {
		t.Fatalf("ReadAxes: %v", err)
	}
	if x != input.AxisCenter || y != input.AxisCenter {
		t.Errorf("got (%d, %d), want centred", x, y)
	}
}

func TestJoystickDirections(t *testing.T) {
	tests := []struct {
		name  string
		press func(up, down, left, right *FakeLine)
		want  input.Axes
	}{
		{"up", func(u, d, l, r *FakeLine) { u.Press() }, input.Axes{Up: true}},
		{"down", func(u, d, l, r *FakeLine) { d.Press() }, input.Axes{Down: true}},
		{"left", func(u, d, l, r *FakeLine) { l.Press() }, input.Axes{Left: true}},
		{"right", func(u, d, l, r *FakeLine) { r.Press() }, input.Axes{Right: true}},
		{"up and down cancel", func(u, d, l, r *FakeLine) { u.Press(); d.Press() }, input.Axes{}},
		{"diagonal", func(u, d, l, r *FakeLine) { u.Press(); r.Press() }, input.Axes{Up: true, Right: true}},
	}
	for _, tt := range tests {
		j, u, d, l, r := FakeJoystick()
		tt.press(u, d, l, r)
		x, y, err := j.ReadAxes()
		if err != nil {
			t.Fatalf("%s: ReadAxes: %v", tt.name, err)
		}
		if got := input.AxesFromSamples(x, y); got != tt.want {
			t.Errorf("%s: got %+v, want %+v", tt.name, got, tt.want)
		}
	}
}

func TestJoystickReadError(t *testing.T) {
	j, _, down, _, _ := FakeJoystick()
	down.ReadError = errors.New("glitch")
	if _, _, err := j.ReadAxes(); err == nil {
		t.Error("expected error")
	}

	// The input service treats it as no event
	s := input.NewService(j, nil, nil)
	if got := s.Next(); got != input.None {
		t.Errorf("got %s, want NONE", got)
	}
}

type fakeTime struct {
	now time.Time
}

func (f *fakeTime) Now() time.Time        { return f.now }
func (f *fakeTime) Sleep(d time.Duration) { f.now = f.now.Add(d) }

func fakeBuzzer() (*Buzzer, *FakeLine, *fakeTime) {
	line := NewFakeLine(0)
	b := NewBuzzer(line)
	clk := &fakeTime{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	b.now = clk.Now
	b.sleep = clk.Sleep
	return b, line, clk
}

func TestBuzzerSquareWave(t *testing.T) {
	b, line, clk := fakeBuzzer()
	start := clk.now

	b.PlayTone(500, 10) // 1ms half-period

	if got := clk.now.Sub(start); got != 10*time.Millisecond {
		t.Errorf("blocked for %v, want 10ms", got)
	}
	// 10 toggles plus the final low
	if len(line.Writes) != 11 {
		t.Fatalf("writes: got %d, want 11", len(line.Writes))
	}
	for i := 0; i < 10; i++ {
		want := 1 - i%2
		if line.Writes[i] != want {
			t.Errorf("write %d: got %d, want %d", i, line.Writes[i], want)
		}
	}
	if line.Level != 0 {
		t.Error("line must be left low")
	}
}

func TestBuzzerIgnoresInvalidTone(t *testing.T) {
	b, line, _ := fakeBuzzer()
	b.PlayTone(0, 100)
	b.PlayTone(440, 0)
	if line.WriteCount() != 0 {
		t.Errorf("expected no writes, got %d", line.WriteCount())
	}
}

func TestBuzzerStop(t *testing.T) {
	b, line, clk := fakeBuzzer()

	// Stop from inside the waveform after a few toggles
	calls := 0
	b.sleep = func(d time.Duration) {
		clk.Sleep(d)
		calls++
		if calls == 3 {
			b.Stop()
		}
	}
	start := clk.now
	b.PlayTone(500, 1000)

	if got := clk.now.Sub(start); got >= time.Second {
		t.Errorf("Stop did not cut the tone short: %v", got)
	}
	if line.Level != 0 {
		t.Error("line must be low after Stop")
	}

	// A new tone plays normally after a stop
	calls = 100
	b.PlayTone(500, 4)
	if line.Level != 0 || line.WriteCount() < 4 {
		t.Error("tone after Stop should play")
	}
}

func TestDefaultPins(t *testing.T) {
	p := DefaultPins()
	seen := map[int]bool{}
	for _, pin := range []int{p.Confirm, p.Cancel, p.Up, p.Down, p.Left, p.Right, p.Buzzer} {
		if seen[pin] {
			t.Errorf("pin %d assigned twice", pin)
		}
		seen[pin] = true
	}
}
