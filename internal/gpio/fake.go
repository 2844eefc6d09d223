package gpio

import "sync"

// FakeLine is a test double for a GPIO line.
type FakeLine struct {
	mu sync.Mutex

	// Level is returned by Value() and updated by SetValue().
	Level int

	// Writes records every SetValue call.
	Writes []int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Value()
	ReadError error

	// CloseError, if set, will be returned by Close()
	CloseError error
}

// NewFakeLine creates a FakeLine at the given level.
func NewFakeLine(level int) *FakeLine {
	return &FakeLine{Level: level}
}

// Value returns the current level.
func (f *FakeLine) Value() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	return f.Level, nil
}

// SetValue records the write and updates the level.
func (f *FakeLine) SetValue(v int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Writes = append(f.Writes, v)
	f.Level = v
	return nil
}

// Close marks the line as closed.
func (f *FakeLine) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return f.CloseError
}

// Press drives an active-low input to its pressed level.
func (f *FakeLine) Press() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Level = 0
}

// Release drives an active-low input to its idle level.
func (f *FakeLine) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Level = 1
}

// WriteCount returns the number of SetValue calls.
func (f *FakeLine) WriteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Writes)
}

// FakeJoystick returns a joystick on four released fake lines.
func FakeJoystick() (*Joystick, *FakeLine, *FakeLine, *FakeLine, *FakeLine) {
	up, down, left, right := NewFakeLine(1), NewFakeLine(1), NewFakeLine(1), NewFakeLine(1)
	return NewJoystick(up, down, left, right), up, down, left, right
}
