package input

import "errors"

// FakeAxes is a test double that returns scripted joystick samples.
type FakeAxes struct {
	// Samples contains scripted samples to return.
	// Each call to ReadAxes() consumes the next sample.
	Samples []Sample

	// index tracks current position in Samples
	index int

	// ReadError, if set, will be returned by ReadAxes()
	ReadError error
}

// Sample is one pair of raw axis values.
type Sample struct {
	X int
	Y int
}

// Centered is the sample of a joystick at rest.
var Centered = Sample{X: AxisCenter, Y: AxisCenter}

// Direction samples for scripting.
var (
	PushUp    = Sample{X: AxisCenter, Y: AxisMax}
	PushDown  = Sample{X: AxisCenter, Y: 0}
	PushLeft  = Sample{X: 0, Y: AxisCenter}
	PushRight = Sample{X: AxisMax, Y: AxisCenter}
)

// NewFakeAxes creates a FakeAxes with the given samples.
func NewFakeAxes(samples ...Sample) *FakeAxes {
	return &FakeAxes{Samples: samples}
}

// ReadAxes returns the next scripted sample.
// Once samples are exhausted the joystick reads as centred.
func (f *FakeAxes) ReadAxes() (int, int, error) {
	if f.ReadError != nil {
		return 0, 0, f.ReadError
	}
	if f.Samples == nil {
		return 0, 0, errors.New("no samples configured")
	}
	if f.index >= len(f.Samples) {
		return Centered.X, Centered.Y, nil
	}
	s := f.Samples[f.index]
	f.index++
	return s.X, s.Y, nil
}

// Push appends samples to the script.
func (f *FakeAxes) Push(samples ...Sample) {
	if f.Samples == nil {
		f.Samples = []Sample{}
	}
	f.Samples = append(f.Samples, samples...)
}
