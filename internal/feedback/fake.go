package feedback

import "sync"

// Tone is one recorded PlayTone call.
type Tone struct {
	Hz int
	Ms int
}

// FakeAudio is a test double that records tones instead of sounding them.
type FakeAudio struct {
	mu sync.Mutex

	// Tones records every PlayTone call in order.
	Tones []Tone

	// Stops counts Stop calls.
	Stops int
}

// NewFakeAudio creates a FakeAudio.
func NewFakeAudio() *FakeAudio {
	return &FakeAudio{}
}

// PlayTone records the tone.
func (f *FakeAudio) PlayTone(hz, ms int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Tones = append(f.Tones, Tone{Hz: hz, Ms: ms})
}

// Stop records a stop.
func (f *FakeAudio) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Stops++
}

// Last returns the most recent tone, or a zero Tone.
func (f *FakeAudio) Last() Tone {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Tones) == 0 {
		return Tone{}
	}
	return f.Tones[len(f.Tones)-1]
}

// Reset clears recorded calls.
func (f *FakeAudio) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Tones = nil
	f.Stops = 0
}
