package feedback

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/sweeney/alarm-clock/internal/logic"
)

// Pixel is one RGB light element.
type Pixel struct {
	R, G, B uint8
}

// PixelBuffer holds a strip of pixels and a brightness level. Implementations
// of Light embed it and decide what Flush does.
type PixelBuffer struct {
	mu     sync.RWMutex
	pixels []Pixel
	level  int
}

// NewPixelBuffer creates a blank buffer of n pixels at the default brightness.
func NewPixelBuffer(n int) *PixelBuffer {
	return &PixelBuffer{pixels: make([]Pixel, n), level: logic.DefaultBrightness}
}

// SetPixel sets pixel i. Out-of-range indices are ignored.
func (b *PixelBuffer) SetPixel(i int, r, g, bl uint8) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i < 0 || i >= len(b.pixels) {
		return
	}
	b.pixels[i] = Pixel{R: r, G: g, B: bl}
}

// SetBrightness sets the output level, clamped to 1–10.
func (b *PixelBuffer) SetBrightness(level int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.level = logic.ClampBrightness(level)
}

// Brightness returns the current level.
func (b *PixelBuffer) Brightness() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.level
}

// Len returns the number of pixels.
func (b *PixelBuffer) Len() int {
	return len(b.pixels)
}

// Frame returns the pixels scaled by brightness, as they would be emitted.
func (b *PixelBuffer) Frame() []Pixel {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Pixel, len(b.pixels))
	for i, p := range b.pixels {
		out[i] = Pixel{
			R: scale(p.R, b.level),
			G: scale(p.G, b.level),
			B: scale(p.B, b.level),
		}
	}
	return out
}

// Lit reports whether any pixel of the emitted frame is on.
func (b *PixelBuffer) Lit() bool {
	for _, p := range b.Frame() {
		if p != (Pixel{}) {
			return true
		}
	}
	return false
}

func scale(c uint8, level int) uint8 {
	return uint8(int(c) * level / logic.MaxBrightness)
}

// MemoryLight keeps the last flushed frame in memory.
// Used by the simulator and the web status page.
type MemoryLight struct {
	*PixelBuffer

	mu      sync.RWMutex
	flushed []Pixel
	flushes int
}

// NewMemoryLight creates a MemoryLight with n pixels.
func NewMemoryLight(n int) *MemoryLight {
	return &MemoryLight{PixelBuffer: NewPixelBuffer(n), flushed: make([]Pixel, n)}
}

// Flush latches the current frame.
func (m *MemoryLight) Flush() error {
	frame := m.Frame()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushed = frame
	m.flushes++
	return nil
}

// Flushed returns the last latched frame.
func (m *MemoryLight) Flushed() []Pixel {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Pixel(nil), m.flushed...)
}

// Flushes returns the number of Flush calls.
func (m *MemoryLight) Flushes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.flushes
}

// LogLight logs each flushed frame. Used when no light is fitted.
type LogLight struct {
	*PixelBuffer
}

// NewLogLight creates a LogLight with n pixels.
func NewLogLight(n int) *LogLight {
	return &LogLight{PixelBuffer: NewPixelBuffer(n)}
}

// Flush logs whether the strip is lit.
func (l *LogLight) Flush() error {
	log.Debug().Str("component", "light").
		Bool("lit", l.Lit()).
		Int("brightness", l.Brightness()).
		Msg("frame")
	return nil
}
