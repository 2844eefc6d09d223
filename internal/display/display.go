// Package display abstracts the 128x64 monochrome screen.
//
// Framebuffer is the real implementation: text is rasterised with tinyfont
// into an in-memory buffer that the web server and simulator read back.
// Recorder is the test double.
package display

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"sync"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// Screen geometry.
const (
	Width      = 128
	Height     = 64
	LineHeight = 10
	baseline   = 8
)

// Display is the screen collaborator.
type Display interface {
	// Clear blanks the whole screen.
	Clear()

	// DrawText draws text with its cell box at (x, y). Text is opaque:
	// it overwrites whatever was in its box. A newline starts a new row.
	DrawText(text string, x, y int)

	// DrawLine draws a one-pixel line between two points.
	DrawLine(x1, y1, x2, y2 int)
}

var (
	on  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	off = color.RGBA{A: 255}
)

// Framebuffer is an in-memory monochrome display.
type Framebuffer struct {
	mu      sync.RWMutex
	pix     [Height][Width]bool
	version uint64
}

// NewFramebuffer creates a blank framebuffer.
func NewFramebuffer() *Framebuffer {
	return &Framebuffer{}
}

// canvas is the unlocked drawing surface handed to tinyfont while the
// framebuffer lock is held.
type canvas struct {
	fb *Framebuffer
}

var _ drivers.Displayer = canvas{}

func (c canvas) Size() (x, y int16) { return Width, Height }

func (c canvas) SetPixel(x, y int16, col color.RGBA) {
	if x < 0 || y < 0 || int(x) >= Width || int(y) >= Height {
		return
	}
	c.fb.pix[y][x] = col.R|col.G|col.B != 0
}

func (c canvas) Display() error { return nil }

// Clear blanks the screen.
func (f *Framebuffer) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pix = [Height][Width]bool{}
	f.version++
}

// DrawText draws opaque text with the top of its cell at y.
func (f *Framebuffer) DrawText(text string, x, y int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := canvas{fb: f}
	for i, line := range strings.Split(text, "\n") {
		top := y + i*LineHeight
		_, w := tinyfont.LineWidth(&proggy.TinySZ8pt7b, line)
		for py := top; py < top+LineHeight; py++ {
			for px := x; px < x+int(w); px++ {
				c.SetPixel(int16(px), int16(py), off)
			}
		}
		tinyfont.WriteLine(c, &proggy.TinySZ8pt7b, int16(x), int16(top+baseline), line, on)
	}
	f.version++
}

// DrawLine draws a line using Bresenham's algorithm.
func (f *Framebuffer) DrawLine(x1, y1, x2, y2 int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := canvas{fb: f}
	dx, dy := abs(x2-x1), -abs(y2-y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx + dy
	for {
		c.SetPixel(int16(x1), int16(y1), on)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x1 += sx
		}
		if e2 <= dx {
			err += dx
			y1 += sy
		}
	}
	f.version++
}

// Size implements drivers.Displayer.
func (f *Framebuffer) Size() (x, y int16) {
	return Width, Height
}

// SetPixel implements drivers.Displayer.
func (f *Framebuffer) SetPixel(x, y int16, c color.RGBA) {
	f.mu.Lock()
	defer f.mu.Unlock()
	canvas{fb: f}.SetPixel(x, y, c)
}

// Display implements drivers.Displayer. The buffer is always current.
func (f *Framebuffer) Display() error {
	return nil
}

// Pixel reports whether the pixel at (x, y) is lit.
func (f *Framebuffer) Pixel(x, y int) bool {
	if x < 0 || y < 0 || x >= Width || y >= Height {
		return false
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.pix[y][x]
}

// Version increases on every drawing operation.
func (f *Framebuffer) Version() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.version
}

// Snapshot returns a copy of the pixel rows.
func (f *Framebuffer) Snapshot() [Height][Width]bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.pix
}

// Image returns the screen as a grey image scaled by factor.
func (f *Framebuffer) Image(factor int) *image.Gray {
	if factor < 1 {
		factor = 1
	}
	snap := f.Snapshot()
	img := image.NewGray(image.Rect(0, 0, Width*factor, Height*factor))
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			if !snap[y][x] {
				continue
			}
			for dy := 0; dy < factor; dy++ {
				for dx := 0; dx < factor; dx++ {
					img.SetGray(x*factor+dx, y*factor+dy, color.Gray{Y: 255})
				}
			}
		}
	}
	return img
}

// WritePNG encodes the screen as PNG.
func (f *Framebuffer) WritePNG(w io.Writer, factor int) error {
	return png.Encode(w, f.Image(factor))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
