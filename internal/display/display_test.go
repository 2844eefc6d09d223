package display

import (
	"bytes"
	"image/png"
	"testing"
)

func litIn(f *Framebuffer, x0, y0, x1, y1 int) int {
	n := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if f.Pixel(x, y) {
				n++
			}
		}
	}
	return n
}

func TestFramebufferDrawText(t *testing.T) {
	f := NewFramebuffer()
	f.DrawText("Alarm", 10, 0)

	if litIn(f, 10, 0, Width, LineHeight) == 0 {
		t.Error("expected lit pixels in the text row")
	}
	if litIn(f, 0, LineHeight, Width, Height) != 0 {
		t.Error("text spilled outside its row")
	}
}

func TestFramebufferTextIsOpaque(t *testing.T) {
	f := NewFramebuffer()
	// Fill the row solid, then draw a space over part of it
	for y := 0; y < LineHeight; y++ {
		f.DrawLine(0, y, Width-1, y)
	}
	before := litIn(f, 0, 0, Width, LineHeight)

	f.DrawText("    ", 0, 0)

	if after := litIn(f, 0, 0, Width, LineHeight); after >= before {
		t.Errorf("drawing text should blank its box: before=%d after=%d", before, after)
	}
}

func TestFramebufferMultiline(t *testing.T) {
	f := NewFramebuffer()
	f.DrawText("Alarm\nset", 0, 20)
	if litIn(f, 0, 20, Width, 30) == 0 || litIn(f, 0, 30, Width, 40) == 0 {
		t.Error("expected two rows of text")
	}
}

func TestFramebufferDrawLine(t *testing.T) {
	f := NewFramebuffer()
	f.DrawLine(0, 40, 120, 40)
	for x := 0; x <= 120; x++ {
		if !f.Pixel(x, 40) {
			t.Fatalf("pixel %d,40 not lit", x)
		}
	}
	if f.Pixel(121, 40) {
		t.Error("line overran its end point")
	}

	f.DrawLine(5, 5, 0, 0)
	if !f.Pixel(0, 0) || !f.Pixel(5, 5) || !f.Pixel(3, 3) {
		t.Error("diagonal line not drawn")
	}
}

func TestFramebufferClear(t *testing.T) {
	f := NewFramebuffer()
	f.DrawLine(0, 0, 10, 0)
	v := f.Version()
	f.Clear()
	if litIn(f, 0, 0, Width, Height) != 0 {
		t.Error("expected blank screen after Clear")
	}
	if f.Version() <= v {
		t.Error("version should advance on Clear")
	}
}

func TestFramebufferClipsOutOfBounds(t *testing.T) {
	f := NewFramebuffer()
	f.DrawLine(-10, -10, 200, 200)
	f.DrawText("clipped", 120, 60)
	if f.Pixel(-1, 0) || f.Pixel(Width, 0) {
		t.Error("out of range pixels must read as off")
	}
}

func TestFramebufferPNG(t *testing.T) {
	f := NewFramebuffer()
	f.DrawLine(0, 0, 0, 0)

	var buf bytes.Buffer
	if err := f.WritePNG(&buf, 2); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != Width*2 || b.Dy() != Height*2 {
		t.Errorf("size: got %dx%d", b.Dx(), b.Dy())
	}
	if r, _, _, _ := img.At(1, 1).RGBA(); r == 0 {
		t.Error("scaled pixel should be lit")
	}
	if r, _, _, _ := img.At(2, 2).RGBA(); r != 0 {
		t.Error("neighbouring pixel should be dark")
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	r.DrawText("A", 0, 0)
	r.DrawText("B", 0, 0)
	r.DrawLine(0, 40, 120, 40)

	if r.TextAt(0, 0) != "B" {
		t.Errorf("TextAt: got %q, want B", r.TextAt(0, 0))
	}
	if r.Draws() != 3 {
		t.Errorf("draws: got %d, want 3", r.Draws())
	}
	r.Clear()
	if r.Visible("B") {
		t.Error("screen should be empty after Clear")
	}
	if r.Clears() != 1 {
		t.Errorf("clears: got %d", r.Clears())
	}
	r.Reset()
	if len(r.Ops) != 0 {
		t.Error("Reset should drop ops")
	}
}
