package mqtt

import (
	"encoding/json"
	"fmt"

	"github.com/sweeney/alarm-clock/internal/feedback"
)

// FramePublisher sends a formatted light frame.
type FramePublisher interface {
	PublishLight(payload []byte) error
}

// Light is a feedback.Light that publishes every flushed frame to a
// networked lamp.
type Light struct {
	*feedback.PixelBuffer
	pub FramePublisher
}

// NewLight creates a light of n pixels publishing through pub.
func NewLight(n int, pub FramePublisher) *Light {
	return &Light{PixelBuffer: feedback.NewPixelBuffer(n), pub: pub}
}

// Flush publishes the current frame.
func (l *Light) Flush() error {
	payload, err := FormatLightPayload(l.Brightness(), l.Frame())
	if err != nil {
		return fmt.Errorf("format light payload: %w", err)
	}
	return l.pub.PublishLight(payload)
}

// FormatLightPayload creates the JSON payload for a light frame.
func FormatLightPayload(brightness int, frame []feedback.Pixel) ([]byte, error) {
	pixels := make([][3]uint8, len(frame))
	for i, p := range frame {
		pixels[i] = [3]uint8{p.R, p.G, p.B}
	}
	return json.Marshal(LightPayload{Light: LightFrame{Brightness: brightness, Pixels: pixels}})
}
