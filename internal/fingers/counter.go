package fingers

import (
	"fmt"

	"github.com/ayusman/fingercount/internal/detector"
)

// HandCount is the classification of one hand in one frame.
type HandCount struct {
	Slot       int    `json:"slot"`
	Handedness string `json:"handedness"`
	States     States `json:"fingers"`
	Raw        int    `json:"raw"`
	Smoothed   int    `json:"count"`
}

// Frame is the classification of every hand detected in one frame.
type Frame struct {
	Hands []HandCount `json:"hands"`
	Total int         `json:"total"`
}

// CountHands classifies each hand of a still image. Smoothed equals Raw for
// every hand. No hands yields an empty Frame.
func CountHands(hands []detector.HandLandmarks) (Frame, error) {
	frame := Frame{Hands: make([]HandCount, 0, len(hands))}
	for i, h := range hands {
		states, n, err := Classify(h.Points)
		if err != nil {
			return Frame{}, fmt.Errorf("hand %d: %w", i, err)
		}
		frame.Hands = append(frame.Hands, HandCount{
			Slot:       i,
			Handedness: h.Handedness,
			States:     states,
			Raw:        n,
			Smoothed:   n,
		})
		frame.Total += n
	}
	return frame, nil
}

// Counter smooths counts over one video stream. Hand slots are positions in
// the detector output; slot i of one frame feeds the same History as slot i
// of the next. A Counter is not safe for concurrent use.
type Counter struct {
	slots []*History
}

// NewCounter returns a Counter with no history.
func NewCounter() *Counter {
	return &Counter{}
}

// Count classifies the hands of the next frame in the stream. All hands are
// validated before any history is touched, so a rejected frame leaves the
// Counter unchanged. Slots with no hand in this frame are reset.
func (c *Counter) Count(hands []detector.HandLandmarks) (Frame, error) {
	frame, err := CountHands(hands)
	if err != nil {
		return Frame{}, err
	}

	for len(c.slots) < len(hands) {
		c.slots = append(c.slots, NewHistory())
	}
	for i := len(hands); i < len(c.slots); i++ {
		c.slots[i].Reset()
	}

	frame.Total = 0
	for i := range frame.Hands {
		hc := &frame.Hands[i]
		h := c.slots[i]
		h.Push(hc.Raw)
		hc.Smoothed = h.smoothed(hc.Raw)
		frame.Total += hc.Smoothed
	}

	return frame, nil
}

// Slot returns the history of slot i, or nil if the slot was never used.
func (c *Counter) Slot(i int) *History {
	if i < 0 || i >= len(c.slots) {
		return nil
	}
	return c.slots[i]
}

// Reset clears every slot history.
func (c *Counter) Reset() {
	for _, h := range c.slots {
		h.Reset()
	}
}
