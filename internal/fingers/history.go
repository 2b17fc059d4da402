package fingers

import "github.com/ayusman/fingercount/internal/detector"

const (
	// HistorySize is the number of recent counts kept per hand slot.
	HistorySize = 5
	// MinHistory is the number of counts needed before smoothing kicks in.
	MinHistory = 3
)

// History is a bounded FIFO of the most recent raw counts for one hand slot.
// The zero value is ready to use. A History must only be fed frames from a
// single stream, in arrival order.
type History struct {
	counts []int
}

// NewHistory returns an empty History.
func NewHistory() *History {
	return &History{counts: make([]int, 0, HistorySize)}
}

// Push appends count, evicting the oldest entry once HistorySize is exceeded.
func (h *History) Push(count int) {
	if len(h.counts) == HistorySize {
		copy(h.counts, h.counts[1:])
		h.counts = h.counts[:HistorySize-1]
	}
	h.counts = append(h.counts, count)
}

// Len returns the number of counts held.
func (h *History) Len() int {
	return len(h.counts)
}

// Counts returns a copy of the held counts, oldest first.
func (h *History) Counts() []int {
	out := make([]int, len(h.counts))
	copy(out, h.counts)
	return out
}

// Reset empties the history.
func (h *History) Reset() {
	h.counts = h.counts[:0]
}

// Mode returns the most frequent count. Ties go to the value met first when
// scanning from the newest entry back to the oldest. An empty history
// yields 0.
func (h *History) Mode() int {
	var freq [NumFingers + 1]int
	for _, c := range h.counts {
		if c >= 0 && c <= int(NumFingers) {
			freq[c]++
		}
	}

	best, bestFreq := 0, 0
	for i := len(h.counts) - 1; i >= 0; i-- {
		c := h.counts[i]
		if c < 0 || c > int(NumFingers) {
			continue
		}
		if freq[c] > bestFreq {
			best, bestFreq = c, freq[c]
		}
	}
	return best
}

// smoothed returns the value to display for the current history.
func (h *History) smoothed(raw int) int {
	if h.Len() < MinHistory {
		return raw
	}
	return h.Mode()
}

// ClassifyWithSmoothing classifies points, records the raw count in h and
// returns the denoised count: the raw count while h holds fewer than
// MinHistory entries, the mode of h afterwards. h is left untouched when
// points are rejected.
func ClassifyWithSmoothing(h *History, points []detector.Point3D) (int, error) {
	_, raw, err := Classify(points)
	if err != nil {
		return 0, err
	}
	h.Push(raw)
	return h.smoothed(raw), nil
}
