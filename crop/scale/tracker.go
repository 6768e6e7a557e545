// Package scale implements the bounded streaming median used to learn the
// running "typical character size" of the current title, per spec §3 and
// §4.10. Tracker is not safe for concurrent use by itself — the caller (crop.State)
// serializes access per spec §5.
package scale

import "sort"

// MaxHistory is the FIFO cap on accepted scale samples.
const MaxHistory = 10

// Tracker holds the scale-learning state: a bounded FIFO of accepted values
// and their running median.
type Tracker struct {
	history []float64
}

// NewTracker returns an empty Tracker, with TypicalH() reporting -1 per the
// ScaleTracker invariant in spec §3.
func NewTracker() *Tracker {
	return &Tracker{}
}

// TypicalH returns the median of the accepted history, or -1 if history is empty.
func (t *Tracker) TypicalH() float64 {
	if len(t.history) == 0 {
		return -1
	}
	sorted := append([]float64(nil), t.history...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// History returns a copy of the accepted sample history, oldest first.
func (t *Tracker) History() []float64 {
	return append([]float64(nil), t.history...)
}

// Commit appends val to the history, evicting the oldest sample once the
// history exceeds MaxHistory, per spec §4.10 and §8 invariant 2.
func (t *Tracker) Commit(val float64) {
	t.history = append(t.history, val)
	if len(t.history) > MaxHistory {
		t.history = t.history[len(t.history)-MaxHistory:]
	}
}

// PendingValue computes the candidate scale sample for this frame's selection,
// per spec §4.10. mean is the mean of the primary metric (width in vertical
// mode, height in horizontal mode) over the selected set; targetMetric is
// target_w (vertical) or target_h (horizontal); tall asserts the vertical
// mode's additional Σh >= 2·Σw requirement (callers pass true unconditionally
// in horizontal mode). ok is false when learning should be skipped this frame.
func PendingValue(mean, targetMetric float64, tall bool) (val float64, ok bool) {
	if !tall {
		return 0, false
	}
	low, high := 0.01*targetMetric, 0.2*targetMetric
	if mean <= low || mean >= high {
		return 0, false
	}
	return mean, true
}
