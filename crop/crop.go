// Package crop is the smart-crop text-region extractor: given a raw screen
// bitmap it decides which rectangles belong to the current dialogue (ADV) or
// the screen's paragraphs (NVL), learning the running title's character scale
// as it goes. It is the sole orchestrator that imports the crop/... pipeline
// stages; no subpackage imports crop, so there is no cycle.
package crop

import (
	"sort"
	"sync"

	"github.com/moonlit-ink/vncrop/crop/adv"
	"github.com/moonlit-ink/vncrop/crop/binarize"
	"github.com/moonlit-ink/vncrop/crop/candidate"
	"github.com/moonlit-ink/vncrop/crop/geometry"
	"github.com/moonlit-ink/vncrop/crop/group"
	"github.com/moonlit-ink/vncrop/crop/imageops"
	"github.com/moonlit-ink/vncrop/crop/mode"
	"github.com/moonlit-ink/vncrop/crop/nvl"
	"github.com/moonlit-ink/vncrop/crop/scale"
)

// OutputBox is a final rectangle mapped back to the original frame's pixel
// space, per spec §3/§4.11.
type OutputBox struct {
	X, Y, W, H int
}

// Result is what Detect returns: the selected boxes, the region-of-
// interest bounding them, and a scale sample pending commit via §4.10.
type Result struct {
	Boxes        []OutputBox
	ROI          OutputBox
	PendingScale float64
	HasPending   bool
}

// State holds the process-wide mutable state described in spec §3 and §5:
// the scale tracker, the last accepted dialogue anchor, and the active
// profile. Mutations are serialized with a mutex; readers may observe any
// committed state.
type State struct {
	mu          sync.Mutex
	tracker     *scale.Tracker
	anchor      geometry.Point
	anchorValid bool
	profile     string
}

// NewState returns a State with an empty scale history and an invalid
// anchor at (-1,-1), per the ScaleTracker/AnchorPos lifecycle in spec §3.
func NewState() *State {
	return &State{tracker: scale.NewTracker(), anchor: geometry.Point{X: -1, Y: -1}}
}

// TypicalH returns the current running typical character size, or -1 if no
// samples have been committed yet.
func (s *State) TypicalH() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.TypicalH()
}

// ResetAnchor invalidates AnchorPos, per spec §3: "reset when OCR profile
// language/mode changes". Callers invoke this when LANG, JAP_READ_VERTICAL,
// or READ_MODE changes for the active profile.
func (s *State) ResetAnchor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anchorValid = false
	s.anchor = geometry.Point{X: -1, Y: -1}
}

// SetProfile records the active profile name, used only for diagnostics; it
// does not itself reset the anchor (callers must call ResetAnchor when the
// profile's mode/language actually differs from the previous one).
func (s *State) SetProfile(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = name
}

func (s *State) readAnchor() (geometry.Point, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.anchor, s.anchorValid
}

func (s *State) commitAnchor(p geometry.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anchor = p
	s.anchorValid = true
}

func (s *State) commitScale(val float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracker.Commit(val)
}

// Detect is the stateful entry point: it runs the full pipeline (spec
// §4.1–§4.9) against rf/heat and returns the selected boxes, without
// committing §4.10's scale learning (Commit does that separately once OCR
// confirms the region).
func (s *State) Detect(rf imageops.ResizedFrame, heat imageops.Heatmap, orientation mode.Orientation, readMode mode.ReadMode) Result {
	typicalH := s.TypicalH()
	anchor, anchorValid := s.readAnchor()

	mask := binarize.Binarize(heat, orientation)
	cands := candidate.Extract(mask, rf.TargetW, rf.TargetH, typicalH, orientation)
	if len(cands) == 0 {
		return Result{}
	}

	if len(cands) == 1 && typicalH > 0 {
		var ok bool
		cands, ok = candidate.SuppressSingleton(cands, typicalH, anchor, orientation)
		if !ok {
			return Result{}
		}
	}

	groups := group.Candidates(cands, orientation)
	if len(groups) == 0 {
		return Result{}
	}

	var selected []candidate.Candidate
	switch readMode {
	case mode.ADV:
		winner, ok := adv.Select(groups, rf, anchor, anchorValid, orientation)
		if !ok {
			return Result{}
		}
		selected = adv.Merge(groups, winner, typicalH, rf.TargetW, rf.TargetH, orientation)
		if len(selected) == 0 {
			return Result{}
		}
	case mode.NVL:
		paragraphs := nvl.Cluster(cands)
		for _, p := range paragraphs {
			selected = append(selected, p.Members...)
		}
	}

	selected = postFilter(selected, typicalH, orientation)
	if len(selected) == 0 {
		return Result{}
	}

	bounds := boundsOf(selected)
	ordered := order(selected, orientation)

	pendingVal, hasPending := pendingScale(ordered, rf, orientation)

	boxes := make([]OutputBox, len(ordered))
	for i, c := range ordered {
		boxes[i] = mapToOriginal(c.Rect, rf)
	}
	roi := mapToOriginal(bounds, rf)

	s.commitAnchor(geometry.Point{X: float64(bounds.X), Y: float64(bounds.Y)})

	return Result{Boxes: boxes, ROI: roi, PendingScale: pendingVal, HasPending: hasPending}
}

// Commit implements spec §4.10's deferred learning: only when the
// recognizer's text is long enough does pendingVal join the scale history.
func (s *State) Commit(pendingVal float64, hasPending bool, recognizedTextLen int) {
	if !hasPending || recognizedTextLen < 5 {
		return
	}
	s.commitScale(pendingVal)
}

// postFilter implements spec §4.9 step 1: drop members whose primary metric
// falls below half the typical size, once a typical size is known.
func postFilter(selected []candidate.Candidate, typicalH float64, orientation mode.Orientation) []candidate.Candidate {
	if typicalH <= 0 {
		return selected
	}
	var out []candidate.Candidate
	for _, c := range selected {
		m := float64(c.Rect.H)
		if orientation == mode.Vertical {
			m = float64(c.Rect.W)
		}
		if m >= 0.5*typicalH {
			out = append(out, c)
		}
	}
	return out
}

func boundsOf(cands []candidate.Candidate) geometry.Rect {
	rects := make([]geometry.Rect, len(cands))
	for i, c := range cands {
		rects[i] = c.Rect
	}
	return geometry.UnionAll(rects)
}

// order implements spec §4.9 step 3: vertical mode sorts by x_center
// descending; horizontal mode sorts by (y ascending, x_center ascending).
func order(cands []candidate.Candidate, orientation mode.Orientation) []candidate.Candidate {
	out := append([]candidate.Candidate(nil), cands...)
	if orientation == mode.Vertical {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Rect.Center().X > out[j].Rect.Center().X
		})
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rect.Y != out[j].Rect.Y {
			return out[i].Rect.Y < out[j].Rect.Y
		}
		return out[i].Rect.Center().X < out[j].Rect.Center().X
	})
	return out
}

// pendingScale implements the selection half of spec §4.10.
func pendingScale(selected []candidate.Candidate, rf imageops.ResizedFrame, orientation mode.Orientation) (val float64, ok bool) {
	if len(selected) == 0 {
		return 0, false
	}
	var sumPrimary, sumW, sumH float64
	for _, c := range selected {
		sumW += float64(c.Rect.W)
		sumH += float64(c.Rect.H)
		if orientation == mode.Vertical {
			sumPrimary += float64(c.Rect.W)
		} else {
			sumPrimary += float64(c.Rect.H)
		}
	}
	mean := sumPrimary / float64(len(selected))

	tall := true
	targetMetric := float64(rf.TargetH)
	if orientation == mode.Vertical {
		targetMetric = float64(rf.TargetW)
		tall = sumH >= 2*sumW
	}
	return scale.PendingValue(mean, targetMetric, tall)
}

// mapToOriginal implements spec §4.11: scale a ResizedFrame-space rectangle
// back to the original Frame's pixel coordinates.
func mapToOriginal(r geometry.Rect, rf imageops.ResizedFrame) OutputBox {
	scaled := r.ScaleTo(rf.ScaleX, rf.ScaleY)
	return OutputBox{X: scaled.X, Y: scaled.Y, W: scaled.W, H: scaled.H}
}
