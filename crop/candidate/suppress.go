package candidate

import (
	"math"

	"github.com/moonlit-ink/vncrop/crop/geometry"
	"github.com/moonlit-ink/vncrop/crop/mode"
)

// SuppressSingleton applies the single-candidate noise filter from spec §4.3.
// It only has an effect when exactly one candidate survived extraction and
// typicalH > 0; it returns (cands, true) unchanged otherwise, or (nil, false)
// when the lone candidate is judged to be noise and must be dropped.
//
// anchor follows the AnchorPos data-model convention: (-1,-1) before any
// dialogue has ever been accepted, and again after crop.State.ResetAnchor.
// That sentinel is not special-cased here: it is compared like any other
// position, so until a dialogue is accepted a lone short candidate is kept
// only when it lies close enough to the frame's top-left corner.
func SuppressSingleton(cands []Candidate, typicalH float64, anchor geometry.Point, orientation mode.Orientation) ([]Candidate, bool) {
	if len(cands) != 1 || typicalH <= 0 {
		return cands, true
	}
	c := cands[0]

	switch orientation {
	case mode.Horizontal:
		nearStart := math.Abs(float64(c.Rect.X)-anchor.X) <= 3*typicalH
		if float64(c.Rect.W) < 5*typicalH && !nearStart {
			return nil, false
		}
	case mode.Vertical:
		if math.Abs(float64(c.Rect.Y)-anchor.Y) > 10*typicalH {
			return nil, false
		}
	}
	return cands, true
}
