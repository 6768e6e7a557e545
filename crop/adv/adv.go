// Package adv implements the ADV-mode group scorer and chain merger, per
// spec §4.6 and §4.7: pick the single highest-scoring group, then absorb
// adjacent groups belonging to the same dialogue surface until a pass adds
// nothing.
package adv

import (
	"math"

	"github.com/moonlit-ink/vncrop/crop/candidate"
	"github.com/moonlit-ink/vncrop/crop/geometry"
	"github.com/moonlit-ink/vncrop/crop/group"
	"github.com/moonlit-ink/vncrop/crop/imageops"
	"github.com/moonlit-ink/vncrop/crop/mode"
)

// Select scores every group per spec §4.6 and returns the winner's index,
// breaking ties by first occurrence in iteration order. Select reports
// ok=false when groups is empty.
func Select(groups []group.Group, rf imageops.ResizedFrame, anchor geometry.Point, anchorValid bool, orientation mode.Orientation) (winner int, ok bool) {
	if len(groups) == 0 {
		return 0, false
	}
	best := -1
	bestScore := math.Inf(-1)
	for i, g := range groups {
		s := score(g, rf, anchor, anchorValid, orientation)
		if s > bestScore {
			bestScore = s
			best = i
		}
	}
	return best, true
}

// score implements spec §4.6's scoring formula:
// score(G) = n² · metric_dim · avg_ar · center_bias · darkness · pos_weight.
func score(g group.Group, rf imageops.ResizedFrame, anchor geometry.Point, anchorValid bool, orientation mode.Orientation) float64 {
	n := float64(len(g.Members))

	var metricDim, arSum, centerXSum float64
	for _, c := range g.Members {
		centerXSum += c.Rect.Center().X
		if orientation == mode.Horizontal {
			metricDim += float64(c.Rect.W)
			arSum += c.Aspect
		} else {
			metricDim += float64(c.Rect.H)
			if c.Aspect != 0 {
				arSum += 1 / c.Aspect
			}
		}
	}
	avgAR := arSum / n
	meanCenterX := centerXSum / n

	bounds := g.Bounds()
	luminance := imageops.MeanLuminance(rf, bounds)
	darkness := 1 - luminance/255

	halfW := float64(rf.TargetW) / 2
	centerBias := 1 - math.Abs(meanCenterX-halfW)/halfW

	posWeight := 1.0
	if anchorValid {
		d := geometry.Distance(geometry.Point{X: float64(bounds.X), Y: float64(bounds.Y)}, anchor)
		posWeight = 1 + 5*math.Exp(-d/100)
	}

	return n * n * metricDim * avgAR * centerBias * darkness * posWeight
}

// Merge implements spec §4.7's chain merger: starting from the group at
// seedIndex, iteratively absorb any remaining group whose combined bounding
// rectangle overlaps and sits close enough to the current merged rectangle,
// until a full pass absorbs nothing. It returns the union of all absorbed
// groups' members, in no particular order (callers reorder per §4.9).
func Merge(groups []group.Group, seedIndex int, typicalH float64, targetW, targetH int, orientation mode.Orientation) []candidate.Candidate {
	absorbed := make([]bool, len(groups))
	absorbed[seedIndex] = true
	merged := groups[seedIndex].Bounds()

	for {
		progressed := false
		for i, g := range groups {
			if absorbed[i] {
				continue
			}
			if chains(merged, g.Bounds(), typicalH, targetW, targetH, orientation) {
				absorbed[i] = true
				merged = merged.Union(g.Bounds())
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}

	var out []candidate.Candidate
	for i, g := range groups {
		if absorbed[i] {
			out = append(out, g.Members...)
		}
	}
	return out
}

// chains reports whether candidate bounds b should be absorbed into the
// current merged rectangle merged, per spec §4.7's overlap+proximity test.
func chains(merged, b geometry.Rect, typicalH float64, targetW, targetH int, orientation mode.Orientation) bool {
	if orientation == mode.Horizontal {
		overlap := float64(geometry.OverlapX(merged, b))
		minWidth := float64(min(merged.W, b.W))
		gap := float64(geometry.GapY(merged, b))
		maxGap := 6 * typicalH
		if typicalH <= 0 {
			maxGap = 0.05 * float64(targetH)
		}
		return overlap > 0.15*minWidth && gap < maxGap
	}

	overlap := float64(geometry.OverlapY(merged, b))
	minHeight := float64(min(merged.H, b.H))
	gap := float64(geometry.GapX(merged, b))
	maxGap := 6 * typicalH
	if typicalH <= 0 {
		maxGap = 0.05 * float64(targetW)
	}
	return overlap > 0.15*minHeight && gap < maxGap
}
