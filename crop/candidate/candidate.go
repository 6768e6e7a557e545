// Package candidate extracts connected-component bounding rectangles from a
// binary mask and filters them down to plausible text blobs, per spec §4.2
// and §4.3.
package candidate

import (
	"github.com/moonlit-ink/vncrop/crop/binarize"
	"github.com/moonlit-ink/vncrop/crop/geometry"
	"github.com/moonlit-ink/vncrop/crop/mode"
)

// Candidate is one connected-component rectangle surviving the extraction
// filters, enriched with the geometric features later stages need.
type Candidate struct {
	Rect   geometry.Rect
	Aspect float64
	// Contour holds the rectangle's corners in resized-frame space. The
	// pipeline only ever needs the bounding union of candidates, which the
	// corners alone reproduce exactly (per the design note in spec §9, a flat
	// point array rather than a nested per-pixel contour is sufficient).
	Contour [4]geometry.Point
}

func newCandidate(r geometry.Rect) Candidate {
	return Candidate{
		Rect:   r,
		Aspect: r.Aspect(),
		Contour: [4]geometry.Point{
			{X: float64(r.X), Y: float64(r.Y)},
			{X: float64(r.Right()), Y: float64(r.Y)},
			{X: float64(r.Right()), Y: float64(r.Bottom())},
			{X: float64(r.X), Y: float64(r.Bottom())},
		},
	}
}

const minAreaFraction = 1e-4

// scale gate bounds, per spec §4.2.
const (
	vertLow, vertHigh = 0.4, 2.5
	horizLow, horizHigh = 0.7, 2.0
)

// Extract pulls axis-aligned bounding rectangles of connected mask components
// and applies the area/aspect/scale-gate filters from spec §4.2. typicalH is
// the scale tracker's current estimate (height in horizontal mode, width in
// vertical mode); pass <= 0 to skip the scale gate.
func Extract(mask binarize.Mask, targetW, targetH int, typicalH float64, orientation mode.Orientation) []Candidate {
	components := connectedComponents(mask)
	minArea := minAreaFraction * float64(targetW) * float64(targetH)

	var out []Candidate
	for _, r := range components {
		if float64(r.Area()) < minArea {
			continue
		}
		aspect := r.Aspect()

		switch orientation {
		case mode.Horizontal:
			if aspect < 0.5 {
				continue
			}
		case mode.Vertical:
			if aspect > 0.5 || r.W < 5 {
				continue
			}
		}

		if typicalH > 0 {
			m := float64(r.H)
			low, high := horizLow, horizHigh
			if orientation == mode.Vertical {
				m = float64(r.W)
				low, high = vertLow, vertHigh
			}
			if m < typicalH*low || m > typicalH*high {
				continue
			}
		}

		out = append(out, newCandidate(r))
	}
	return out
}

// connectedComponents labels 8-connected runs of set pixels in the mask and
// returns each component's axis-aligned bounding rectangle (the "external
// contour" bounding rect spec §4.2 asks for).
func connectedComponents(mask binarize.Mask) []geometry.Rect {
	visited := make([]bool, mask.W*mask.H)
	var rects []geometry.Rect

	var stack []int
	for y := 0; y < mask.H; y++ {
		for x := 0; x < mask.W; x++ {
			idx := y*mask.W + x
			if visited[idx] || mask.Pix[idx] == 0 {
				continue
			}

			minX, minY, maxX, maxY := x, y, x, y
			visited[idx] = true
			stack = append(stack[:0], idx)

			for len(stack) > 0 {
				cur := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				cx, cy := cur%mask.W, cur/mask.W

				if cx < minX {
					minX = cx
				}
				if cx > maxX {
					maxX = cx
				}
				if cy < minY {
					minY = cy
				}
				if cy > maxY {
					maxY = cy
				}

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						nx, ny := cx+dx, cy+dy
						if nx < 0 || nx >= mask.W || ny < 0 || ny >= mask.H {
							continue
						}
						nIdx := ny*mask.W + nx
						if visited[nIdx] || mask.Pix[nIdx] == 0 {
							continue
						}
						visited[nIdx] = true
						stack = append(stack, nIdx)
					}
				}
			}

			rects = append(rects, geometry.NewRect(minX, minY, maxX-minX+1, maxY-minY+1))
		}
	}
	return rects
}
