// Package geometry provides the axis-aligned rectangle and point types shared
// by every stage of the smart-crop pipeline, plus the small set of bounding-box
// operations (union, outset, scale-mapping) the pipeline needs.
package geometry

import "math"

// Rect is an axis-aligned integer rectangle in some pixel coordinate space
// (ResizedFrame space unless otherwise noted). It mirrors the left/top/width/
// height shape candidates arrive in from contour extraction.
type Rect struct {
	X, Y, W, H int
}

// NewRect builds a Rect from its top-left corner and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.X + r.W }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Y + r.H }

// Area returns the rectangle's area.
func (r Rect) Area() int { return r.W * r.H }

// IsEmpty reports whether the rectangle has non-positive width or height.
func (r Rect) IsEmpty() bool { return r.W <= 0 || r.H <= 0 }

// Center returns the rectangle's geometric center.
func (r Rect) Center() Point {
	return Point{X: float64(r.X) + float64(r.W)/2, Y: float64(r.Y) + float64(r.H)/2}
}

// Aspect returns width/height, or 0 if height is 0.
func (r Rect) Aspect() float64 {
	if r.H == 0 {
		return 0
	}
	return float64(r.W) / float64(r.H)
}

// Union returns the smallest rectangle containing both r and other. Unioning
// with an empty rectangle returns the other operand unchanged.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}
	left := min(r.X, other.X)
	top := min(r.Y, other.Y)
	right := max(r.Right(), other.Right())
	bottom := max(r.Bottom(), other.Bottom())
	return Rect{X: left, Y: top, W: right - left, H: bottom - top}
}

// UnionAll folds Union over a non-empty slice of rectangles.
func UnionAll(rects []Rect) Rect {
	var out Rect
	for _, r := range rects {
		out = out.Union(r)
	}
	return out
}

// Outset grows the rectangle by dx on each side horizontally and dy vertically.
// Negative values shrink it.
func (r Rect) Outset(dx, dy int) Rect {
	return Rect{X: r.X - dx, Y: r.Y - dy, W: r.W + 2*dx, H: r.H + 2*dy}
}

// ScaleTo maps the rectangle from resized-frame space back to the original
// frame's pixel space using the per-axis scale factors computed at resize time.
func (r Rect) ScaleTo(scaleX, scaleY float64) Rect {
	x := int(float64(r.X) * scaleX)
	y := int(float64(r.Y) * scaleY)
	w := int(float64(r.W) * scaleX)
	h := int(float64(r.H) * scaleY)
	return Rect{X: x, Y: y, W: w, H: h}
}

// OverlapY returns the length of vertical overlap between two rectangles (0 if none).
func OverlapY(a, b Rect) int {
	o := min(a.Bottom(), b.Bottom()) - max(a.Y, b.Y)
	return max(0, o)
}

// OverlapX returns the length of horizontal overlap between two rectangles (0 if none).
func OverlapX(a, b Rect) int {
	o := min(a.Right(), b.Right()) - max(a.X, b.X)
	return max(0, o)
}

// GapX returns the horizontal gap between two rectangles: zero when they
// overlap or touch, positive when separated.
func GapX(a, b Rect) int {
	return max(0, max(a.X-b.Right(), b.X-a.Right()))
}

// GapY returns the vertical gap between two rectangles, analogous to GapX.
func GapY(a, b Rect) int {
	return max(0, max(a.Y-b.Bottom(), b.Y-a.Bottom()))
}

// Point is a 2-D point in resized-frame pixel space, used for candidate
// centers and contour vertices.
type Point struct {
	X, Y float64
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}
