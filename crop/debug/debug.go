// Package debug renders the candidate/selection overlay used by the desktop
// study overlay to visualize why the smart crop chose what it chose: every
// raw candidate outlined in green, the final selected region outlined in red.
package debug

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/moonlit-ink/vncrop/crop/candidate"
	"github.com/moonlit-ink/vncrop/crop/geometry"
	"github.com/moonlit-ink/vncrop/crop/imageops"
)

var (
	candidateColor = color.RGBA{R: 0, G: 220, B: 0, A: 255}
	selectedColor  = color.RGBA{R: 220, G: 0, B: 0, A: 255}
)

// Overlay draws rf's BGR pixels into an RGBA image, outlines every raw
// candidate in green, and outlines selected in red. rf and the candidate
// rectangles must share the same ResizedFrame coordinate space.
func Overlay(rf imageops.ResizedFrame, raw []candidate.Candidate, selected []candidate.Candidate) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, rf.TargetW, rf.TargetH))
	for y := 0; y < rf.TargetH; y++ {
		for x := 0; x < rf.TargetW; x++ {
			o := (y*rf.TargetW + x) * 3
			b, g, r := rf.Pix[o], rf.Pix[o+1], rf.Pix[o+2]
			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}

	for _, c := range raw {
		outlineRect(img, c.Rect, candidateColor)
	}
	for _, c := range selected {
		outlineRect(img, c.Rect, selectedColor)
	}
	return img
}

// outlineRect draws a 1px rectangle border, clamped to the image bounds.
func outlineRect(img draw.Image, r geometry.Rect, c color.Color) {
	bounds := img.Bounds()
	x0, y0 := max(bounds.Min.X, r.X), max(bounds.Min.Y, r.Y)
	x1, y1 := min(bounds.Max.X-1, r.Right()-1), min(bounds.Max.Y-1, r.Bottom()-1)
	if x1 < x0 || y1 < y0 {
		return
	}
	for x := x0; x <= x1; x++ {
		img.Set(x, y0, c)
		img.Set(x, y1, c)
	}
	for y := y0; y <= y1; y++ {
		img.Set(x0, y, c)
		img.Set(x1, y, c)
	}
}
