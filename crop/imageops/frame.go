// Package imageops converts the raw BGRA screen capture into the resized BGR
// working frame the detector and scorer operate on. It is the
// only package in crop/... that touches golang.org/x/image.
package imageops

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/moonlit-ink/vncrop/crop/geometry"
)

// MaxDim is the longest edge a ResizedFrame is allowed to have.
const MaxDim = 960

// frameAlignment is the multiple-of-32 requirement the CRAFT ONNX model imposes.
const frameAlignment = 32

// Frame is the raw BGRA screen bitmap read from shared memory.
type Frame struct {
	Width, Height int
	// Pix holds Width*Height*4 bytes in B,G,R,A order.
	Pix []byte
}

// ResizedFrame is a Frame rescaled so max(w,h) <= MaxDim and both dimensions
// are multiples of 32, per the data model in spec §3.
type ResizedFrame struct {
	TargetW, TargetH int
	ScaleX, ScaleY   float64
	// Pix holds TargetW*TargetH*3 bytes in B,G,R order.
	Pix []byte
}

// Heatmap is the detector's per-pixel textness score grid, one float per
// ResizedFrame pixel, in [0,1].
type Heatmap struct {
	W, H   int
	Scores []float32
}

// At returns the textness score at (x, y).
func (h Heatmap) At(x, y int) float32 {
	return h.Scores[y*h.W+x]
}

// Resize converts a raw BGRA Frame into a ResizedFrame, computing the target
// dimensions per spec §3/§4.9: if either edge exceeds MaxDim, scale down so
// the longest edge is MaxDim (smaller frames are not scaled up), then round
// both dimensions up to the next multiple of 32.
func Resize(f Frame) (ResizedFrame, error) {
	if f.Width <= 0 || f.Height <= 0 {
		return ResizedFrame{}, fmt.Errorf("imageops: invalid frame dimensions %dx%d", f.Width, f.Height)
	}
	if len(f.Pix) < f.Width*f.Height*4 {
		return ResizedFrame{}, fmt.Errorf("imageops: short pixel buffer: got %d bytes, want %d", len(f.Pix), f.Width*f.Height*4)
	}

	tw, th := f.Width, f.Height
	if tw > MaxDim || th > MaxDim {
		if tw > th {
			th = int(float64(th) * (float64(MaxDim) / float64(tw)))
			tw = MaxDim
		} else {
			tw = int(float64(tw) * (float64(MaxDim) / float64(th)))
			th = MaxDim
		}
	}
	tw = roundUpToMultiple(tw, frameAlignment)
	th = roundUpToMultiple(th, frameAlignment)

	src := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			i := (y*f.Width + x) * 4
			b, g, r, a := f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3]
			src.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: b, A: a})
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	pix := make([]byte, tw*th*3)
	for y := 0; y < th; y++ {
		for x := 0; x < tw; x++ {
			r, g, b, _ := dst.At(x, y).RGBA()
			o := (y*tw + x) * 3
			pix[o] = byte(b >> 8)
			pix[o+1] = byte(g >> 8)
			pix[o+2] = byte(r >> 8)
		}
	}

	return ResizedFrame{
		TargetW: tw,
		TargetH: th,
		ScaleX:  float64(f.Width) / float64(tw),
		ScaleY:  float64(f.Height) / float64(th),
		Pix:     pix,
	}, nil
}

func roundUpToMultiple(v, m int) int {
	return ((v + m - 1) / m) * m
}

// MeanLuminance returns the mean grayscale luminance (0-255) of the BGR pixels
// inside r, clamped to the frame bounds. Used by crop/adv for the darkness
// scoring term (spec §4.6): text is typically dark over a dialogue box panel.
func MeanLuminance(rf ResizedFrame, r geometry.Rect) float64 {
	x0, y0 := max(0, r.X), max(0, r.Y)
	x1, y1 := min(rf.TargetW, r.Right()), min(rf.TargetH, r.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return 0
	}
	var sum float64
	var n int
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			o := (y*rf.TargetW + x) * 3
			b, g, rr := float64(rf.Pix[o]), float64(rf.Pix[o+1]), float64(rf.Pix[o+2])
			// BT.601 luma weights, matching the BGR2GRAY conversion the
			// original service relies on for its darkness term.
			sum += 0.114*b + 0.587*g + 0.299*rr
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
