// Package binarize converts the detector's textness heatmap into a dilated
// binary mask, per spec §4.1.
package binarize

import (
	"github.com/moonlit-ink/vncrop/crop/imageops"
	"github.com/moonlit-ink/vncrop/crop/mode"
)

// Mask is an 8-bit binary mask the same size as the ResizedFrame it was
// derived from: 0 or 255 per pixel.
type Mask struct {
	W, H int
	Pix  []byte
}

// At returns the mask value at (x, y).
func (m Mask) At(x, y int) byte { return m.Pix[y*m.W+x] }

// set sets the mask value at (x, y), silently ignoring coordinates outside
// the frame bounds.
func (m Mask) set(x, y int, v byte) {
	if x < 0 || x >= m.W || y < 0 || y >= m.H {
		return
	}
	m.Pix[y*m.W+x] = v
}

// kernel describes a rectangular structuring element and an iteration count.
type kernel struct {
	w, h       int
	iterations int
}

const (
	thresholdHorizontal = 0.3
	thresholdVertical   = 0.2
)

var (
	kernelHorizontal = kernel{w: 5, h: 3, iterations: 6}
	kernelVertical   = kernel{w: 1, h: 9, iterations: 8}
)

// Binarize thresholds the heatmap and dilates it with a mode-specific
// rectangular structuring element, per spec §4.1.
func Binarize(h imageops.Heatmap, orientation mode.Orientation) Mask {
	threshold := float32(thresholdHorizontal)
	k := kernelHorizontal
	if orientation == mode.Vertical {
		threshold = thresholdVertical
		k = kernelVertical
	}

	out := Mask{W: h.W, H: h.H, Pix: make([]byte, h.W*h.H)}
	for y := 0; y < h.H; y++ {
		for x := 0; x < h.W; x++ {
			if h.At(x, y) >= threshold {
				out.set(x, y, 255)
			}
		}
	}

	for i := 0; i < k.iterations; i++ {
		out = dilateOnce(out, k.w, k.h)
	}
	return out
}

// dilateOnce performs one pass of binary dilation with a k.w x k.h rectangular
// structuring element centered on each pixel.
func dilateOnce(in Mask, kw, kh int) Mask {
	out := Mask{W: in.W, H: in.H, Pix: make([]byte, in.W*in.H)}
	halfW, halfH := kw/2, kh/2

	for y := 0; y < in.H; y++ {
		for x := 0; x < in.W; x++ {
			hit := false
			for dy := -halfH; dy <= halfH && !hit; dy++ {
				ny := y + dy
				if ny < 0 || ny >= in.H {
					continue
				}
				for dx := -halfW; dx <= halfW; dx++ {
					nx := x + dx
					if nx < 0 || nx >= in.W {
						continue
					}
					if in.At(nx, ny) != 0 {
						hit = true
						break
					}
				}
			}
			if hit {
				out.set(x, y, 255)
			}
		}
	}
	return out
}
