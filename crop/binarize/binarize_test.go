package binarize

import (
	"testing"

	"github.com/moonlit-ink/vncrop/crop/imageops"
	"github.com/moonlit-ink/vncrop/crop/mode"
)

func flatHeatmap(w, h int, v float32) imageops.Heatmap {
	scores := make([]float32, w*h)
	for i := range scores {
		scores[i] = v
	}
	return imageops.Heatmap{W: w, H: h, Scores: scores}
}

func TestBinarizeAllBelowThresholdYieldsEmptyMask(t *testing.T) {
	hm := flatHeatmap(20, 20, 0.1)
	mask := Binarize(hm, mode.Horizontal)
	for _, v := range mask.Pix {
		if v != 0 {
			t.Fatalf("expected empty mask below threshold, found a set pixel")
		}
	}
}

func TestBinarizeHorizontalThresholdIsHigherThanVertical(t *testing.T) {
	hm := flatHeatmap(20, 20, 0.25)
	h := Binarize(hm, mode.Horizontal)
	v := Binarize(hm, mode.Vertical)

	hAny, vAny := false, false
	for _, p := range h.Pix {
		if p != 0 {
			hAny = true
		}
	}
	for _, p := range v.Pix {
		if p != 0 {
			vAny = true
		}
	}
	if hAny {
		t.Errorf("0.25 should be below the horizontal threshold (0.3)")
	}
	if !vAny {
		t.Errorf("0.25 should be above the vertical threshold (0.2)")
	}
}

func TestBinarizeDilationBridgesGap(t *testing.T) {
	w, h := 30, 10
	hm := flatHeatmap(w, h, 0)
	// Two isolated hot pixels several columns apart on the same row.
	hm.Scores[5*w+2] = 1.0
	hm.Scores[5*w+8] = 1.0

	mask := Binarize(hm, mode.Horizontal)
	// With a 5-wide kernel dilated 6 times the horizontal reach is 12px to
	// each side, comfortably bridging the 6px spacing of the two source pixels.
	if mask.At(5, 5) == 0 {
		t.Fatalf("expected the gap between the two hot pixels to be bridged")
	}
}
