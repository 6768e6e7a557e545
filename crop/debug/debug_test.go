package debug

import (
	"image/color"
	"testing"

	"github.com/moonlit-ink/vncrop/crop/candidate"
	"github.com/moonlit-ink/vncrop/crop/geometry"
	"github.com/moonlit-ink/vncrop/crop/imageops"
)

func TestOverlayDrawsCandidateOutline(t *testing.T) {
	rf := imageops.ResizedFrame{TargetW: 64, TargetH: 64, Pix: make([]byte, 64*64*3)}
	cands := []candidate.Candidate{{Rect: geometry.NewRect(10, 10, 20, 20)}}

	img := Overlay(rf, cands, nil)
	got := img.At(10, 10)
	r, g, b, _ := got.RGBA()
	want := color.RGBA{R: 0, G: 220, B: 0, A: 255}
	wr, wg, wb, _ := want.RGBA()
	if r != wr || g != wg || b != wb {
		t.Errorf("top-left corner of outline = %v, want green", got)
	}
}

func TestOverlaySelectedOutlineIsRed(t *testing.T) {
	rf := imageops.ResizedFrame{TargetW: 64, TargetH: 64, Pix: make([]byte, 64*64*3)}
	selected := []candidate.Candidate{{Rect: geometry.NewRect(0, 0, 10, 10)}}

	img := Overlay(rf, nil, selected)
	got := img.At(5, 0)
	r, g, b, _ := got.RGBA()
	want := color.RGBA{R: 220, G: 0, B: 0, A: 255}
	wr, wg, wb, _ := want.RGBA()
	if r != wr || g != wg || b != wb {
		t.Errorf("top edge of selected outline = %v, want red", got)
	}
}

func TestOverlayInteriorUntouched(t *testing.T) {
	rf := imageops.ResizedFrame{TargetW: 64, TargetH: 64, Pix: make([]byte, 64*64*3)}
	cands := []candidate.Candidate{{Rect: geometry.NewRect(10, 10, 20, 20)}}

	img := Overlay(rf, cands, nil)
	got := img.At(20, 20)
	r, g, b, _ := got.RGBA()
	if r != 0 || g != 0 || b != 0 {
		t.Errorf("interior pixel should remain the source frame's black, got %v", got)
	}
}
