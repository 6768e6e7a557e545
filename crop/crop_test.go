package crop

import (
	"testing"

	"github.com/moonlit-ink/vncrop/crop/geometry"
	"github.com/moonlit-ink/vncrop/crop/imageops"
	"github.com/moonlit-ink/vncrop/crop/mode"
)

func filledHeatmap(w, h int, rects ...geometry.Rect) imageops.Heatmap {
	scores := make([]float32, w*h)
	for _, r := range rects {
		for y := r.Y; y < r.Bottom(); y++ {
			for x := r.X; x < r.Right(); x++ {
				scores[y*w+x] = 1.0
			}
		}
	}
	return imageops.Heatmap{W: w, H: h, Scores: scores}
}

func identityFrame(w, h int) imageops.ResizedFrame {
	return imageops.ResizedFrame{TargetW: w, TargetH: h, ScaleX: 1, ScaleY: 1, Pix: make([]byte, w*h*3)}
}

// S1: single centered dialogue line, horizontal ADV.
func TestDetectSingleDialogueLine(t *testing.T) {
	s := NewState()
	rf := identityFrame(1920, 1080)
	heat := filledHeatmap(1920, 1080, geometry.NewRect(600, 900, 720, 60))

	res := s.Detect(rf, heat, mode.Horizontal, mode.ADV)
	if len(res.Boxes) != 1 {
		t.Fatalf("expected 1 box, got %d", len(res.Boxes))
	}
	if !res.HasPending {
		t.Fatal("expected a pending scale sample")
	}

	s.Commit(res.PendingScale, res.HasPending, 12)
	if got := s.TypicalH(); got <= 0 {
		t.Errorf("TypicalH() after commit = %v, want > 0", got)
	}
}

// S2: nametag stacked over dialogue should group and merge into one selection.
func TestDetectStackedNametagMerges(t *testing.T) {
	s := NewState()
	rf := identityFrame(1920, 1080)
	heat := filledHeatmap(1920, 1080,
		geometry.NewRect(640, 860, 200, 40),
		geometry.NewRect(640, 910, 900, 60),
	)

	res := s.Detect(rf, heat, mode.Horizontal, mode.ADV)
	if len(res.Boxes) != 2 {
		t.Fatalf("expected both nametag and dialogue boxes in the merged selection, got %d", len(res.Boxes))
	}
}

// S4: noise singleton far from the running anchor should be suppressed, with
// no state perturbation.
func TestDetectFarSingletonSuppressedWithoutStateChange(t *testing.T) {
	s := NewState()
	rf := identityFrame(1920, 1080)

	seedHeat := filledHeatmap(1920, 1080, geometry.NewRect(300, 40, 80, 40))
	seed := s.Detect(rf, seedHeat, mode.Horizontal, mode.ADV)
	if len(seed.Boxes) != 1 {
		t.Fatalf("seed call: expected 1 box, got %d", len(seed.Boxes))
	}
	s.Commit(seed.PendingScale, seed.HasPending, 12)
	typicalBefore := s.TypicalH()
	if typicalBefore <= 0 {
		t.Fatal("expected typical_h to be learned from the seed call")
	}

	noiseHeat := filledHeatmap(1920, 1080, geometry.NewRect(1500, 40, 80, 40))
	noise := s.Detect(rf, noiseHeat, mode.Horizontal, mode.ADV)
	if len(noise.Boxes) != 0 {
		t.Fatalf("expected the far singleton to be suppressed, got %d boxes", len(noise.Boxes))
	}
	if got := s.TypicalH(); got != typicalBefore {
		t.Errorf("TypicalH() changed after a suppressed detection: %v -> %v", typicalBefore, got)
	}
}

// S5: two tall columns with a thin furigana-like fragment; the fragment is
// filtered at the candidate stage and the columns return right-to-left.
func TestDetectVerticalColumnsOrderRightToLeft(t *testing.T) {
	s := NewState()
	rf := identityFrame(1920, 1080)
	heat := filledHeatmap(1920, 1080,
		geometry.NewRect(1800, 100, 36, 500),
		geometry.NewRect(1700, 100, 36, 500),
		geometry.NewRect(1650, 300, 4, 100),
	)

	res := s.Detect(rf, heat, mode.Vertical, mode.ADV)
	if len(res.Boxes) == 0 {
		t.Fatal("expected at least one column")
	}
	for i := 1; i < len(res.Boxes); i++ {
		centerPrev := float64(res.Boxes[i-1].X) + float64(res.Boxes[i-1].W)/2
		centerCur := float64(res.Boxes[i].X) + float64(res.Boxes[i].W)/2
		if centerCur > centerPrev {
			t.Errorf("boxes not in x-descending order at index %d", i)
		}
	}
}

// S6: learning gate — a pending value is produced but short recognized text
// must not update the scale tracker.
func TestCommitSkipsShortRecognizedText(t *testing.T) {
	s := NewState()
	rf := identityFrame(1920, 1080)
	heat := filledHeatmap(1920, 1080, geometry.NewRect(600, 900, 720, 60))

	res := s.Detect(rf, heat, mode.Horizontal, mode.ADV)
	if !res.HasPending {
		t.Fatal("expected a pending scale sample")
	}

	s.Commit(res.PendingScale, res.HasPending, 3)
	if got := s.TypicalH(); got != -1 {
		t.Errorf("TypicalH() after short-text commit = %v, want -1 (unchanged)", got)
	}
}

func TestDetectEmptyHeatmapYieldsEmptyResult(t *testing.T) {
	s := NewState()
	rf := identityFrame(960, 960)
	heat := filledHeatmap(960, 960)

	res := s.Detect(rf, heat, mode.Horizontal, mode.ADV)
	if len(res.Boxes) != 0 {
		t.Fatalf("expected no boxes for a blank heatmap, got %d", len(res.Boxes))
	}
	if got := s.TypicalH(); got != -1 {
		t.Errorf("blank detection should not perturb state, TypicalH() = %v", got)
	}
}

func TestDetectNVLOrdersParagraphsTopToBottom(t *testing.T) {
	s := NewState()
	rf := identityFrame(1920, 1080)
	heat := filledHeatmap(1920, 1080,
		geometry.NewRect(100, 600, 200, 40),
		geometry.NewRect(100, 100, 200, 40),
	)

	res := s.Detect(rf, heat, mode.Horizontal, mode.NVL)
	if len(res.Boxes) != 2 {
		t.Fatalf("expected 2 boxes from 2 paragraphs, got %d", len(res.Boxes))
	}
	if res.Boxes[0].Y > res.Boxes[1].Y {
		t.Errorf("horizontal-mode ordering should be y ascending, got %+v then %+v", res.Boxes[0], res.Boxes[1])
	}
}
