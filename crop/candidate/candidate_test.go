package candidate

import (
	"testing"

	"github.com/moonlit-ink/vncrop/crop/binarize"
	"github.com/moonlit-ink/vncrop/crop/geometry"
	"github.com/moonlit-ink/vncrop/crop/mode"
)

func rectMask(w, h int, rects ...geometry.Rect) binarize.Mask {
	m := binarize.Mask{W: w, H: h, Pix: make([]byte, w*h)}
	for _, r := range rects {
		for y := r.Y; y < r.Bottom(); y++ {
			for x := r.X; x < r.Right(); x++ {
				m.Pix[y*w+x] = 255
			}
		}
	}
	return m
}

func TestExtractFindsWideBlobInHorizontalMode(t *testing.T) {
	mask := rectMask(1920, 1080, geometry.NewRect(600, 900, 720, 60))
	cands := Extract(mask, 1920, 1080, -1, mode.Horizontal)
	if len(cands) != 1 {
		t.Fatalf("got %d candidates, want 1", len(cands))
	}
	if cands[0].Rect != geometry.NewRect(600, 900, 720, 60) {
		t.Errorf("rect = %+v, want (600,900,720,60)", cands[0].Rect)
	}
}

func TestExtractRejectsNarrowBlobInHorizontalMode(t *testing.T) {
	// aspect = 20/60 < 0.5, should be rejected in horizontal mode.
	mask := rectMask(960, 960, geometry.NewRect(600, 900, 20, 60))
	cands := Extract(mask, 960, 960, -1, mode.Horizontal)
	if len(cands) != 0 {
		t.Fatalf("got %d candidates, want 0", len(cands))
	}
}

func TestExtractRejectsThreadThinBlobInVerticalMode(t *testing.T) {
	mask := rectMask(960, 960, geometry.NewRect(1800, 100, 4, 500))
	cands := Extract(mask, 960, 960, -1, mode.Vertical)
	if len(cands) != 0 {
		t.Fatalf("thin fragment should be rejected by width < 5 rule, got %d", len(cands))
	}
}

func TestExtractAcceptsTallColumnInVerticalMode(t *testing.T) {
	mask := rectMask(960, 960, geometry.NewRect(1800, 100, 36, 500))
	cands := Extract(mask, 960, 960, -1, mode.Vertical)
	if len(cands) != 1 {
		t.Fatalf("got %d candidates, want 1", len(cands))
	}
}

func TestExtractScaleGateRejectsOversizedBlob(t *testing.T) {
	// typicalH = 40, horizontal HIGH = 2.0 -> anything taller than 80 rejected.
	mask := rectMask(960, 960, geometry.NewRect(0, 0, 200, 200))
	cands := Extract(mask, 960, 960, 40, mode.Horizontal)
	if len(cands) != 0 {
		t.Fatalf("oversized blob should be scale-gated out, got %d", len(cands))
	}
}

func TestExtractRejectsTinyArea(t *testing.T) {
	mask := rectMask(960, 960, geometry.NewRect(0, 0, 2, 2))
	cands := Extract(mask, 960, 960, -1, mode.Horizontal)
	if len(cands) != 0 {
		t.Fatalf("tiny-area blob should be rejected, got %d", len(cands))
	}
}

func TestSuppressSingletonDropsFarNoise(t *testing.T) {
	cands := []Candidate{newCandidate(geometry.NewRect(1500, 40, 80, 40))}
	got, ok := SuppressSingleton(cands, 40, geometry.Point{X: 300, Y: 40}, mode.Horizontal)
	if ok {
		t.Fatalf("expected suppression, got ok=true with %v", got)
	}
}

func TestSuppressSingletonKeepsNearStart(t *testing.T) {
	cands := []Candidate{newCandidate(geometry.NewRect(310, 40, 80, 40))}
	got, ok := SuppressSingleton(cands, 40, geometry.Point{X: 300, Y: 40}, mode.Horizontal)
	if !ok || len(got) != 1 {
		t.Fatalf("expected candidate kept as near-start, got ok=%v len=%d", ok, len(got))
	}
}

func TestSuppressSingletonPassesThroughMultipleCandidates(t *testing.T) {
	cands := []Candidate{
		newCandidate(geometry.NewRect(0, 0, 10, 10)),
		newCandidate(geometry.NewRect(100, 100, 10, 10)),
	}
	got, ok := SuppressSingleton(cands, 40, geometry.Point{}, mode.Horizontal)
	if !ok || len(got) != 2 {
		t.Fatalf("multi-candidate input should pass through unchanged")
	}
}

func TestSuppressSingletonVerticalDropsFarFromAnchor(t *testing.T) {
	cands := []Candidate{newCandidate(geometry.NewRect(1800, 900, 36, 40))}
	got, ok := SuppressSingleton(cands, 40, geometry.Point{X: 1800, Y: 0}, mode.Vertical)
	if ok {
		t.Fatalf("expected vertical suppression, got %v", got)
	}
}
