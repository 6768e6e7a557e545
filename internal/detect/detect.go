// Package detect wraps the CRAFT textness network: an ONNX session,
// re-bound whenever the caller's ResizedFrame dimensions change, that turns
// a ResizedFrame into a per-pixel textness Heatmap, per spec §5 and §6.
package detect

import (
	"fmt"
	"sync"

	"github.com/yalue/onnxruntime_go"

	"github.com/moonlit-ink/vncrop/crop/imageops"
	"github.com/moonlit-ink/vncrop/internal/errs"
)

// mean/scale applied per spec §6: mean-subtracted [123.68, 116.78, 103.94],
// then divided by 255, channel order R, G, B.
var channelMean = [3]float32{123.68, 116.78, 103.94}

// Network owns the ONNX runtime session for the textness model. The session
// is sized to whatever ResizedFrame dimensions it last saw; since
// ResizedFrame varies per capture aspect ratio (spec §3/§4.9), Run rebinds
// the session whenever the request's dimensions differ from the bound ones.
type Network struct {
	mu        sync.Mutex
	modelPath string
	session   *onnxruntime_go.AdvancedSession
	input     *onnxruntime_go.Tensor[float32]
	output    *onnxruntime_go.Tensor[float32]
	boundW    int
	boundH    int
}

// Load initializes the ONNX runtime environment for modelPath. The session
// itself is built lazily, on the first call to Run, sized to that call's
// ResizedFrame. An error here is errs.ModelUnavailable: fatal for the
// request, not the process.
func Load(modelPath string) (*Network, error) {
	if err := onnxruntime_go.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("detect: %w: %v", errs.ModelUnavailable, err)
	}
	return &Network{modelPath: modelPath}, nil
}

// Close releases the ONNX session and its tensors, if any have been bound.
func (n *Network) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.destroyLocked()
}

func (n *Network) destroyLocked() {
	if n.session == nil {
		return
	}
	n.session.Destroy()
	n.input.Destroy()
	n.output.Destroy()
	n.session, n.input, n.output = nil, nil, nil
	n.boundW, n.boundH = 0, 0
}

// Run converts rf to the model's NCHW mean-subtracted input layout, performs
// inference, and extracts channel 0 of the output as the textness Heatmap.
// It rebinds the session first if rf's dimensions differ from the last call's.
func (n *Network) Run(rf imageops.ResizedFrame) (imageops.Heatmap, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.session == nil || n.boundW != rf.TargetW || n.boundH != rf.TargetH {
		if err := n.rebindLocked(rf.TargetW, rf.TargetH); err != nil {
			return imageops.Heatmap{}, err
		}
	}

	fillInput(n.input.GetData(), rf)

	if err := n.session.Run(); err != nil {
		return imageops.Heatmap{}, fmt.Errorf("detect: %w: %v", errs.ModelUnavailable, err)
	}

	return extractHeatmap(n.output.GetData(), rf.TargetW, rf.TargetH), nil
}

// rebindLocked rebuilds the session's tensors and the session itself at the
// given dimensions, discarding whatever was previously bound.
func (n *Network) rebindLocked(w, h int) error {
	n.destroyLocked()

	inputShape := onnxruntime_go.NewShape(1, 3, int64(h), int64(w))
	input, err := onnxruntime_go.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return fmt.Errorf("detect: %w: %v", errs.ModelUnavailable, err)
	}

	outputShape := onnxruntime_go.NewShape(1, 1, int64(h), int64(w))
	output, err := onnxruntime_go.NewEmptyTensor[float32](outputShape)
	if err != nil {
		input.Destroy()
		return fmt.Errorf("detect: %w: %v", errs.ModelUnavailable, err)
	}

	session, err := onnxruntime_go.NewAdvancedSession(n.modelPath,
		[]string{"input"}, []string{"output"},
		[]onnxruntime_go.ArbitraryTensor{input}, []onnxruntime_go.ArbitraryTensor{output}, nil)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return fmt.Errorf("detect: %w: %v", errs.ModelUnavailable, err)
	}

	n.session, n.input, n.output = session, input, output
	n.boundW, n.boundH = w, h
	return nil
}

// fillInput packs rf's BGR pixels into dst as NCHW float32, mean-subtracted
// and scaled per spec §6.
func fillInput(dst []float32, rf imageops.ResizedFrame) {
	w, h := rf.TargetW, rf.TargetH
	plane := w * h
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := (y*w + x) * 3
			b, g, r := float32(rf.Pix[o]), float32(rf.Pix[o+1]), float32(rf.Pix[o+2])
			idx := y*w + x
			dst[idx] = (r - channelMean[0]) / 255
			dst[plane+idx] = (g - channelMean[1]) / 255
			dst[2*plane+idx] = (b - channelMean[2]) / 255
		}
	}
}

// extractHeatmap reads channel 0 of an (1,C,H,W)-shaped output tensor.
func extractHeatmap(data []float32, w, h int) imageops.Heatmap {
	scores := make([]float32, w*h)
	copy(scores, data[:w*h])
	return imageops.Heatmap{W: w, H: h, Scores: scores}
}
