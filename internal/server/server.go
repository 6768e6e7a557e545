// Package server implements the HTTP surface the core satisfies but doesn't
// own: /health, /reload, /detect, /ocr, plus /metrics and a websocket push
// for the desktop overlay, per spec §6.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/moonlit-ink/vncrop/crop"
	"github.com/moonlit-ink/vncrop/crop/imageops"
	"github.com/moonlit-ink/vncrop/internal/config"
	"github.com/moonlit-ink/vncrop/internal/detect"
	"github.com/moonlit-ink/vncrop/internal/errs"
	"github.com/moonlit-ink/vncrop/internal/shm"
)

var (
	detectRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vncrop_detect_requests_total",
		Help: "Total /detect requests by outcome.",
	}, []string{"outcome"})

	ocrRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vncrop_ocr_requests_total",
		Help: "Total /ocr requests by outcome.",
	}, []string{"outcome"})

	detectionLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vncrop_detection_seconds",
		Help:    "Wall-clock time spent in the pipeline behind /detect and /ocr.",
		Buckets: prometheus.DefBuckets,
	})

	typicalHGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vncrop_typical_h",
		Help: "Current ScaleTracker median typical text-line height, in ResizedFrame pixels.",
	})
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Server wires the crop.State, the shared-memory region, the textness
// network, and the live config together behind net/http handlers.
type Server struct {
	mu      sync.RWMutex
	cfg     config.Config
	state   *crop.State
	region  *shm.Region
	network *detect.Network
	logger  *slog.Logger

	overlayMu sync.Mutex
	overlay   map[*websocket.Conn]struct{}
}

// New constructs a Server. region and network may be nil in tests that only
// exercise /health and /reload.
func New(cfg config.Config, region *shm.Region, network *detect.Network, logger *slog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		state:   crop.NewState(),
		region:  region,
		network: network,
		logger:  logger,
		overlay: make(map[*websocket.Conn]struct{}),
	}
}

// Routes returns the http.Handler exposing every endpoint spec §6 names.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/reload", s.handleReload)
	mux.HandleFunc("/detect", s.handleDetect)
	mux.HandleFunc("/ocr", s.handleOCR)
	mux.HandleFunc("/overlay", s.handleOverlayWS)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "online"})
}

// handleReload re-reads the settings file named by the "path" query
// parameter (settings.ini when absent) and applies it through ApplyConfig.
// A file that fails to load applies the loader's defaults.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		path = "settings.ini"
	}

	next, err := config.Load(path)
	if err != nil {
		s.logger.Warn("reload: config malformed, applying defaults", "error", err)
	}
	s.ApplyConfig(next)

	w.WriteHeader(http.StatusOK)
}

// ApplyConfig swaps in next, resetting the anchor when the profile's LANG,
// JAP_READ_VERTICAL or READ_MODE actually changed, per spec §3. It is the
// shared landing point for both the HTTP /reload trigger and the file watcher.
func (s *Server) ApplyConfig(next config.Config) {
	s.mu.Lock()
	prev := s.cfg
	s.cfg = next
	s.mu.Unlock()

	if prev.Lang != next.Lang || prev.JapReadVertical != next.JapReadVertical || prev.ReadMode != next.ReadMode {
		s.state.ResetAnchor()
	}
}

type detectRequestBody struct {
	W int `json:"w"`
	H int `json:"h"`
}

// handleDetect runs spec §4.1-§4.9 without committing scale learning,
// responding "count,area,typical_h" per spec §6.
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var body detectRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	res, err := s.runPipeline(r.Context(), body.W, body.H)
	if err != nil {
		s.respondPipelineError(w, err, detectRequests)
		return
	}

	area := 0
	for _, b := range res.Boxes {
		area += b.W * b.H
	}
	detectRequests.WithLabelValues("ok").Inc()
	fmt.Fprintf(w, "%d,%d,%.2f", len(res.Boxes), area, s.state.TypicalH())
}

// handleOCR runs spec §4.1-§4.11, invokes the recognizer (a caller-supplied
// black box outside this package's scope), and commits §4.10 if the
// recognized text is long enough.
func (s *Server) handleOCR(w http.ResponseWriter, r *http.Request) {
	var body detectRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	res, err := s.runPipeline(r.Context(), body.W, body.H)
	if err != nil {
		s.respondPipelineError(w, err, ocrRequests)
		return
	}
	if len(res.Boxes) == 0 {
		ocrRequests.WithLabelValues("empty").Inc()
		fmt.Fprint(w, "0,0,0,0|")
		return
	}

	// The recognizer call and the overlay push are independent of each
	// other: neither needs the other's result, only res's boxes. Fan them
	// out per spec §5's worker-pool model instead of running them back to
	// back.
	eg, _ := errgroup.WithContext(r.Context())
	var text string
	eg.Go(func() error {
		text = recognize(res)
		return nil
	})
	eg.Go(func() error {
		s.PushOverlay(res.Boxes)
		return nil
	})
	eg.Wait()

	s.state.Commit(res.PendingScale, res.HasPending, len(text))

	b := res.Boxes[0]
	ocrRequests.WithLabelValues("ok").Inc()
	fmt.Fprintf(w, "%d,%d,%d,%d|%s", b.X, b.Y, b.W, b.H, text)
}

// recognize is a placeholder for the black-box OCR recognizer named in
// spec §1's non-goals; it is not this package's responsibility to implement.
func recognize(res crop.Result) string { return "" }

func (s *Server) respondPipelineError(w http.ResponseWriter, err error, counter *prometheus.CounterVec) {
	switch {
	case errors.Is(err, errs.TransientInput):
		counter.WithLabelValues("empty").Inc()
		fmt.Fprint(w, "0,0,0")
	case errors.Is(err, errs.ModelUnavailable):
		counter.WithLabelValues("fatal").Inc()
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		counter.WithLabelValues("error").Inc()
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// runPipeline reads the next frame and runs it through inference and the
// core detector. Each stage depends on the previous stage's output, so
// there's no independent work here to fan out onto a worker pool; the
// errgroup-based fan-out spec §5 describes lives in handleOCR, where the
// downstream recognizer call and the overlay push are genuinely independent
// of each other.
func (s *Server) runPipeline(ctx context.Context, w, h int) (crop.Result, error) {
	if s.region == nil || s.network == nil {
		return crop.Result{}, errs.ModelUnavailable
	}
	start := time.Now()
	defer func() { detectionLatency.Observe(time.Since(start).Seconds()) }()

	raw, err := s.region.ReadFrame(w * h * 4)
	if err != nil {
		return crop.Result{}, err
	}

	rf, err := imageops.Resize(imageops.Frame{Width: w, Height: h, Pix: raw})
	if err != nil {
		return crop.Result{}, fmt.Errorf("server: %w: %v", errs.TransientInput, err)
	}

	heat, err := s.network.Run(rf)
	if err != nil {
		return crop.Result{}, err
	}

	s.mu.RLock()
	cfg := s.cfg
	s.mu.RUnlock()

	res := s.state.Detect(rf, heat, cfg.Orientation(), cfg.ReadMode)
	typicalHGauge.Set(s.state.TypicalH())
	return res, nil
}

func (s *Server) handleOverlayWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("overlay websocket upgrade failed", "error", err)
		return
	}
	s.overlayMu.Lock()
	s.overlay[conn] = struct{}{}
	s.overlayMu.Unlock()
}

// PushOverlay broadcasts boxes to every connected overlay client.
func (s *Server) PushOverlay(boxes []crop.OutputBox) {
	payload, err := json.Marshal(boxes)
	if err != nil {
		return
	}
	s.overlayMu.Lock()
	defer s.overlayMu.Unlock()
	for conn := range s.overlay {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			delete(s.overlay, conn)
		}
	}
}
