package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonlit-ink/vncrop/crop/mode"
	"github.com/moonlit-ink/vncrop/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandleHealthReportsOnline(t *testing.T) {
	s := New(config.Config{}, nil, nil, testLogger())
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	s.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "online", body["status"])
}

func TestHandleDetectWithoutBackendReportsFatal(t *testing.T) {
	s := New(config.Config{}, nil, nil, testLogger())
	req := httptest.NewRequest(http.MethodPost, "/detect", strings.NewReader(`{"w":960,"h":640}`))
	rec := httptest.NewRecorder()

	s.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleDetectRejectsMalformedBody(t *testing.T) {
	s := New(config.Config{}, nil, nil, testLogger())
	req := httptest.NewRequest(http.MethodPost, "/detect", strings.NewReader(`not json`))
	rec := httptest.NewRecorder()

	s.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleReloadAppliesOrientationChange(t *testing.T) {
	s := New(config.Config{JapReadVertical: false}, nil, nil, testLogger())
	s.state.SetProfile("seed")

	path := writeSettings(t, "[Settings]\nACTIVE_PROFILE=p\nLANG=jap\nJAP_READ_VERTICAL=1\n[p]\n")

	req := httptest.NewRequest(http.MethodGet, "/reload?path="+path, nil)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, mode.Vertical, s.cfg.Orientation())
}

func writeSettings(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := dir + "/settings.ini"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}
