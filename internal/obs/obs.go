// Package obs builds the process-wide structured logger. No example repo in
// the retrieval pack imports a logging library as a standalone concern, so
// this is the stdlib answer: log/slog with a JSON handler.
package obs

import (
	"log/slog"
	"os"
)

// New returns a JSON slog.Logger writing to w at the given level. Pass
// os.Stdout and slog.LevelInfo for production defaults.
func New(w *os.File, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// ParseLevel maps a log-level name (the --log-level flag's value) to a
// slog.Level, defaulting to Info for anything unrecognized.
func ParseLevel(s string) slog.Level {
	switch s {
	case "debug", "DEBUG":
		return slog.LevelDebug
	case "warn", "WARN", "warning", "WARNING":
		return slog.LevelWarn
	case "error", "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
