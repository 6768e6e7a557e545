package config

import (
	"log/slog"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Watcher observes the settings file for external edits (e.g. a user saving
// settings.ini from a text editor) and reloads on change, in addition to the
// explicit /reload HTTP trigger.
type Watcher struct {
	v      *viper.Viper
	path   string
	logger *slog.Logger
	onLoad func(Config)
}

// NewWatcher wires a viper instance onto path purely for its fsnotify-backed
// file watch; parsing itself still goes through Load so the encoding
// tolerance and profile-fallback logic in this package is the single source
// of truth.
func NewWatcher(path string, logger *slog.Logger, onLoad func(Config)) *Watcher {
	v := viper.New()
	v.SetConfigFile(path)
	return &Watcher{v: v, path: path, logger: logger, onLoad: onLoad}
}

// Start begins watching the settings file and invokes onLoad once
// immediately, then again on every subsequent change.
func (w *Watcher) Start() error {
	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Warn("initial config load failed, using defaults", "error", err)
	}
	w.onLoad(cfg)

	w.v.OnConfigChange(func(e fsnotify.Event) {
		w.logger.Info("settings file changed, reloading", "path", e.Name)
		cfg, err := Load(w.path)
		if err != nil {
			w.logger.Warn("reload failed, keeping previous config", "error", err)
			return
		}
		w.onLoad(cfg)
	})
	w.v.WatchConfig()
	return nil
}
