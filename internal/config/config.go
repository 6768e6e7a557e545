// Package config loads the INI-style settings file, tolerant of UTF-16,
// UTF-8, and UTF-8-with-BOM encodings, and resolves per-profile overrides
// against the global Settings section, per spec §6 and the fallback chain
// in original_source's init_ocr_engine.
package config

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"gopkg.in/ini.v1"

	"github.com/moonlit-ink/vncrop/crop/mode"
	"github.com/moonlit-ink/vncrop/internal/errs"
)

// globalSection is the INI section every profile falls back to.
const globalSection = "Settings"

// Config is the resolved, profile-aware view of the settings file.
type Config struct {
	ActiveProfile   string
	ReadMode        mode.ReadMode
	Lang            string
	JapReadVertical bool
	file            *ini.File
}

// Orientation derives the reading orientation from LANG/JAP_READ_VERTICAL,
// per spec §6: vertical is only honored when LANG=jap.
func (c Config) Orientation() mode.Orientation {
	if c.Lang == "jap" && c.JapReadVertical {
		return mode.Vertical
	}
	return mode.Horizontal
}

// Get reads key from the active profile, falling back to the global Settings
// section, then to def if neither defines it — the same two-level fallback
// original_source's init_ocr_engine uses for every profile key.
func (c Config) Get(key, def string) string {
	if c.file == nil {
		return def
	}
	if c.file.Section(c.ActiveProfile).HasKey(key) {
		return c.file.Section(c.ActiveProfile).Key(key).String()
	}
	if c.file.Section(globalSection).HasKey(key) {
		return c.file.Section(globalSection).Key(key).String()
	}
	return def
}

// Load reads and parses the settings file at path. On any read or parse
// failure it returns a Config holding only defaults alongside a
// errs.ConfigMalformed-wrapped error; callers proceed with the returned
// Config rather than treating this as fatal, per spec §7.
func Load(path string) (Config, error) {
	defaults := Config{ActiveProfile: globalSection, ReadMode: mode.ADV, Lang: "eng"}

	raw, err := decodeToUTF8(path)
	if err != nil {
		return defaults, fmt.Errorf("config: %w: %v", errs.ConfigMalformed, err)
	}

	file, err := ini.Load(raw)
	if err != nil {
		return defaults, fmt.Errorf("config: %w: %v", errs.ConfigMalformed, err)
	}

	activeProfile := file.Section(globalSection).Key("ACTIVE_PROFILE").MustString(globalSection)
	cfg := Config{
		ActiveProfile: activeProfile,
		file:          file,
	}
	cfg.ReadMode = mode.ADV
	if cfg.Get("READ_MODE", "ADV") == "NVL" {
		cfg.ReadMode = mode.NVL
	}
	cfg.Lang = cfg.Get("LANG", "eng")
	cfg.JapReadVertical = cfg.Get("JAP_READ_VERTICAL", "0") == "1"

	return cfg, nil
}

// decodeToUTF8 reads path and normalizes it to UTF-8, trying UTF-16 (with
// BOM detection), UTF-8-with-BOM, and plain UTF-8 in turn — the same order
// original_source's init_ocr_engine tries encodings in.
func decodeToUTF8(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if bytes.HasPrefix(raw, []byte{0xFF, 0xFE}) || bytes.HasPrefix(raw, []byte{0xFE, 0xFF}) {
		decoded, err := transformBytes(raw, unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder())
		if err == nil {
			return decoded, nil
		}
	}

	decoded, err := transformBytes(raw, unicode.UTF8BOM.NewDecoder())
	if err != nil {
		return raw, nil
	}
	return decoded, nil
}

func transformBytes(raw []byte, d transform.Transformer) ([]byte, error) {
	out, _, err := transform.Bytes(d, raw)
	return out, err
}
