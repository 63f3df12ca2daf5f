package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
)

// LegacyFileName is the TOML config written by earlier pwin releases. It is
// read when no Lua config exists; saving always writes FileName.
const LegacyFileName = ".pwin.toml"

// legacyConfig mirrors the TOML file. Both keys are optional.
type legacyConfig struct {
	Path         *string       `toml:"path"`
	ThreadSafety *ThreadSafety `toml:"thread_safety"`
}

// loadLegacy reads a legacy TOML config. ok is false when the file does not exist.
func loadLegacy(path string) (cfg *Config, ok bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read legacy config file: %w", err)
	}

	var raw legacyConfig
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, false, fmt.Errorf("parse legacy config file %s: %w", path, err)
	}

	cfg = DefaultConfig()
	if raw.Path != nil {
		cfg.Path = *raw.Path
	}
	if raw.ThreadSafety != nil {
		cfg.ThreadSafety = *raw.ThreadSafety
	}
	return cfg, true, nil
}
