package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ZebulonRouseFrantzich/pwin/internal/transaction"
)

// FileName is the name of the configuration file inside the pwin home directory.
const FileName = ".pwin.lua"

// Store loads and saves the configuration file.
type Store struct {
	path      string
	parser    *Parser
	generator *Generator
}

// NewStore creates a store for the config file at path.
func NewStore(path string, parser *Parser) *Store {
	if parser == nil {
		parser = NewParser(nil)
	}
	return &Store{
		path:      path,
		parser:    parser,
		generator: NewGenerator(),
	}
}

// LegacyPath returns where a legacy TOML config is looked for.
func (s *Store) LegacyPath() string {
	return filepath.Join(filepath.Dir(s.path), LegacyFileName)
}

// Path returns the config file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads and evaluates the config file. A missing file falls back to a
// legacy .pwin.toml next to it, then to DefaultConfig; any other read
// failure is returned.
func (s *Store) Load(ctx context.Context) (*Config, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg, ok, err := loadLegacy(s.LegacyPath())
			if err != nil {
				return nil, err
			}
			if ok {
				return cfg, nil
			}
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg, err := s.parser.ParseString(ctx, string(data))
	if err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", s.path, err)
	}
	return cfg, nil
}

// Save regenerates the config file from cfg, replacing it atomically.
func (s *Store) Save(cfg *Config) error {
	code, err := s.generator.Generate(cfg)
	if err != nil {
		return fmt.Errorf("generate config: %w", err)
	}
	if err := transaction.WriteFileAtomic(s.path, []byte(code), 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
