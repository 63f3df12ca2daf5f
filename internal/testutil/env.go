// Package testutil provides utilities for testing pwin in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZebulonRouseFrantzich/pwin/internal/config"
)

// HomeEnvVar overrides the directory holding .pwin.lock and .pwin.lua.
const HomeEnvVar = "PWIN_HOME"

// Env describes an isolated pwin environment.
type Env struct {
	// Home holds the lock file and config file.
	Home string
	// InstallDir is the configured install base.
	InstallDir string
}

// ConfigPath returns the config file location inside Home.
func (e Env) ConfigPath() string {
	return filepath.Join(e.Home, config.FileName)
}

// SetupTestEnv creates isolated test directories for each test.
// This ensures pwin tests never interfere with:
// - PHP installations on the machine
// - The user's own lock file and configuration
//
// A config file pointing the install base at InstallDir is written, so
// nothing is ever installed under the default C:\ root. The cleanup
// function is automatically handled by t.TempDir(), so callers don't need
// to manually clean up.
func SetupTestEnv(t *testing.T) Env {
	t.Helper()

	// Create temp directory (auto-cleaned by testing framework)
	tmpDir := t.TempDir()
	env := Env{
		Home:       filepath.Join(tmpDir, "home"),
		InstallDir: filepath.Join(tmpDir, "php"),
	}

	t.Setenv(HomeEnvVar, env.Home)
	// Fallbacks used by os.UserHomeDir on each platform
	t.Setenv("HOME", env.Home)
	t.Setenv("USERPROFILE", env.Home)

	if err := os.MkdirAll(env.Home, 0o750); err != nil {
		t.Fatalf("failed to create test directory %s: %v", env.Home, err)
	}

	cfg := &config.Config{Path: env.InstallDir, ThreadSafety: config.NonSafe}
	if err := config.NewStore(env.ConfigPath(), nil).Save(cfg); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	return env
}
