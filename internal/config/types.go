// Package config provides Lua configuration parsing, generation, and storage
// for pwin.
//
// The configuration file is a sandboxed Lua script that assigns a global
// "pwin" table. A read-only "platform" table is available while the script
// runs, so values can depend on the host:
//
//	pwin = {
//	  path = "C:\\php",
//	  thread_safety = platform.when(platform.is_x86, "ts") or "nts",
//	}
//
// A missing file yields DefaultConfig.
package config

import (
	"fmt"
	"strings"
)

// DefaultInstallPath is the installation base path used when none is configured.
const DefaultInstallPath = `C:\`

// ThreadSafety selects thread-safe (TS) or non-thread-safe (NTS) PHP builds.
type ThreadSafety int

const (
	// NonSafe selects NTS builds, used with IIS/FastCGI or the CLI.
	NonSafe ThreadSafety = iota
	// Safe selects TS builds, used with the Apache module.
	Safe
)

// Token returns the identifier used in build variant names ("ts" or "nts").
func (t ThreadSafety) Token() string {
	if t == Safe {
		return "ts"
	}
	return "nts"
}

// String returns the display name ("TS" or "NTS").
func (t ThreadSafety) String() string {
	if t == Safe {
		return "TS"
	}
	return "NTS"
}

// Describe returns a longer human-readable label.
func (t ThreadSafety) Describe() string {
	if t == Safe {
		return "Safe (TS)"
	}
	return "None (NTS)"
}

// MarshalText implements encoding.TextMarshaler.
// The persisted spelling ("Safe", "NonSafe") matches existing lock files.
func (t ThreadSafety) MarshalText() ([]byte, error) {
	if t == Safe {
		return []byte("Safe"), nil
	}
	return []byte("NonSafe"), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ThreadSafety) UnmarshalText(text []byte) error {
	parsed, err := ParseThreadSafety(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseThreadSafety accepts "ts"/"nts" tokens as well as the persisted
// "Safe"/"NonSafe" spellings, case-insensitively.
func ParseThreadSafety(s string) (ThreadSafety, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ts", "safe":
		return Safe, nil
	case "nts", "nonsafe", "non-safe":
		return NonSafe, nil
	default:
		return NonSafe, fmt.Errorf("invalid thread safety mode %q (want ts or nts)", s)
	}
}

// Config represents the pwin configuration.
type Config struct {
	// Path is the installation base path; each version lives in a subdirectory.
	// Empty means DefaultInstallPath.
	Path string

	// ThreadSafety selects which builds are installed.
	ThreadSafety ThreadSafety
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{ThreadSafety: NonSafe}
}

// InstallPath returns the configured installation base path or the default.
func (c *Config) InstallPath() string {
	if c == nil || strings.TrimSpace(c.Path) == "" {
		return DefaultInstallPath
	}
	return c.Path
}

// ThreadSafetyMode returns the configured mode. A nil config yields NonSafe.
func (c *Config) ThreadSafetyMode() ThreadSafety {
	if c == nil {
		return NonSafe
	}
	return c.ThreadSafety
}
