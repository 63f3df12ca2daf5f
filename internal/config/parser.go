package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ZebulonRouseFrantzich/pwin/internal/platform"
	lua "github.com/yuin/gopher-lua"
)

const (
	luaGlobalPwin      = "pwin"
	luaFieldPath       = "path"
	luaFieldThreadSafe = "thread_safety"
)

// Parser represents a Lua config parser with platform detection.
type Parser struct {
	detector platform.Detector
}

// NewParser creates a new config parser with the given platform detector.
// A nil detector leaves the platform table undefined.
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector}
}

// ParseString parses a Lua config from a string.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (*Config, error) {
	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	if p.detector != nil {
		platformInfo, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, platformInfo); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(luaCode); err != nil {
		return nil, &ParseError{
			Message: "Lua syntax error",
			Detail:  err.Error(),
		}
	}

	return extractConfig(L)
}

// ParseError represents a config parsing error with friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// extractConfig reads the global "pwin" table.
// An absent table is allowed and yields the defaults.
func extractConfig(L *lua.LState) (*Config, error) {
	cfg := DefaultConfig()

	global := L.GetGlobal(luaGlobalPwin)
	if global.Type() == lua.LTNil {
		return cfg, nil
	}
	table, ok := global.(*lua.LTable)
	if !ok {
		return nil, &ParseError{
			Message: "invalid 'pwin' table",
			Detail:  fmt.Sprintf("expected table, got %s", global.Type()),
		}
	}

	switch pathVal := table.RawGetString(luaFieldPath); pathVal.Type() {
	case lua.LTNil:
	case lua.LTString:
		cfg.Path = strings.TrimSpace(pathVal.String())
	default:
		return nil, &ParseError{
			Message: "invalid 'path'",
			Detail:  fmt.Sprintf("expected string, got %s", pathVal.Type()),
		}
	}

	switch tsVal := table.RawGetString(luaFieldThreadSafe); tsVal.Type() {
	case lua.LTNil:
	case lua.LTString:
		ts, err := ParseThreadSafety(tsVal.String())
		if err != nil {
			return nil, &ParseError{Message: "invalid 'thread_safety'", Detail: err.Error()}
		}
		cfg.ThreadSafety = ts
	default:
		return nil, &ParseError{
			Message: "invalid 'thread_safety'",
			Detail:  fmt.Sprintf("expected string, got %s", tsVal.Type()),
		}
	}

	return cfg, nil
}

// FormatError formats err for user display. When err wraps a ParseError the
// raw Lua message is replaced by the friendly one; verbose appends the raw
// details instead of trimming the stack traceback. Other errors are
// returned unchanged.
func FormatError(err error, verbose bool) string {
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		return err.Error()
	}

	if verbose {
		msg := strings.Replace(err.Error(), parseErr.Error(), parseErr.Message, 1)
		return fmt.Sprintf("%s\n\nDetails:\n%s", msg, parseErr.Detail)
	}

	detail := parseErr.Detail
	if idx := strings.Index(detail, "stack traceback"); idx > 0 {
		detail = strings.TrimSpace(detail[:idx])
	}
	return strings.Replace(err.Error(), parseErr.Error(), parseErr.Message+": "+detail, 1)
}
