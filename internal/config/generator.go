package config

import (
	"bytes"
	"strings"
	"time"
)

// Generator generates Lua configuration code from Go structs.
type Generator struct {
	indent string
	now    func() time.Time
}

// NewGenerator creates a new Lua config generator.
func NewGenerator() *Generator {
	return &Generator{
		indent: "  ",
		now:    time.Now,
	}
}

// Generate generates Lua code from a Config struct.
// Unset fields are omitted so the defaults keep applying.
func (g *Generator) Generate(config *Config) (string, error) {
	var buf bytes.Buffer

	buf.WriteString("-- pwin configuration\n")
	buf.WriteString("-- Generated: ")
	buf.WriteString(g.now().Format(time.RFC3339))
	buf.WriteString("\n\n")

	buf.WriteString("pwin = {\n")

	if config.Path != "" {
		buf.WriteString(g.indent)
		buf.WriteString(luaFieldPath)
		buf.WriteString(" = ")
		buf.WriteString(g.quoteLuaString(config.Path))
		buf.WriteString(",\n")
	}

	buf.WriteString(g.indent)
	buf.WriteString(luaFieldThreadSafe)
	buf.WriteString(" = ")
	buf.WriteString(g.quoteLuaString(config.ThreadSafety.Token()))
	buf.WriteString(",\n")

	buf.WriteString("}\n")

	return buf.String(), nil
}

// quoteLuaString quotes a string for Lua, handling special characters.
func (g *Generator) quoteLuaString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\") // Escape backslashes first
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return "\"" + s + "\""
}
