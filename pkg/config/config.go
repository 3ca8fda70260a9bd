package config

import (
	"fmt"
	"slices"
	"strings"
)

// Output formats accepted in Config.Format.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formats lists every accepted output format.
var Formats = []string{FormatText, FormatJSON, FormatYAML}

// Config is the xterm-query configuration file.
//
//	timeout = "50ms"
//	buffer_size = 100
//	term = "xterm-256color"
//	format = "text"
//	log_level = "warn"
type Config struct {
	// Timeout bounds each query exchange.
	Timeout Duration `toml:"timeout"`

	// BufferSize is the reply buffer capacity in bytes.
	BufferSize int `toml:"buffer_size"`

	// Term overrides $TERM when deciding how to frame OSC queries.
	Term string `toml:"term"`

	Format   string `toml:"format"`
	LogLevel string `toml:"log_level"`
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if c.Timeout.Duration < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout.Duration)
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("buffer_size must be positive, got %d", c.BufferSize)
	}
	if !slices.Contains(Formats, c.Format) {
		return fmt.Errorf("format %q not one of %s", c.Format, strings.Join(Formats, ", "))
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q not one of debug, info, warn, error", c.LogLevel)
	}
	return nil
}
