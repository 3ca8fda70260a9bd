// Package config provides TOML-based configuration for xterm-query.
package config

import (
	"fmt"
	"strconv"
	"time"
)

// Duration is a query timeout as written in the config file or the
// environment. Go duration strings ("50ms", "1s") are accepted, and so are
// bare integers, read as milliseconds:
//
//	timeout = "50ms"
//	timeout = 50
type Duration struct {
	time.Duration
}

// UnmarshalTOML accepts a TOML string or integer.
func (d *Duration) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case string:
		return d.UnmarshalText([]byte(v))
	case int64:
		return d.setMillis(v)
	default:
		return fmt.Errorf("duration must be a string or integer milliseconds, got %T", v)
	}
}

// UnmarshalText parses a duration string or integer milliseconds. An empty
// value is zero.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)
	if s == "" {
		d.Duration = 0
		return nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return d.setMillis(ms)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if parsed < 0 {
		return fmt.Errorf("negative duration %q not allowed", s)
	}
	d.Duration = parsed
	return nil
}

func (d *Duration) setMillis(ms int64) error {
	if ms < 0 {
		return fmt.Errorf("negative duration %dms not allowed", ms)
	}
	if ms > int64(time.Duration(1<<63-1)/time.Millisecond) {
		return fmt.Errorf("duration %dms out of range", ms)
	}
	d.Duration = time.Duration(ms) * time.Millisecond
	return nil
}

// MarshalText writes the Go duration string, e.g. "50ms".
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}
