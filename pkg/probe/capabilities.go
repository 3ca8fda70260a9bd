package probe

import (
	"fmt"
	"slices"
)

// Capabilities is the summary of a Detect run. Probes the terminal did not
// answer leave their field at the zero value; other failures are recorded in
// Errors by probe name.
type Capabilities struct {
	KittyGraphics    bool              `json:"kitty_graphics" yaml:"kitty_graphics"`
	Background       *Color            `json:"background,omitempty" yaml:"background,omitempty"`
	Foreground       *Color            `json:"foreground,omitempty" yaml:"foreground,omitempty"`
	DeviceAttributes []int             `json:"device_attributes,omitempty" yaml:"device_attributes,omitempty"`
	Version          string            `json:"version,omitempty" yaml:"version,omitempty"`
	Errors           map[string]string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// DarkBackground reports whether a background color was detected and is
// dark.
func (c *Capabilities) DarkBackground() bool {
	return c.Background != nil && c.Background.Dark
}

// Detect runs the named probes, or all of them when names is empty, one
// after the other. It fails only for unknown probe names.
func (p *Prober) Detect(names ...string) (*Capabilities, error) {
	if len(names) == 0 {
		names = Names
	}
	for _, name := range names {
		if !slices.Contains(Names, name) {
			return nil, fmt.Errorf("unknown probe %q (known: %v)", name, Names)
		}
	}

	caps := &Capabilities{}
	record := func(name string, err error) bool {
		if err == nil {
			return true
		}
		if !Absent(err) {
			if caps.Errors == nil {
				caps.Errors = make(map[string]string)
			}
			caps.Errors[name] = err.Error()
		}
		return false
	}

	for _, name := range names {
		switch name {
		case NameKitty:
			ok, err := p.KittyGraphics()
			if record(name, err) {
				caps.KittyGraphics = ok
			}
		case NameBackground:
			c, err := p.Background()
			if record(name, err) {
				caps.Background = &c
			}
		case NameForeground:
			c, err := p.Foreground()
			if record(name, err) {
				caps.Foreground = &c
			}
		case NameDA1:
			attrs, err := p.DeviceAttributes()
			if record(name, err) {
				caps.DeviceAttributes = attrs
			}
		case NameVersion:
			v, err := p.Version()
			if record(name, err) {
				caps.Version = v
			}
		}
	}
	return caps, nil
}
