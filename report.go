package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"

	"gitlab.com/tinyland/lab/xterm-query/pkg/config"
	"gitlab.com/tinyland/lab/xterm-query/pkg/probe"
)

// report is the result of one invocation.
type report struct {
	Terminal string              `json:"terminal" yaml:"terminal"`
	Query    string              `json:"query,omitempty" yaml:"query,omitempty"`
	Reply    string              `json:"reply,omitempty" yaml:"reply,omitempty"`
	Absent   bool                `json:"absent,omitempty" yaml:"absent,omitempty"`
	Probes   *probe.Capabilities `json:"probes,omitempty" yaml:"probes,omitempty"`
	Elapsed  config.Duration     `json:"elapsed" yaml:"elapsed"`

	// Ran lists the probes that were run, in order.
	Ran []string `json:"-" yaml:"-"`
}

func render(w io.Writer, rep *report, format string, profile termenv.Profile) error {
	switch format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return err
		}
		return enc.Close()
	default:
		return renderText(w, rep, profile)
	}
}

func renderText(w io.Writer, rep *report, profile termenv.Profile) error {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(profile)
	label := r.NewStyle().Bold(true).Width(18)
	good := r.NewStyle().Foreground(lipgloss.Color("2"))
	bad := r.NewStyle().Foreground(lipgloss.Color("1"))
	faint := r.NewStyle().Faint(true)

	var b strings.Builder
	line := func(k, v string) {
		b.WriteString(label.Render(k))
		b.WriteString(v)
		b.WriteByte('\n')
	}
	none := bad.Render("none")

	line("terminal", rep.Terminal)
	if rep.Query != "" {
		line("query", strconv.Quote(rep.Query))
		if rep.Absent {
			line("reply", none)
		} else {
			line("reply", strconv.Quote(rep.Reply))
			if s := ansi.Strip(rep.Reply); s != "" && s != rep.Reply {
				line("printable", s)
			}
		}
	}

	if c := rep.Probes; c != nil {
		color := func(col *probe.Color) string {
			if col == nil {
				return none
			}
			tone := "light"
			if col.Dark {
				tone = "dark"
			}
			swatch := r.NewStyle().Background(lipgloss.Color(col.Hex)).Render("  ")
			return fmt.Sprintf("%s %s %s", swatch, col.Hex, faint.Render(tone))
		}
		for _, name := range rep.Ran {
			if msg, ok := c.Errors[name]; ok {
				line(name, bad.Render("error: "+msg))
				continue
			}
			switch name {
			case probe.NameKitty:
				if c.KittyGraphics {
					line("kitty graphics", good.Render("yes"))
				} else {
					line("kitty graphics", bad.Render("no"))
				}
			case probe.NameBackground:
				line("background", color(c.Background))
			case probe.NameForeground:
				line("foreground", color(c.Foreground))
			case probe.NameDA1:
				if len(c.DeviceAttributes) == 0 {
					line("device attributes", none)
					continue
				}
				attrs := make([]string, len(c.DeviceAttributes))
				for i, a := range c.DeviceAttributes {
					attrs[i] = strconv.Itoa(a)
				}
				line("device attributes", strings.Join(attrs, ";"))
			case probe.NameVersion:
				if c.Version == "" {
					line("version", none)
				} else {
					line("version", c.Version)
				}
			}
		}
	}

	line("elapsed", faint.Render(rep.Elapsed.String()))
	_, err := io.WriteString(w, b.String())
	return err
}
