// Package termtest provides simulated terminals for testing code that
// queries a terminal. A simulated terminal reads the queries written to it,
// answers the ones its profile knows, and delivers the replies through a
// real pipe so readiness waiting behaves as it does on a tty.
package termtest

// TerminalProfile describes which queries a simulated terminal answers and
// how.
type TerminalProfile struct {
	Name          string // Human-readable terminal name
	Term          string // TERM value the terminal sets
	Background    string // OSC 11 color spec, e.g. "rgb:0000/0000/0000" ("" = ignored)
	Foreground    string // OSC 10 color spec ("" = ignored)
	DA1           string // Primary device attributes parameters, e.g. "?62;22" ("" = ignored)
	Version       string // XTVERSION text, e.g. "xterm(390)" ("" = ignored)
	KittyGraphics bool   // Answers kitty graphics queries with OK
	StatusReport  bool   // Answers DSR 5 with ESC [ 0 n
	BELTerminator bool   // Ends OSC replies with BEL instead of ESC \
	Passthrough   bool   // Multiplexer: only DCS-wrapped queries reach the emulator
}

// Profiles returns all built-in terminal profiles.
func Profiles() []TerminalProfile {
	return []TerminalProfile{
		ttXtermProfile(),
		ttKittyProfile(),
		ttGhosttyProfile(),
		ttScreenProfile(),
		ttVT100Profile(),
		ttSilentProfile(),
		ttDumbProfile(),
	}
}

// ProfileByName returns the profile matching the given name, or nil if not found.
func ProfileByName(name string) *TerminalProfile {
	for _, p := range Profiles() {
		if p.Name == name {
			cp := p
			return &cp
		}
	}
	return nil
}

// ttXtermProfile ends OSC replies with BEL and knows nothing about kitty
// graphics.
func ttXtermProfile() TerminalProfile {
	return TerminalProfile{
		Name:          "xterm",
		Term:          "xterm-256color",
		Background:    "rgb:ffff/ffff/dddd",
		Foreground:    "rgb:0000/0000/0000",
		DA1:           "?64;1;2;6;9;15;16;17;18;21;22;28",
		Version:       "XTerm(390)",
		StatusReport:  true,
		BELTerminator: true,
	}
}

// ttKittyProfile answers everything, including kitty graphics.
func ttKittyProfile() TerminalProfile {
	return TerminalProfile{
		Name:          "kitty",
		Term:          "xterm-kitty",
		Background:    "rgb:1e1e/1e1e/2e2e",
		Foreground:    "rgb:cdcd/d6d6/f4f4",
		DA1:           "?62;52",
		Version:       "kitty(0.35.2)",
		KittyGraphics: true,
		StatusReport:  true,
	}
}

// ttGhosttyProfile answers everything with ST-terminated replies.
func ttGhosttyProfile() TerminalProfile {
	return TerminalProfile{
		Name:          "ghostty",
		Term:          "xterm-ghostty",
		Background:    "rgb:2828/2c2c/3434",
		Foreground:    "rgb:ffff/ffff/ffff",
		DA1:           "?62;22",
		Version:       "ghostty 1.1.0",
		KittyGraphics: true,
		StatusReport:  true,
	}
}

// ttScreenProfile is GNU Screen in front of an xterm. Screen answers DA1 and
// DSR itself and drops OSC queries unless they arrive in a DCS passthrough.
func ttScreenProfile() TerminalProfile {
	p := ttXtermProfile()
	p.Name = "screen"
	p.Term = "screen-256color"
	p.Passthrough = true
	return p
}

// ttVT100Profile predates OSC: it only answers DA1 and DSR.
func ttVT100Profile() TerminalProfile {
	return TerminalProfile{
		Name:         "vt100",
		Term:         "vt100",
		DA1:          "?1;2",
		StatusReport: true,
	}
}

// ttSilentProfile claims to be an xterm but never answers anything.
func ttSilentProfile() TerminalProfile {
	return TerminalProfile{
		Name: "silent",
		Term: "xterm",
	}
}

// ttDumbProfile is TERM=dumb.
func ttDumbProfile() TerminalProfile {
	return TerminalProfile{
		Name: "dumb",
		Term: "dumb",
	}
}
