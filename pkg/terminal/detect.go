// Package terminal identifies the terminal a process is attached to and
// manages raw mode on it.
//
// Identification is environment-only: Detect names the emulator for logs
// and reports, and Identity classifies the TERM value for the query engine
// (dumb terminals, screen passthrough). Definitive answers come from
// querying the terminal itself, see package xtquery.
package terminal

import (
	"os"
	"strings"
)

// Terminal identifies the terminal emulator in use.
type Terminal int

const (
	TermUnknown   Terminal = iota
	TermGhostty            // Ghostty
	TermKitty              // Kitty
	TermWezTerm            // WezTerm
	TermITerm2             // iTerm2
	TermAlacritty          // Alacritty
	TermTilix              // Tilix (VTE-based)
	TermGNOME              // GNOME Terminal (VTE-based)
	TermTmux               // tmux multiplexer
	TermScreen             // GNU Screen multiplexer
	TermVSCode             // VS Code integrated terminal
	TermEmacs              // Emacs vterm/eat
	TermDumb               // TERM=dumb or unset, no escape sequence support
	TermGeneric            // Unknown terminal with basic capabilities
)

// terminalNames maps Terminal values to human-readable strings.
var terminalNames = [...]string{
	TermUnknown:   "unknown",
	TermGhostty:   "ghostty",
	TermKitty:     "kitty",
	TermWezTerm:   "wezterm",
	TermITerm2:    "iterm2",
	TermAlacritty: "alacritty",
	TermTilix:     "tilix",
	TermGNOME:     "gnome-terminal",
	TermTmux:      "tmux",
	TermScreen:    "screen",
	TermVSCode:    "vscode",
	TermEmacs:     "emacs",
	TermDumb:      "dumb",
	TermGeneric:   "generic",
}

// String returns the human-readable name of the terminal.
func (t Terminal) String() string {
	if int(t) < len(terminalNames) {
		return terminalNames[t]
	}
	return "unknown"
}

// Multiplexer reports whether the terminal is a multiplexer rather than an
// emulator. Queries sent through a multiplexer may be answered by it, by the
// outer emulator, or not at all.
func (t Terminal) Multiplexer() bool {
	return t == TermTmux || t == TermScreen
}

// Detect identifies the terminal emulator from environment variables.
// This is Layer 1 detection (0ms, no I/O). Detection proceeds through
// multiple signals ordered by reliability:
//
//  1. TERM_PROGRAM env var (most terminals set this)
//  2. TERM env var (xterm-ghostty, xterm-kitty, alacritty)
//  3. Terminal-specific vars (KITTY_WINDOW_ID, ITERM_SESSION_ID, etc.)
//  4. VTE_VERSION for VTE-based terminals (GNOME, Tilix)
//  5. INSIDE_EMACS for emacs terminals
//  6. TMUX / STY for multiplexers
//  7. LC_TERMINAL for iTerm2 over SSH
//  8. TERM=dumb (or no TERM at all) as TermDumb
//  9. Fallback to TermGeneric
func Detect() Terminal {
	// Layer 1: TERM_PROGRAM is the most reliable single signal.
	if tp := os.Getenv("TERM_PROGRAM"); tp != "" {
		switch strings.ToLower(tp) {
		case "ghostty":
			return TermGhostty
		case "kitty":
			return TermKitty
		case "wezterm":
			return TermWezTerm
		case "iterm.app":
			return TermITerm2
		case "vscode":
			return TermVSCode
		case "alacritty":
			return TermAlacritty
		case "tmux":
			return TermTmux
		}
	}

	// Layer 2: TERM value encodes terminal identity in some emulators.
	if term := os.Getenv("TERM"); term != "" {
		switch {
		case term == "xterm-ghostty":
			return TermGhostty
		case term == "xterm-kitty":
			return TermKitty
		case strings.HasPrefix(term, "alacritty"):
			return TermAlacritty
		case Identity(term).Screen():
			// GNU Screen sets TERM=screen or screen-256color.
			// Check STY to confirm it is actually screen.
			if os.Getenv("STY") != "" {
				return TermScreen
			}
		}
	}

	// Layer 3: Terminal-specific environment variables.
	if os.Getenv("KITTY_WINDOW_ID") != "" {
		return TermKitty
	}
	if os.Getenv("ITERM_SESSION_ID") != "" {
		return TermITerm2
	}
	if os.Getenv("WEZTERM_EXECUTABLE") != "" {
		return TermWezTerm
	}

	// Layer 4: VTE-based terminals (GNOME Terminal, Tilix, etc.)
	if os.Getenv("VTE_VERSION") != "" {
		if os.Getenv("TILIX_ID") != "" {
			return TermTilix
		}
		return TermGNOME
	}

	// Layer 5: Emacs terminal emulators.
	if os.Getenv("INSIDE_EMACS") != "" {
		return TermEmacs
	}

	// Layer 6: Multiplexer detection. Checked late so inner terminal
	// detection from TERM_PROGRAM takes priority.
	if os.Getenv("TMUX") != "" {
		return TermTmux
	}
	if os.Getenv("STY") != "" {
		return TermScreen
	}

	// Layer 7: VS Code sets TERM_PROGRAM_VERSION but may not set TERM_PROGRAM
	// on older versions. Also check LC_TERMINAL for iTerm2 via SSH.
	if os.Getenv("LC_TERMINAL") == "iTerm2" {
		return TermITerm2
	}

	if Identity(os.Getenv("TERM")).Dumb() {
		return TermDumb
	}

	return TermGeneric
}
