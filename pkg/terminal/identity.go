package terminal

import "strings"

// Identity is a terminal type as found in the TERM environment variable.
type Identity string

// Dumb reports whether the terminal is unset or "dumb". Such terminals are
// never sent queries.
func (id Identity) Dumb() bool {
	return id == "" || id == "dumb"
}

// Screen reports whether the terminal is GNU Screen (screen, screen-256color,
// screen.xterm-256color, ...). Screen swallows escape sequences it does not
// know unless they are wrapped in a DCS passthrough.
func (id Identity) Screen() bool {
	return strings.HasPrefix(string(id), "screen")
}

// Tmux reports whether TERM names tmux itself (tmux, tmux-256color).
func (id Identity) Tmux() bool {
	return strings.HasPrefix(string(id), "tmux")
}
