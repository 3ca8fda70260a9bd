package terminal

import (
	"fmt"
	"os"

	xterm "github.com/charmbracelet/x/term"
	"github.com/mattn/go-isatty"
)

// RawMode puts a terminal into raw mode and restores it afterwards. Queries
// need raw mode: a cooked terminal echoes replies and holds them until a
// newline.
type RawMode struct {
	fd       uintptr
	oldState *xterm.State
}

// NewRawMode returns a RawMode for fd. Nothing changes until Enable.
func NewRawMode(fd uintptr) *RawMode {
	return &RawMode{fd: fd}
}

// NewRawModeStdin returns a RawMode for standard input.
func NewRawModeStdin() *RawMode {
	return NewRawMode(os.Stdin.Fd())
}

// Enable switches the terminal to raw mode. Calling it twice is a no-op.
func (r *RawMode) Enable() error {
	if r.oldState != nil {
		return nil
	}
	if !IsTerminal(r.fd) {
		return fmt.Errorf("fd %d is not a terminal", r.fd)
	}
	st, err := xterm.MakeRaw(r.fd)
	if err != nil {
		return fmt.Errorf("make raw: %w", err)
	}
	r.oldState = st
	return nil
}

// Restore returns the terminal to the state it had before Enable.
func (r *RawMode) Restore() error {
	if r.oldState == nil {
		return nil
	}
	if err := xterm.Restore(r.fd, r.oldState); err != nil {
		return fmt.Errorf("restore terminal: %w", err)
	}
	r.oldState = nil
	return nil
}

// IsRaw reports whether Enable succeeded and Restore has not run since.
func (r *RawMode) IsRaw() bool {
	return r.oldState != nil
}

// IsTerminal reports whether fd refers to a terminal, including Cygwin and
// MSYS pseudo terminals.
func IsTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
