//go:build unix

package xtquery

import (
	"fmt"
	"os"
)

// OpenTTY opens the controlling terminal for reading. Replies arrive there
// even when stdin is redirected.
func OpenTTY() (*os.File, error) {
	f, err := os.Open("/dev/tty")
	if err != nil {
		return nil, ioError(fmt.Errorf("open /dev/tty: %w", err))
	}
	return f, nil
}
