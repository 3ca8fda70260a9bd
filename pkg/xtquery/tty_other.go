//go:build !unix

package xtquery

import "os"

// OpenTTY is a stub for platforms without a controlling terminal device.
func OpenTTY() (*os.File, error) {
	return nil, unsupported("no controlling terminal device")
}
