//go:build unix && !darwin

package xtquery

// DefaultWaiter returns the waiter used when none is configured.
func DefaultWaiter() Waiter { return PollWaiter{} }
