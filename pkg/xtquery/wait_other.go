//go:build !unix

package xtquery

// DefaultWaiter returns a waiter that always fails with KindUnsupported.
func DefaultWaiter() Waiter {
	return WaiterFunc(func(uintptr, int64) (int, error) {
		return 0, unsupported("no readiness primitive")
	})
}
