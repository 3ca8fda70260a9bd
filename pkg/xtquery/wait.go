package xtquery

// Waiter blocks until a descriptor is readable or a timeout elapses.
//
// Wait returns a positive count when fd has data (or has hung up), zero when
// timeoutMs elapsed first, and a KindPlatform error when the underlying call
// fails. A timeout of zero polls without blocking. Interrupted calls are not
// retried; a spurious zero is treated by callers as a timeout.
type Waiter interface {
	Wait(fd uintptr, timeoutMs int64) (int, error)
}

// WaiterFunc adapts a function to the Waiter interface.
type WaiterFunc func(fd uintptr, timeoutMs int64) (int, error)

// Wait calls f(fd, timeoutMs).
func (f WaiterFunc) Wait(fd uintptr, timeoutMs int64) (int, error) {
	return f(fd, timeoutMs)
}
