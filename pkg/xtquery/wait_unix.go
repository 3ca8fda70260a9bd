//go:build unix

package xtquery

import (
	"math"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// fdSetSize is the number of descriptors an FdSet can hold.
const fdSetSize = int(unsafe.Sizeof(unix.FdSet{})) * 8

// PollWaiter waits with poll(2). It is the default everywhere except darwin.
type PollWaiter struct{}

// Wait implements Waiter.
func (PollWaiter) Wait(fd uintptr, timeoutMs int64) (int, error) {
	if timeoutMs < 0 {
		timeoutMs = 0
	}
	if timeoutMs > math.MaxInt32 {
		return 0, platformError("poll timeout", unix.EOVERFLOW)
	}
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, int(timeoutMs))
	if err != nil {
		return 0, platformError("poll", err)
	}
	return n, nil
}

// SelectWaiter waits with select(2). darwin cannot poll a tty device, so it
// is the default there.
type SelectWaiter struct{}

// Wait implements Waiter.
func (SelectWaiter) Wait(fd uintptr, timeoutMs int64) (int, error) {
	if timeoutMs < 0 {
		timeoutMs = 0
	}
	if timeoutMs > math.MaxInt64/int64(time.Millisecond) {
		return 0, platformError("select timeout", unix.EOVERFLOW)
	}
	if fd >= uintptr(fdSetSize) {
		return 0, platformError("select", unix.EBADF)
	}
	var set unix.FdSet
	set.Zero()
	set.Set(int(fd))
	tv := unix.NsecToTimeval(timeoutMs * int64(time.Millisecond))
	n, err := unix.Select(int(fd)+1, &set, nil, nil, &tv)
	if err != nil {
		return 0, platformError("select", err)
	}
	return n, nil
}
