//go:build unix

package xtquery

import (
	"errors"
	"math"
	"os"
	"testing"

	"golang.org/x/sys/unix"
)

func waiters() map[string]Waiter {
	return map[string]Waiter{
		"poll":    PollWaiter{},
		"select":  SelectWaiter{},
		"default": DefaultWaiter(),
	}
}

func newPipe(t *testing.T) (r, w *os.File) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		r.Close()
		w.Close()
	})
	return r, w
}

// --- Waiter Tests ---

func TestWaiter_IdleTimesOut(t *testing.T) {
	for name, w := range waiters() {
		t.Run(name, func(t *testing.T) {
			r, _ := newPipe(t)
			n, err := w.Wait(r.Fd(), 10)
			if err != nil {
				t.Fatalf("Wait() error: %v", err)
			}
			if n != 0 {
				t.Errorf("Wait() on idle pipe = %d, want 0", n)
			}
		})
	}
}

func TestWaiter_ReadyWhenWritten(t *testing.T) {
	for name, w := range waiters() {
		t.Run(name, func(t *testing.T) {
			r, wr := newPipe(t)
			if _, err := wr.Write([]byte("x")); err != nil {
				t.Fatal(err)
			}
			n, err := w.Wait(r.Fd(), 1000)
			if err != nil {
				t.Fatalf("Wait() error: %v", err)
			}
			if n <= 0 {
				t.Errorf("Wait() on written pipe = %d, want > 0", n)
			}
		})
	}
}

func TestWaiter_ReadyOnHangup(t *testing.T) {
	for name, w := range waiters() {
		t.Run(name, func(t *testing.T) {
			r, wr := newPipe(t)
			wr.Close()
			n, err := w.Wait(r.Fd(), 1000)
			if err != nil {
				t.Fatalf("Wait() error: %v", err)
			}
			if n <= 0 {
				t.Errorf("Wait() on closed pipe = %d, want > 0", n)
			}
		})
	}
}

func TestPollWaiter_TimeoutOverflow(t *testing.T) {
	_, err := PollWaiter{}.Wait(0, math.MaxInt32+1)
	if !errors.Is(err, ErrPlatform) || !errors.Is(err, unix.EOVERFLOW) {
		t.Fatalf("Wait(MaxInt32+1) error = %v, want platform EOVERFLOW", err)
	}
}

func TestSelectWaiter_TimeoutOverflow(t *testing.T) {
	_, err := SelectWaiter{}.Wait(0, math.MaxInt64)
	if !errors.Is(err, ErrPlatform) || !errors.Is(err, unix.EOVERFLOW) {
		t.Fatalf("Wait(MaxInt64) error = %v, want platform EOVERFLOW", err)
	}
}

func TestSelectWaiter_DescriptorOutOfRange(t *testing.T) {
	_, err := SelectWaiter{}.Wait(uintptr(fdSetSize), 0)
	if !errors.Is(err, unix.EBADF) {
		t.Fatalf("Wait(fdSetSize) error = %v, want EBADF", err)
	}
}
