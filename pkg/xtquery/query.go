// Package xtquery queries a terminal emulator with escape sequences and
// waits, with a bounded timeout, for its reply.
//
// The terminal must already be in raw mode (no echo, no line buffering);
// this package never changes terminal modes. Only one query may be in
// flight on a given terminal at a time, and callers serialize access.
//
// Two flavours are offered. QueryBuffer and Query send the caller's bytes
// and return whatever the first read produces. QueryOSCBuffer and QueryOSC
// append a Device Status Report as a fence and parse a strictly framed
// reply, which lets them tell "unsupported" (ErrNotOSCResponse) apart from
// "still waiting" (ErrTimeout).
package xtquery

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"
	"unicode/utf8"
)

// DefaultBufferSize is the capacity of the internal buffer used by Query and
// QueryOSC. It fits typical single-line escape replies.
const DefaultBufferSize = 100

// Input is the read side of a terminal. *os.File satisfies it.
type Input interface {
	io.Reader
	Fd() uintptr
}

// Engine performs queries against one terminal. The zero value is not
// usable; construct with New.
type Engine struct {
	in      Input
	out     io.Writer
	term    string
	termSet bool
	waiter  Waiter
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithTerm fixes the terminal identity (the TERM value) instead of reading it
// from the environment on every OSC query.
func WithTerm(term string) Option {
	return func(e *Engine) {
		e.term = term
		e.termSet = true
	}
}

// WithWaiter replaces the platform default readiness waiter.
func WithWaiter(w Waiter) Option {
	return func(e *Engine) {
		if w != nil {
			e.waiter = w
		}
	}
}

// WithLogger sets the logger used for debug tracing of the wire traffic.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New returns an Engine that writes queries to out and reads replies from in.
func New(in Input, out io.Writer, opts ...Option) *Engine {
	e := &Engine{
		in:     in,
		out:    out,
		waiter: DefaultWaiter(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Query sends query and returns the first chunk of the reply as text. At
// most DefaultBufferSize bytes are read; longer replies are truncated.
func (e *Engine) Query(query string, timeout time.Duration) (string, error) {
	var buf [DefaultBufferSize]byte
	n, err := e.QueryBuffer(query, buf[:], timeout)
	if err != nil {
		return "", err
	}
	return toText(buf[:n])
}

// QueryBuffer sends query, waits once for the terminal to become readable
// and performs a single read into buf. It returns the number of bytes read;
// zero means the input was closed.
func (e *Engine) QueryBuffer(query string, buf []byte, timeout time.Duration) (int, error) {
	if len(buf) == 0 {
		return 0, &Error{Kind: KindBufferOverflow, Msg: "empty buffer"}
	}
	if err := e.send([]byte(query)); err != nil {
		return 0, err
	}
	ready, err := e.wait(timeout)
	if err != nil {
		return 0, err
	}
	if ready == 0 {
		return 0, &Error{Kind: KindTimeout}
	}
	return e.read(buf)
}

// send writes p in a single call and flushes buffered writers.
func (e *Engine) send(p []byte) error {
	if _, err := e.out.Write(p); err != nil {
		return ioError(fmt.Errorf("write query: %w", err))
	}
	if f, ok := e.out.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return ioError(fmt.Errorf("flush query: %w", err))
		}
	}
	e.logger.Debug("query sent", "bytes", len(p), "seq", strconv.Quote(string(p)))
	return nil
}

// wait converts timeout to whole milliseconds, rounding up, and asks the
// waiter for readiness.
func (e *Engine) wait(timeout time.Duration) (int, error) {
	var ms int64
	if timeout > 0 {
		ms = timeout.Milliseconds()
		if timeout%time.Millisecond != 0 {
			ms++
		}
	}
	n, err := e.waiter.Wait(e.in.Fd(), ms)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// read performs one read. End of input is reported as a zero-length read.
func (e *Engine) read(p []byte) (int, error) {
	n, err := e.in.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, ioError(fmt.Errorf("read reply: %w", err))
	}
	e.logger.Debug("reply read", "bytes", n, "data", strconv.Quote(string(p[:n])))
	return n, nil
}

// identity returns the terminal identity for this query.
func (e *Engine) identity() string {
	if e.termSet {
		return e.term
	}
	return os.Getenv("TERM")
}

func toText(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", &Error{Kind: KindEncoding, Err: fmt.Errorf("invalid UTF-8 in %d byte reply", len(b))}
	}
	return string(b), nil
}

// Query opens the controlling terminal and runs Engine.Query, writing to
// stdout.
func Query(query string, timeout time.Duration) (string, error) {
	var out string
	err := withTTY(func(e *Engine) (err error) {
		out, err = e.Query(query, timeout)
		return err
	})
	return out, err
}

// QueryBuffer opens the controlling terminal and runs Engine.QueryBuffer,
// writing to stdout.
func QueryBuffer(query string, buf []byte, timeout time.Duration) (int, error) {
	var n int
	err := withTTY(func(e *Engine) (err error) {
		n, err = e.QueryBuffer(query, buf, timeout)
		return err
	})
	return n, err
}

// QueryOSC opens the controlling terminal and runs Engine.QueryOSC, writing
// to stdout. TERM is read from the environment.
func QueryOSC(query string, timeout time.Duration) (string, error) {
	var out string
	err := withTTY(func(e *Engine) (err error) {
		out, err = e.QueryOSC(query, timeout)
		return err
	})
	return out, err
}

// QueryOSCBuffer opens the controlling terminal and runs
// Engine.QueryOSCBuffer, writing to stdout. TERM is read from the
// environment.
func QueryOSCBuffer(query string, buf []byte, timeout time.Duration) ([]byte, error) {
	var out []byte
	err := withTTY(func(e *Engine) (err error) {
		out, err = e.QueryOSCBuffer(query, buf, timeout)
		return err
	})
	return out, err
}

func withTTY(fn func(*Engine) error) error {
	tty, err := OpenTTY()
	if err != nil {
		return err
	}
	defer tty.Close()
	return fn(New(tty, os.Stdout))
}
