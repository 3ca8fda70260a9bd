package xtquery

import (
	"errors"
	"fmt"
)

// Kind classifies a query failure. The set is closed: every error returned
// by this package is an *Error carrying one of these kinds.
type Kind int

const (
	KindIO             Kind = iota + 1 // read, write or open failed
	KindEncoding                       // reply is not valid UTF-8
	KindWrongFormat                    // reply does not have the expected shape
	KindTimeout                        // no readiness within the timeout
	KindTerminal                       // terminal reported an error status
	KindPlatform                       // wait primitive reported an errno
	KindNotOSCResponse                 // fence answered without an OSC terminator
	KindBufferOverflow                 // buffer filled before a frame resolved
	KindUnsupported                    // platform or terminal cannot be queried
)

var kindNames = [...]string{
	KindIO:             "io",
	KindEncoding:       "encoding",
	KindWrongFormat:    "wrong-format",
	KindTimeout:        "timeout",
	KindTerminal:       "terminal",
	KindPlatform:       "platform",
	KindNotOSCResponse: "not-osc-response",
	KindBufferOverflow: "buffer-overflow",
	KindUnsupported:    "unsupported",
}

// String returns the short name of the kind.
func (k Kind) String() string {
	if k > 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Error is the error type returned by every query function.
type Error struct {
	Kind Kind
	Code int64  // terminal status code, KindTerminal only
	Msg  string // detail for KindWrongFormat and friends
	Err  error  // underlying cause, if any
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindIO:
		return fmt.Sprintf("IO error: %v", e.Err)
	case KindEncoding:
		return fmt.Sprintf("UTF8 error: %v", e.Err)
	case KindWrongFormat:
		return fmt.Sprintf("wrong answer format: %s", e.Msg)
	case KindTimeout:
		return "timeout waiting for xterm"
	case KindTerminal:
		return fmt.Sprintf("terminal error code: %d", e.Code)
	case KindPlatform:
		if e.Msg != "" {
			return fmt.Sprintf("platform error: %s: %v", e.Msg, e.Err)
		}
		return fmt.Sprintf("platform error: %v", e.Err)
	case KindNotOSCResponse:
		return "not an OSC response"
	case KindBufferOverflow:
		if e.Msg != "" {
			return "provided buffer is too small: " + e.Msg
		}
		return "provided buffer is too small"
	case KindUnsupported:
		if e.Msg != "" {
			return "unsupported platform: " + e.Msg
		}
		return "unsupported platform"
	}
	return "unknown query error"
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind, so the sentinel
// values below can be matched with errors.Is regardless of detail.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrIO             = &Error{Kind: KindIO}
	ErrEncoding       = &Error{Kind: KindEncoding}
	ErrWrongFormat    = &Error{Kind: KindWrongFormat}
	ErrTimeout        = &Error{Kind: KindTimeout}
	ErrTerminal       = &Error{Kind: KindTerminal}
	ErrPlatform       = &Error{Kind: KindPlatform}
	ErrNotOSCResponse = &Error{Kind: KindNotOSCResponse}
	ErrBufferOverflow = &Error{Kind: KindBufferOverflow}
	ErrUnsupported    = &Error{Kind: KindUnsupported}
)

// KindOf returns the kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Kind
	}
	return 0
}

// WrongFormat builds a KindWrongFormat error. It is exported for callers that
// parse replies on top of this package.
func WrongFormat(format string, args ...any) error {
	return &Error{Kind: KindWrongFormat, Msg: fmt.Sprintf(format, args...)}
}

// TerminalError builds a KindTerminal error carrying the status the terminal
// reported.
func TerminalError(code int64) error {
	return &Error{Kind: KindTerminal, Code: code}
}

func ioError(err error) error {
	return &Error{Kind: KindIO, Err: err}
}

func platformError(op string, err error) error {
	return &Error{Kind: KindPlatform, Msg: op, Err: err}
}

func unsupported(msg string) error {
	return &Error{Kind: KindUnsupported, Msg: msg}
}
