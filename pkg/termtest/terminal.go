package termtest

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"
	"time"
)

// Terminal is a simulated terminal. Queries are written to it with Write,
// replies are read from Input.
type Terminal struct {
	Profile TerminalProfile

	tb testing.TB

	in, out *os.File // pipe: replies are written to out and read from in

	mu      sync.Mutex
	written bytes.Buffer

	chunk     int
	delay     time.Duration
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Option configures a Terminal.
type Option func(*Terminal)

// WithChunkSize makes the terminal deliver replies n bytes at a time.
func WithChunkSize(n int) Option {
	return func(t *Terminal) { t.chunk = n }
}

// WithDelay makes the terminal pause before each delivered chunk.
func WithDelay(d time.Duration) Option {
	return func(t *Terminal) { t.delay = d }
}

// New starts a simulated terminal for profile p. It is closed when the test
// ends.
func New(tb testing.TB, p TerminalProfile, opts ...Option) *Terminal {
	tb.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		tb.Fatalf("termtest: pipe: %v", err)
	}
	t := &Terminal{Profile: p, tb: tb, in: r, out: w}
	for _, opt := range opts {
		opt(t)
	}
	tb.Cleanup(func() {
		t.wg.Wait()
		t.Hangup()
		r.Close()
	})
	return t
}

// Input is the read side of the terminal, where replies arrive.
func (t *Terminal) Input() *os.File { return t.in }

// Write receives a query, records it and schedules the replies.
func (t *Terminal) Write(p []byte) (int, error) {
	t.mu.Lock()
	t.written.Write(p)
	t.mu.Unlock()

	if reply := t.Answer(p); len(reply) > 0 {
		t.Send(reply)
	}
	return len(p), nil
}

// Written returns a copy of everything written to the terminal so far.
func (t *Terminal) Written() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return bytes.Clone(t.written.Bytes())
}

// Send delivers raw bytes on the input side, honouring the chunk size and
// delay options. Delivery is asynchronous when either option is set.
// A failed synchronous write is reported to the test.
func (t *Terminal) Send(b []byte) {
	if t.chunk <= 0 && t.delay <= 0 {
		if _, err := t.out.Write(b); err != nil {
			t.tb.Errorf("termtest: send %q: %v", b, err)
		}
		return
	}
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		size := t.chunk
		if size <= 0 {
			size = len(b)
		}
		for len(b) > 0 {
			n := min(size, len(b))
			time.Sleep(t.delay)
			if _, err := t.out.Write(b[:n]); err != nil {
				return
			}
			b = b[n:]
		}
	}()
}

// Hangup closes the input side's writer, so readers see end of file once
// pending replies are drained.
func (t *Terminal) Hangup() {
	t.closeOnce.Do(func() { t.out.Close() })
}

// Answer returns the bytes the terminal would send in response to p.
func (t *Terminal) Answer(p []byte) []byte {
	if !t.Profile.Passthrough {
		return t.answer(string(p), false)
	}
	var reply []byte
	s := string(p)
	for s != "" {
		i := strings.Index(s, "\x1bP")
		if i < 0 {
			reply = append(reply, t.answer(s, true)...)
			break
		}
		reply = append(reply, t.answer(s[:i], true)...)
		s = s[i+2:]
		j := strings.Index(s, "\x1b\\")
		if j < 0 {
			j = len(s)
		}
		reply = append(reply, t.answer(s[:j], false)...)
		s = strings.TrimPrefix(s[j:], "\x1b\\")
	}
	return reply
}

// requests lists the queries a simulated terminal recognizes, matched by
// prefix.
var requests = []string{
	"\x1b[5n",
	"\x1b[0c",
	"\x1b[c",
	"\x1b[>0q",
	"\x1b[>q",
	"\x1b]10;?",
	"\x1b]11;?",
	"\x1b_G",
}

// answer replies to every recognized request in s, in order. With muxOnly
// set, only the requests a multiplexer answers itself are handled.
func (t *Terminal) answer(s string, muxOnly bool) []byte {
	var reply []byte
	for {
		at, req := -1, ""
		for _, r := range requests {
			if i := strings.Index(s, r); i >= 0 && (at < 0 || i < at) {
				at, req = i, r
			}
		}
		if at < 0 {
			return reply
		}
		s = s[at+len(req):]
		if muxOnly && req != "\x1b[5n" && req != "\x1b[c" && req != "\x1b[0c" {
			continue
		}
		reply = append(reply, t.reply(req)...)
	}
}

func (t *Terminal) reply(req string) string {
	p := t.Profile
	st := "\x1b\\"
	if p.BELTerminator {
		st = "\x07"
	}
	switch req {
	case "\x1b[5n":
		if p.StatusReport {
			return "\x1b[0n"
		}
	case "\x1b[c", "\x1b[0c":
		if p.DA1 != "" {
			return "\x1b[" + p.DA1 + "c"
		}
	case "\x1b[>0q", "\x1b[>q":
		if p.Version != "" {
			return "\x1bP>|" + p.Version + "\x1b\\"
		}
	case "\x1b]10;?":
		if p.Foreground != "" {
			return "\x1b]10;" + p.Foreground + st
		}
	case "\x1b]11;?":
		if p.Background != "" {
			return "\x1b]11;" + p.Background + st
		}
	case "\x1b_G":
		if p.KittyGraphics {
			return "\x1b_Gi=31;OK\x1b\\"
		}
	}
	return ""
}
