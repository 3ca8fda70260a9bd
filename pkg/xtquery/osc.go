package xtquery

import (
	"bytes"
	"strconv"
	"time"

	"gitlab.com/tinyland/lab/xterm-query/pkg/terminal"
)

const (
	esc = 0x1b
	bel = 0x07
)

// statusReport is the Device Status Report request appended after every OSC
// query. Nearly every terminal answers it with ESC [ 0 n, so its reply
// arriving without a framed OSC reply before it means the query itself was
// not understood.
const statusReport = "\x1b[5n"

// QueryOSC sends an OSC query with a status-report fence and returns the
// framed payload as text.
func (e *Engine) QueryOSC(query string, timeout time.Duration) (string, error) {
	var buf [DefaultBufferSize]byte
	payload, err := e.QueryOSCBuffer(query, buf[:], timeout)
	if err != nil {
		return "", err
	}
	return toText(payload)
}

// QueryOSCBuffer sends an OSC query followed by a status-report fence and
// reads into buf until the reply is framed. It returns the bytes between the
// opening ESC and the first ESC or BEL after it, as a sub-slice of buf.
//
// The timeout bounds the whole exchange: every wait uses what is left of it.
// Dumb or unset terminals fail with ErrUnsupported before anything is
// written, and screen sessions get the query wrapped in a DCS passthrough.
func (e *Engine) QueryOSCBuffer(query string, buf []byte, timeout time.Duration) ([]byte, error) {
	id := terminal.Identity(e.identity())
	if id.Dumb() {
		return nil, unsupported("terminal " + strconv.Quote(string(id)) + " cannot answer queries")
	}
	if len(buf) == 0 {
		return nil, &Error{Kind: KindBufferOverflow, Msg: "empty buffer"}
	}
	if err := e.send(oscRequest(query, id)); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(timeout)
	frame := oscFrame{start: -1, end: -1}
	filled := 0
	for {
		ready, err := e.wait(time.Until(deadline))
		if err != nil {
			return nil, err
		}
		if ready == 0 {
			return nil, &Error{Kind: KindTimeout}
		}
		n, err := e.read(buf[filled:])
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, &Error{Kind: KindNotOSCResponse}
		}
		payload, done, err := frame.scan(buf[:filled+n], filled)
		filled += n
		if done {
			if err == nil {
				e.logger.Debug("osc frame resolved", "start", frame.start, "end", frame.end)
			}
			return payload, err
		}
		if filled == len(buf) {
			return nil, &Error{Kind: KindBufferOverflow, Msg: strconv.Itoa(len(buf)) + " bytes without a complete frame"}
		}
	}
}

// oscRequest builds the bytes written for an OSC query.
func oscRequest(query string, id terminal.Identity) []byte {
	var b bytes.Buffer
	b.Grow(len(query) + len(statusReport) + 4)
	if id.Screen() {
		b.WriteString("\x1bP")
		b.WriteString(query)
		b.WriteString("\x1b\\")
	} else {
		b.WriteString(query)
	}
	b.WriteString(statusReport)
	return b.Bytes()
}

// oscFrame tracks the position of an OSC reply in a buffer that fills
// across several reads. Positions are -1 until seen.
type oscFrame struct {
	start int // first ESC
	end   int // first ESC or BEL after start
}

// scan examines buf[from:]. It reports done once an 'n' follows the start of
// a frame: with the payload if a terminator was seen first, with
// ErrNotOSCResponse otherwise. Any 'n' counts, including one inside a
// payload.
func (f *oscFrame) scan(buf []byte, from int) (payload []byte, done bool, err error) {
	for i := from; i < len(buf); i++ {
		c := buf[i]
		switch {
		case f.start < 0:
			if c == esc {
				f.start = i
			}
		case f.end < 0 && (c == esc || c == bel):
			f.end = i
		case c == 'n':
			if f.end < 0 {
				return nil, true, &Error{Kind: KindNotOSCResponse}
			}
			return buf[f.start+1 : f.end], true, nil
		}
	}
	return nil, false, nil
}
