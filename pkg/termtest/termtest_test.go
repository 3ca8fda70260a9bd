package termtest

import (
	"fmt"
	"io"
	"strings"
	"testing"
	"time"
)

// --- Profile Tests ---

func TestProfiles_NamesAndTermSet(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range Profiles() {
		if p.Name == "" || p.Term == "" {
			t.Errorf("profile %+v has empty Name or Term", p)
		}
		if seen[p.Name] {
			t.Errorf("duplicate profile name %q", p.Name)
		}
		seen[p.Name] = true
	}
}

func TestProfileByName(t *testing.T) {
	p := ProfileByName("kitty")
	if p == nil {
		t.Fatal("kitty profile not found")
	}
	if !p.KittyGraphics {
		t.Error("kitty.KittyGraphics = false, want true")
	}
	if ProfileByName("nonexistent") != nil {
		t.Error("ProfileByName(nonexistent) != nil")
	}
}

// --- Answer Tests ---

func TestAnswer(t *testing.T) {
	cases := []struct {
		profile string
		query   string
		want    string
	}{
		{"xterm", "\x1b]11;?\x07\x1b[5n", "\x1b]11;rgb:ffff/ffff/dddd\x07\x1b[0n"},
		{"kitty", "\x1b]10;?\x1b\\\x1b[5n", "\x1b]10;rgb:cdcd/d6d6/f4f4\x1b\\\x1b[0n"},
		{"kitty", "\x1b_Gi=31,s=1,v=1,a=q,t=d,f=24;AAAA\x1b\\\x1b[c", "\x1b_Gi=31;OK\x1b\\\x1b[?62;52c"},
		{"xterm", "\x1b_Gi=31,a=q;AAAA\x1b\\\x1b[c", "\x1b[?64;1;2;6;9;15;16;17;18;21;22;28c"},
		{"xterm", "\x1b[>0q\x1b[5n", "\x1bP>|XTerm(390)\x1b\\\x1b[0n"},
		{"vt100", "\x1b]11;?\x07\x1b[5n", "\x1b[0n"},
		{"silent", "\x1b]11;?\x07\x1b[5n", ""},
		{"screen", "\x1b]11;?\x07\x1b[5n", "\x1b[0n"},
		{"screen", "\x1bP\x1b]11;?\x07\x1b\\\x1b[5n", "\x1b]11;rgb:ffff/ffff/dddd\x07\x1b[0n"},
		{"xterm", "plain text", ""},
	}
	for _, tc := range cases {
		p := ProfileByName(tc.profile)
		if p == nil {
			t.Fatalf("profile %q not found", tc.profile)
		}
		term := &Terminal{Profile: *p}
		if got := string(term.Answer([]byte(tc.query))); got != tc.want {
			t.Errorf("%s.Answer(%q) = %q, want %q", tc.profile, tc.query, got, tc.want)
		}
	}
}

// --- Terminal Tests ---

func TestTerminal_WriteRecordsAndReplies(t *testing.T) {
	term := New(t, *ProfileByName("xterm"))
	q := []byte("\x1b[5n")
	if n, err := term.Write(q); err != nil || n != len(q) {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	if got := string(term.Written()); got != "\x1b[5n" {
		t.Errorf("Written() = %q, want %q", got, "\x1b[5n")
	}

	buf := make([]byte, 16)
	n, err := term.Input().Read(buf)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if got := string(buf[:n]); got != "\x1b[0n" {
		t.Errorf("reply = %q, want %q", got, "\x1b[0n")
	}
}

func TestTerminal_ChunkedDelivery(t *testing.T) {
	term := New(t, *ProfileByName("xterm"), WithChunkSize(1), WithDelay(time.Millisecond))
	term.Send([]byte("abc"))
	term.wg.Wait()
	term.Hangup()

	got, err := io.ReadAll(term.Input())
	if err != nil {
		t.Fatalf("ReadAll() error: %v", err)
	}
	if string(got) != "abc" {
		t.Errorf("delivered %q, want %q", got, "abc")
	}
}

// errorRecorder captures Errorf calls and forwards everything else.
type errorRecorder struct {
	testing.TB
	errs []string
}

func (r *errorRecorder) Errorf(format string, args ...any) {
	r.errs = append(r.errs, fmt.Sprintf(format, args...))
}

func TestTerminal_SendAfterHangupReportsError(t *testing.T) {
	rec := &errorRecorder{TB: t}
	term := New(rec, *ProfileByName("xterm"))
	term.Hangup()

	term.Send([]byte("\x1b[0n"))
	if len(rec.errs) != 1 {
		t.Fatalf("Errorf called %d times, want 1: %q", len(rec.errs), rec.errs)
	}
	if !strings.Contains(rec.errs[0], "termtest: send") {
		t.Errorf("error = %q, want a termtest send failure", rec.errs[0])
	}
}
