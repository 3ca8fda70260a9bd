package probe

import (
	"errors"
	"slices"
	"testing"
	"time"

	"gitlab.com/tinyland/lab/xterm-query/pkg/termtest"
	"gitlab.com/tinyland/lab/xterm-query/pkg/xtquery"
)

// newProber returns a Prober talking to a simulated terminal with the named
// profile.
func newProber(t *testing.T, profile string) *Prober {
	t.Helper()
	p := termtest.ProfileByName(profile)
	if p == nil {
		t.Fatalf("profile %q not found", profile)
	}
	term := termtest.New(t, *p)
	e := xtquery.New(term.Input(), term, xtquery.WithTerm(p.Term))
	return New(e, 30*time.Millisecond, nil)
}

// --- Kitty Graphics Tests ---

func TestKittyGraphics(t *testing.T) {
	cases := []struct {
		profile string
		want    bool
	}{
		{"kitty", true},
		{"ghostty", true},
		{"xterm", false},
		{"vt100", false},
		{"silent", false},
	}
	for _, tc := range cases {
		t.Run(tc.profile, func(t *testing.T) {
			got, err := newProber(t, tc.profile).KittyGraphics()
			if err != nil {
				t.Fatalf("KittyGraphics() error: %v", err)
			}
			if got != tc.want {
				t.Errorf("KittyGraphics() = %v, want %v", got, tc.want)
			}
		})
	}
}

// --- Color Tests ---

func TestBackground(t *testing.T) {
	cases := []struct {
		profile string
		hex     string
		dark    bool
	}{
		{"xterm", "#ffffdd", false},
		{"kitty", "#1e1e2e", true},
		{"screen", "#ffffdd", false},
	}
	for _, tc := range cases {
		t.Run(tc.profile, func(t *testing.T) {
			c, err := newProber(t, tc.profile).Background()
			if err != nil {
				t.Fatalf("Background() error: %v", err)
			}
			if c.Hex != tc.hex || c.Dark != tc.dark {
				t.Errorf("Background() = %s dark=%v, want %s dark=%v", c.Hex, c.Dark, tc.hex, tc.dark)
			}
		})
	}
}

func TestBackground_Unanswered(t *testing.T) {
	_, err := newProber(t, "vt100").Background()
	if !Absent(err) {
		t.Fatalf("Background() on vt100 error = %v, want an absent error", err)
	}
	if !errors.Is(err, xtquery.ErrNotOSCResponse) {
		t.Errorf("Background() on vt100 error = %v, want ErrNotOSCResponse", err)
	}
}

func TestForeground(t *testing.T) {
	c, err := newProber(t, "ghostty").Foreground()
	if err != nil {
		t.Fatalf("Foreground() error: %v", err)
	}
	if c.Hex != "#ffffff" || c.Dark {
		t.Errorf("Foreground() = %+v, want light #ffffff", c)
	}
}

func TestParseColorReply(t *testing.T) {
	cases := []struct {
		payload string
		hex     string
		wantErr bool
	}{
		{"]11;rgb:0000/0000/0000", "#000000", false},
		{"]11;rgb:ffff/8080/0000", "#ff8000", false},
		{"]11;rgb:f/0/8", "#ff0088", false},
		{"]11;rgb:ff/00/80", "#ff0080", false},
		{"]11;#102030", "#102030", false},
		{"]10;rgb:0/0/0", "", true},
		{"]11;rgba:0/0/0/0", "", true},
		{"]11;rgb:0/0", "", true},
		{"]11;rgb:00000/0/0", "", true},
		{"]11;rgb:zz/0/0", "", true},
		{"]11;#zzz", "", true},
	}
	for _, tc := range cases {
		c, err := parseColorReply(tc.payload, "11")
		if tc.wantErr {
			if !errors.Is(err, xtquery.ErrWrongFormat) {
				t.Errorf("parseColorReply(%q) error = %v, want ErrWrongFormat", tc.payload, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseColorReply(%q) error: %v", tc.payload, err)
			continue
		}
		if c.Hex != tc.hex {
			t.Errorf("parseColorReply(%q) = %s, want %s", tc.payload, c.Hex, tc.hex)
		}
	}
}

// --- Device Attributes Tests ---

func TestDeviceAttributes(t *testing.T) {
	got, err := newProber(t, "ghostty").DeviceAttributes()
	if err != nil {
		t.Fatalf("DeviceAttributes() error: %v", err)
	}
	if want := []int{62, 22}; !slices.Equal(got, want) {
		t.Errorf("DeviceAttributes() = %v, want %v", got, want)
	}
}

func TestDeviceAttributes_Silent(t *testing.T) {
	if _, err := newProber(t, "silent").DeviceAttributes(); !errors.Is(err, xtquery.ErrTimeout) {
		t.Fatalf("DeviceAttributes() on silent terminal error = %v, want ErrTimeout", err)
	}
}

func TestParseDA1(t *testing.T) {
	cases := []struct {
		reply   string
		want    []int
		wantErr bool
	}{
		{"\x1b[?62;22c", []int{62, 22}, false},
		{"noise\x1b[?1;2c", []int{1, 2}, false},
		{"\x1b[?6c", []int{6}, false},
		{"\x1b[0n", nil, true},
		{"\x1b[?62;22", nil, true},
		{"\x1b[?62;x;22c", nil, true},
	}
	for _, tc := range cases {
		got, err := parseDA1(tc.reply)
		if tc.wantErr {
			if !errors.Is(err, xtquery.ErrWrongFormat) {
				t.Errorf("parseDA1(%q) error = %v, want ErrWrongFormat", tc.reply, err)
			}
			continue
		}
		if err != nil || !slices.Equal(got, tc.want) {
			t.Errorf("parseDA1(%q) = %v, %v; want %v", tc.reply, got, err, tc.want)
		}
	}
}

// --- Version Tests ---

func TestVersion(t *testing.T) {
	cases := []struct {
		profile string
		want    string
	}{
		{"xterm", "XTerm(390)"},
		{"kitty", "kitty(0.35.2)"},
	}
	for _, tc := range cases {
		got, err := newProber(t, tc.profile).Version()
		if err != nil {
			t.Fatalf("%s: Version() error: %v", tc.profile, err)
		}
		if got != tc.want {
			t.Errorf("%s: Version() = %q, want %q", tc.profile, got, tc.want)
		}
	}
}

// --- Detect Tests ---

func TestDetect_All(t *testing.T) {
	caps, err := newProber(t, "kitty").Detect()
	if err != nil {
		t.Fatalf("Detect() error: %v", err)
	}
	if !caps.KittyGraphics {
		t.Error("KittyGraphics = false, want true")
	}
	if caps.Background == nil || caps.Background.Hex != "#1e1e2e" {
		t.Errorf("Background = %+v, want #1e1e2e", caps.Background)
	}
	if !caps.DarkBackground() {
		t.Error("DarkBackground() = false, want true")
	}
	if caps.Foreground == nil {
		t.Error("Foreground = nil, want a color")
	}
	if !slices.Equal(caps.DeviceAttributes, []int{62, 52}) {
		t.Errorf("DeviceAttributes = %v, want [62 52]", caps.DeviceAttributes)
	}
	if caps.Version != "kitty(0.35.2)" {
		t.Errorf("Version = %q, want kitty(0.35.2)", caps.Version)
	}
	if len(caps.Errors) != 0 {
		t.Errorf("Errors = %v, want none", caps.Errors)
	}
}

func TestDetect_Unanswered(t *testing.T) {
	caps, err := newProber(t, "vt100").Detect()
	if err != nil {
		t.Fatalf("Detect() error: %v", err)
	}
	if caps.KittyGraphics || caps.Background != nil || caps.Foreground != nil || caps.Version != "" {
		t.Errorf("Detect() on vt100 = %+v, want only device attributes", caps)
	}
	if !slices.Equal(caps.DeviceAttributes, []int{1, 2}) {
		t.Errorf("DeviceAttributes = %v, want [1 2]", caps.DeviceAttributes)
	}
	if len(caps.Errors) != 0 {
		t.Errorf("Errors = %v, want none (unanswered is not an error)", caps.Errors)
	}
	if caps.DarkBackground() {
		t.Error("DarkBackground() = true without a background")
	}
}

func TestDetect_Subset(t *testing.T) {
	caps, err := newProber(t, "xterm").Detect(NameVersion)
	if err != nil {
		t.Fatalf("Detect(version) error: %v", err)
	}
	if caps.Version != "XTerm(390)" || caps.Background != nil {
		t.Errorf("Detect(version) = %+v", caps)
	}
}

func TestDetect_UnknownName(t *testing.T) {
	if _, err := newProber(t, "xterm").Detect("sixel"); err == nil {
		t.Fatal("Detect(sixel) succeeded, want error")
	}
}

// fakeQuerier answers every query with a fixed reply and error.
type fakeQuerier struct {
	reply string
	err   error
}

func (f fakeQuerier) Query(string, time.Duration) (string, error)    { return f.reply, f.err }
func (f fakeQuerier) QueryOSC(string, time.Duration) (string, error) { return f.reply, f.err }

func TestDetect_RecordsHardErrors(t *testing.T) {
	p := New(fakeQuerier{reply: "garbage"}, 0, nil)
	caps, err := p.Detect(NameBackground, NameDA1, NameKitty)
	if err != nil {
		t.Fatalf("Detect() error: %v", err)
	}
	for _, name := range []string{NameBackground, NameDA1} {
		if _, ok := caps.Errors[name]; !ok {
			t.Errorf("Errors[%q] missing, got %v", name, caps.Errors)
		}
	}
	if _, ok := caps.Errors[NameKitty]; ok {
		t.Errorf("kitty garbage reply recorded as error: %v", caps.Errors)
	}
}

func TestNew_Defaults(t *testing.T) {
	p := New(fakeQuerier{}, 0, nil)
	if p.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", p.timeout, DefaultTimeout)
	}
	if p.logger == nil {
		t.Error("logger = nil, want a discarding logger")
	}
}
