package probe

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
	colorful "github.com/lucasb-eyer/go-colorful"

	"gitlab.com/tinyland/lab/xterm-query/pkg/xtquery"
)

// kittyGraphicsQuery asks about a 1x1 RGB image without displaying it, then
// requests primary device attributes. Terminals without kitty graphics skip
// the first part and answer only DA1.
var kittyGraphicsQuery = "\x1b_Gi=31,s=1,v=1,a=q,t=d,f=24;AAAA\x1b\\" + ansi.RequestPrimaryDeviceAttributes

// KittyGraphics reports whether the terminal implements the kitty graphics
// protocol.
func (p *Prober) KittyGraphics() (bool, error) {
	reply, err := p.query(NameKitty, kittyGraphicsQuery)
	if Absent(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return strings.HasPrefix(reply, "\x1b_Gi=31;OK\x1b"), nil
}

// Color is a terminal color as reported by OSC 10/11.
type Color struct {
	Hex  string         `json:"hex" yaml:"hex"`
	Dark bool           `json:"dark" yaml:"dark"`
	RGB  colorful.Color `json:"-" yaml:"-"`
}

// Background returns the default background color (OSC 11).
func (p *Prober) Background() (Color, error) {
	reply, err := p.queryOSC(NameBackground, ansi.RequestBackgroundColor)
	if err != nil {
		return Color{}, err
	}
	return parseColorReply(reply, "11")
}

// Foreground returns the default foreground color (OSC 10).
func (p *Prober) Foreground() (Color, error) {
	reply, err := p.queryOSC(NameForeground, ansi.RequestForegroundColor)
	if err != nil {
		return Color{}, err
	}
	return parseColorReply(reply, "10")
}

// parseColorReply parses the framed payload of an OSC color reply, e.g.
// "]11;rgb:1e1e/1e1e/2e2e".
func parseColorReply(payload, code string) (Color, error) {
	spec, ok := strings.CutPrefix(payload, "]"+code+";")
	if !ok {
		return Color{}, xtquery.WrongFormat("OSC %s reply %q", code, payload)
	}
	c, err := parseColorSpec(spec)
	if err != nil {
		return Color{}, err
	}
	l, _, _ := c.Lab()
	return Color{Hex: c.Hex(), Dark: l < 0.5, RGB: c}, nil
}

// parseColorSpec parses the X11 color forms terminals reply with:
// rgb:R/G/B with 1 to 4 hex digits per channel, and #rrggbb.
func parseColorSpec(spec string) (colorful.Color, error) {
	if strings.HasPrefix(spec, "#") {
		c, err := colorful.Hex(spec)
		if err != nil {
			return colorful.Color{}, xtquery.WrongFormat("color %q: %v", spec, err)
		}
		return c, nil
	}
	rest, ok := strings.CutPrefix(spec, "rgb:")
	if !ok {
		return colorful.Color{}, xtquery.WrongFormat("color %q is not rgb:", spec)
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 3 {
		return colorful.Color{}, xtquery.WrongFormat("color %q needs 3 channels", spec)
	}
	var ch [3]float64
	for i, part := range parts {
		if len(part) == 0 || len(part) > 4 {
			return colorful.Color{}, xtquery.WrongFormat("color %q channel %d", spec, i)
		}
		v, err := strconv.ParseUint(part, 16, 16)
		if err != nil {
			return colorful.Color{}, xtquery.WrongFormat("color %q channel %d: %v", spec, i, err)
		}
		ch[i] = float64(v) / float64(uint64(1)<<(4*len(part))-1)
	}
	return colorful.Color{R: ch[0], G: ch[1], B: ch[2]}, nil
}

// DeviceAttributes returns the parameters of the primary device attributes
// reply (DA1), e.g. [62 22] for ESC [ ? 62 ; 22 c.
func (p *Prober) DeviceAttributes() ([]int, error) {
	reply, err := p.query(NameDA1, ansi.RequestPrimaryDeviceAttributes)
	if err != nil {
		return nil, err
	}
	return parseDA1(reply)
}

func parseDA1(reply string) ([]int, error) {
	i := strings.Index(reply, "\x1b[?")
	if i < 0 {
		return nil, xtquery.WrongFormat("DA1 reply %q", reply)
	}
	body := reply[i+3:]
	j := strings.IndexByte(body, 'c')
	if j < 0 {
		return nil, xtquery.WrongFormat("DA1 reply %q is not terminated", reply)
	}
	var attrs []int
	for _, f := range strings.Split(body[:j], ";") {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, xtquery.WrongFormat("DA1 parameter %q", f)
		}
		attrs = append(attrs, n)
	}
	return attrs, nil
}

// Version returns the terminal's name and version as reported by XTVERSION,
// e.g. "XTerm(390)" or "kitty(0.35.2)".
func (p *Prober) Version() (string, error) {
	reply, err := p.queryOSC(NameVersion, ansi.RequestXTVersion)
	if err != nil {
		return "", err
	}
	v, ok := strings.CutPrefix(reply, "P>|")
	if !ok {
		return "", xtquery.WrongFormat("XTVERSION reply %q", reply)
	}
	return v, nil
}
