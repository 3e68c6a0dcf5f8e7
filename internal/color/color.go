// Package color implements the integer colorimetry used to tint terminal
// backgrounds. Hue is carried in millidegrees [0, 360000), saturation and
// lightness in thousandths [0, 1000]. No floating point is used anywhere so
// the same inputs always produce byte-identical hex strings.
package color

import (
	"errors"
	"fmt"
	"strings"
)

// ErrFormat is returned for malformed hex input. The accompanying value is
// always black so callers can keep going.
var ErrFormat = errors.New("malformed hex color")

const (
	hueScale  = 360000
	unitScale = 1000
	black     = "#000000"
)

// RGB is an sRGB triple with channels in 0..255.
type RGB struct {
	R, G, B int
}

// HSL is a fixed-point HSL triple.
type HSL struct {
	H, S, L int
}

// HexToRGB parses #RGB or #RRGGBB, with or without the leading '#', in any
// case. Three-digit input is expanded by digit duplication.
func HexToRGB(s string) (RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return RGB{}, fmt.Errorf("%w: %q", ErrFormat, s)
	}
	var ch [3]int
	for i := range ch {
		hi, ok1 := hexDigit(h[2*i])
		lo, ok2 := hexDigit(h[2*i+1])
		if !ok1 || !ok2 {
			return RGB{}, fmt.Errorf("%w: %q", ErrFormat, s)
		}
		ch[i] = hi<<4 | lo
	}
	return RGB{ch[0], ch[1], ch[2]}, nil
}

func hexDigit(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	}
	return 0, false
}

// RGBToHex clamps each channel to 0..255 and formats it as uppercase #RRGGBB.
func RGBToHex(r, g, b int) string {
	return fmt.Sprintf("#%02X%02X%02X", clamp(r, 0, 255), clamp(g, 0, 255), clamp(b, 0, 255))
}

// Hex formats c as uppercase #RRGGBB.
func (c RGB) Hex() string { return RGBToHex(c.R, c.G, c.B) }

// Normalize returns the canonical uppercase six-digit form of a hex color.
func Normalize(s string) (string, error) {
	c, err := HexToRGB(s)
	if err != nil {
		return black, err
	}
	return c.Hex(), nil
}

// RGBToHSL converts an RGB triple. Achromatic input reports H=0 and S=0.
func RGBToHSL(r, g, b int) HSL {
	r, g, b = clamp(r, 0, 255), clamp(g, 0, 255), clamp(b, 0, 255)
	hi := max(r, g, b)
	lo := min(r, g, b)
	sum := hi + lo
	l := divRound(sum*unitScale, 2*255)
	if hi == lo {
		return HSL{0, 0, l}
	}

	d := hi - lo
	var s int
	if l > 500 {
		s = divRound(d*unitScale, 2*255-sum)
	} else {
		s = divRound(d*unitScale, sum)
	}

	var h int
	switch hi {
	case r:
		h = divRound(60000*(g-b), d)
	case g:
		h = divRound(60000*(b-r), d) + 120000
	default:
		h = divRound(60000*(r-g), d) + 240000
	}
	return HSL{wrapHue(h), clamp(s, 0, unitScale), clamp(l, 0, unitScale)}
}

// HSLToRGB is the inverse of RGBToHSL, accurate to within a couple of units
// per channel.
func HSLToRGB(h, s, l int) RGB {
	h = wrapHue(h)
	s = clamp(s, 0, unitScale)
	l = clamp(l, 0, unitScale)

	c := (unitScale - abs(2*l-unitScale)) * s / unitScale
	x := c * (60000 - abs(h%120000-60000)) / 60000
	m := l - c/2

	var r1, g1, b1 int
	switch h / 60000 {
	case 0:
		r1, g1, b1 = c, x, 0
	case 1:
		r1, g1, b1 = x, c, 0
	case 2:
		r1, g1, b1 = 0, c, x
	case 3:
		r1, g1, b1 = 0, x, c
	case 4:
		r1, g1, b1 = x, 0, c
	default:
		r1, g1, b1 = c, 0, x
	}
	return RGB{toByte(r1 + m), toByte(g1 + m), toByte(b1 + m)}
}

// HSL converts c to HSL.
func (c RGB) HSL() HSL { return RGBToHSL(c.R, c.G, c.B) }

// RGB converts c back to RGB.
func (c HSL) RGB() RGB { return HSLToRGB(c.H, c.S, c.L) }

// IsDark weights the channels 0.299/0.587/0.114 and compares against half
// scale. Pure red is dark, pure green is light.
func (c RGB) IsDark() bool {
	return 299*c.R+587*c.G+114*c.B < 127500
}

// IsDarkColor classifies a hex color. Malformed input is treated as black
// and therefore dark.
func IsDarkColor(hex string) bool {
	c, _ := HexToRGB(hex)
	return c.IsDark()
}

// ShiftHue rotates the hue by degrees, keeping saturation and lightness.
func ShiftHue(hex string, degrees int) (string, error) {
	c, err := HexToRGB(hex)
	if err != nil {
		return black, err
	}
	hsl := c.HSL()
	hsl.H = wrapHue(hsl.H + degrees*1000)
	return hsl.RGB().Hex(), nil
}

// InterpolateColor blends a and b per RGB channel. t runs from 0 (a) to 1000
// (b); halves round away from zero.
func InterpolateColor(a, b string, t int) (string, error) {
	ca, err := HexToRGB(a)
	if err != nil {
		return black, err
	}
	cb, err := HexToRGB(b)
	if err != nil {
		return black, err
	}
	t = clamp(t, 0, unitScale)
	return RGBToHex(
		ca.R+divRound((cb.R-ca.R)*t, unitScale),
		ca.G+divRound((cb.G-ca.G)*t, unitScale),
		ca.B+divRound((cb.B-ca.B)*t, unitScale),
	), nil
}

// InterpolateHSL blends a and b in HSL space along the shorter hue arc.
// An achromatic endpoint borrows the other endpoint's hue.
func InterpolateHSL(a, b string, t int) (string, error) {
	ca, err := HexToRGB(a)
	if err != nil {
		return black, err
	}
	cb, err := HexToRGB(b)
	if err != nil {
		return black, err
	}
	t = clamp(t, 0, unitScale)
	if t == 0 {
		return ca.Hex(), nil
	}
	if t == unitScale {
		return cb.Hex(), nil
	}

	ha, hb := ca.HSL(), cb.HSL()
	if ha.S == 0 {
		ha.H = hb.H
	}
	if hb.S == 0 {
		hb.H = ha.H
	}
	dh := hb.H - ha.H
	if dh > hueScale/2 {
		dh -= hueScale
	} else if dh < -hueScale/2 {
		dh += hueScale
	}
	out := HSL{
		H: wrapHue(ha.H + divRound(dh*t, unitScale)),
		S: ha.S + divRound((hb.S-ha.S)*t, unitScale),
		L: ha.L + divRound((hb.L-ha.L)*t, unitScale),
	}
	return out.RGB().Hex(), nil
}

// AdjustLightness adds delta (thousandths) to L, clamped to [0, 1000].
func AdjustLightness(hex string, delta int) (string, error) {
	c, err := HexToRGB(hex)
	if err != nil {
		return black, err
	}
	hsl := c.HSL()
	hsl.L = clamp(hsl.L+delta, 0, unitScale)
	return hsl.RGB().Hex(), nil
}

// AdjustSaturation adds delta (thousandths) to S, clamped to [0, 1000].
func AdjustSaturation(hex string, delta int) (string, error) {
	c, err := HexToRGB(hex)
	if err != nil {
		return black, err
	}
	hsl := c.HSL()
	hsl.S = clamp(hsl.S+delta, 0, unitScale)
	return hsl.RGB().Hex(), nil
}

// divRound divides with halves rounded away from zero. b must be positive.
func divRound(a, b int) int {
	if a < 0 {
		return -((-a + b/2) / b)
	}
	return (a + b/2) / b
}

func toByte(v int) int {
	return clamp(divRound(v*255, unitScale), 0, 255)
}

func wrapHue(h int) int {
	h %= hueScale
	if h < 0 {
		h += hueScale
	}
	return h
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
