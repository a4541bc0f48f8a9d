// Package raster provides the pixel buffer and colour primitives that the
// drawing tools operate on.
package raster

import (
	"encoding/hex"
	"errors"
	"fmt"
	"image/color"
	"strings"
)

// ErrInvalidColor is returned when a colour string cannot be parsed.
var ErrInvalidColor = errors.New("invalid colour")

// Color is a non-premultiplied RGBA colour with 8 bits per channel.
type Color struct {
	R, G, B, A uint8
}

// Common colours
var (
	Transparent = Color{0, 0, 0, 0}
	Black       = Color{0, 0, 0, 255}
	White       = Color{255, 255, 255, 255}
)

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return c.NRGBA().RGBA()
}

// NRGBA converts c to the standard library representation.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// FromColor converts any color.Color to Color.
func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B, A: n.A}
}

// ParseHex parses "#RRGGBB", "#RRGGBBAA" and the short forms "#RGB" and
// "#RGBA". The leading '#' is optional and case is ignored. Colours without
// an alpha component are opaque.
func ParseHex(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")

	switch len(h) {
	case 3, 4:
		var long strings.Builder
		for i := 0; i < len(h); i++ {
			long.WriteByte(h[i])
			long.WriteByte(h[i])
		}
		h = long.String()
	case 6, 8:
	default:
		return Color{}, fmt.Errorf("%w %q: want #RGB, #RGBA, #RRGGBB or #RRGGBBAA", ErrInvalidColor, s)
	}

	b, err := hex.DecodeString(h)
	if err != nil {
		return Color{}, fmt.Errorf("%w %q: %v", ErrInvalidColor, s, err)
	}
	c := Color{R: b[0], G: b[1], B: b[2], A: 255}
	if len(b) == 4 {
		c.A = b[3]
	}
	return c, nil
}

// MustParseHex is like ParseHex but panics on error. Intended for constants.
func MustParseHex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex formats c as lowercase "#rrggbb" when opaque, "#rrggbbaa" otherwise.
func (c Color) Hex() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// String implements fmt.Stringer.
func (c Color) String() string {
	return c.Hex()
}

// NormalizeHex returns the canonical form of a hex colour string.
func NormalizeHex(s string) (string, error) {
	c, err := ParseHex(s)
	if err != nil {
		return "", err
	}
	return c.Hex(), nil
}

// Matches reports whether every channel of c is within tolerance of o.
// The comparison is inclusive: a difference equal to tolerance matches.
func (c Color) Matches(o Color, tolerance int) bool {
	return channelWithin(c.R, o.R, tolerance) &&
		channelWithin(c.G, o.G, tolerance) &&
		channelWithin(c.B, o.B, tolerance) &&
		channelWithin(c.A, o.A, tolerance)
}

func channelWithin(a, b uint8, tolerance int) bool {
	d := int(a) - int(b)
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}

// Over composites c over bg. The result is opaque when bg is, which is what
// hosts that can only show opaque colours rely on.
func (c Color) Over(bg Color) Color {
	if c.A == 255 {
		return c
	}
	// Weights in units of 1/255².
	fw := int(c.A) * 255
	bw := int(bg.A) * (255 - int(c.A))
	total := fw + bw
	if total == 0 {
		return Transparent
	}
	mix := func(f, b uint8) uint8 {
		return uint8((int(f)*fw + int(b)*bw + total/2) / total)
	}
	return Color{R: mix(c.R, bg.R), G: mix(c.G, bg.G), B: mix(c.B, bg.B), A: uint8((total + 127) / 255)}
}
