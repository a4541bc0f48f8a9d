// Package palette provides colour swatch lists for the drawing hosts.
package palette

import (
	"fmt"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ha1tch/paintkit/pkg/raster"
)

// Palette is an ordered list of swatches.
type Palette []raster.Color

// Default returns the standard twelve swatches.
func Default() Palette {
	return Palette{
		raster.Black,
		raster.White,
		{R: 255, A: 255},                 // red
		{G: 255, A: 255},                 // green
		{B: 255, A: 255},                 // blue
		{R: 255, G: 255, A: 255},         // yellow
		{G: 255, B: 255, A: 255},         // cyan
		{R: 255, B: 255, A: 255},         // magenta
		{R: 255, G: 165, A: 255},         // orange
		{R: 128, B: 128, A: 255},         // purple
		{R: 139, G: 69, B: 19, A: 255},   // brown
		{R: 255, G: 192, B: 203, A: 255}, // pink
	}
}

// HueRamp returns n opaque colours with evenly spaced hues at the given
// saturation and value, both in [0, 1].
func HueRamp(n int, s, v float64) Palette {
	if n <= 0 {
		return nil
	}
	s = math.Max(0, math.Min(1, s))
	v = math.Max(0, math.Min(1, v))
	p := make(Palette, n)
	for i := range p {
		r, g, b := colorful.Hsv(360*float64(i)/float64(n), s, v).RGB255()
		p[i] = raster.Color{R: r, G: g, B: b, A: 255}
	}
	return p
}

// Parse builds a palette from hex strings.
func Parse(list []string) (Palette, error) {
	p := make(Palette, 0, len(list))
	for i, s := range list {
		c, err := raster.ParseHex(s)
		if err != nil {
			return nil, fmt.Errorf("swatch %d: %w", i+1, err)
		}
		p = append(p, c)
	}
	return p, nil
}

// Hex returns the swatches as normalised hex strings.
func (p Palette) Hex() []string {
	out := make([]string, len(p))
	for i, c := range p {
		out[i] = c.Hex()
	}
	return out
}

// At returns swatch i, wrapping around the palette length. An empty palette
// yields black.
func (p Palette) At(i int) raster.Color {
	if len(p) == 0 {
		return raster.Black
	}
	i %= len(p)
	if i < 0 {
		i += len(p)
	}
	return p[i]
}

// Nearest returns the index of the swatch closest to c in RGB space, or -1
// for an empty palette. Alpha is ignored.
func (p Palette) Nearest(c raster.Color) int {
	best, bestDist := -1, math.Inf(1)
	want := toColorful(c)
	for i, sw := range p {
		d := want.DistanceRgb(toColorful(sw))
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// String lists the swatches.
func (p Palette) String() string {
	return strings.Join(p.Hex(), " ")
}

func toColorful(c raster.Color) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}
