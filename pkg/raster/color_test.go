package raster

import (
	"errors"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"#ff0000", Color{255, 0, 0, 255}},
		{"#FF0000", Color{255, 0, 0, 255}},
		{"00ff00", Color{0, 255, 0, 255}},
		{"#0000ff80", Color{0, 0, 255, 128}},
		{"#c81fd8", Color{200, 31, 216, 255}},
		{"#abc", Color{0xaa, 0xbb, 0xcc, 255}},
		{"#abcd", Color{0xaa, 0xbb, 0xcc, 0xdd}},
		{"  #000000  ", Color{0, 0, 0, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseHexInvalid(t *testing.T) {
	for _, in := range []string{"", "#", "#12", "#12345", "#1234567", "#gg0000", "red", "#ff0000ff00"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseHex(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidColor), "error %v should wrap ErrInvalidColor", err)
		})
	}
}

func TestMustParseHexPanics(t *testing.T) {
	assert.Panics(t, func() { MustParseHex("nope") })
	assert.Equal(t, White, MustParseHex("#fff"))
}

func TestHexFormatting(t *testing.T) {
	assert.Equal(t, "#ff0000", Color{255, 0, 0, 255}.Hex())
	assert.Equal(t, "#00000000", Transparent.Hex())
	assert.Equal(t, "#0a0b0c0d", Color{10, 11, 12, 13}.Hex())
}

func TestHexRoundTrip(t *testing.T) {
	inputs := []string{"#FFAA00", "#ffaa00ff", "#12345678", "#000", "#fff8", "#C81FD8"}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			c, err := ParseHex(in)
			require.NoError(t, err)
			norm, err := NormalizeHex(in)
			require.NoError(t, err)
			assert.Equal(t, norm, c.Hex())

			back, err := ParseHex(c.Hex())
			require.NoError(t, err)
			assert.Equal(t, c, back)
		})
	}

	// every alpha value survives formatting
	for a := 0; a < 256; a++ {
		c := Color{1, 2, 3, uint8(a)}
		back, err := ParseHex(c.Hex())
		require.NoError(t, err)
		require.Equal(t, c, back)
	}
}

func TestMatchesToleranceBoundary(t *testing.T) {
	target := Color{100, 100, 100, 255}

	assert.True(t, Color{130, 100, 100, 255}.Matches(target, 30))
	assert.False(t, Color{131, 100, 100, 255}.Matches(target, 30))
	assert.True(t, Color{70, 70, 70, 255}.Matches(target, 30))
	assert.False(t, Color{100, 100, 100, 224}.Matches(target, 30))
	assert.True(t, target.Matches(target, 0))
	assert.False(t, Color{101, 100, 100, 255}.Matches(target, 0))
}

func TestColorInterop(t *testing.T) {
	c := Color{10, 20, 30, 255}
	assert.Equal(t, color.NRGBA{10, 20, 30, 255}, c.NRGBA())
	assert.Equal(t, c, FromColor(color.RGBA{10, 20, 30, 255}))
	assert.Equal(t, Transparent, FromColor(color.RGBA{}))
}

func TestOver(t *testing.T) {
	assert.Equal(t, White, Transparent.Over(White))
	assert.Equal(t, Black, Black.Over(White))
	assert.Equal(t, Color{128, 128, 128, 255}, Color{0, 0, 0, 127}.Over(White))
}

func TestOverTranslucentBackground(t *testing.T) {
	bg := Color{0, 0, 255, 128}
	tests := []struct {
		name string
		c    Color
		want Color
	}{
		{"transparent shows background", Transparent, bg},
		{"opaque hides background", Color{255, 0, 0, 255}, Color{255, 0, 0, 255}},
		{"half over half", Color{255, 0, 0, 128}, Color{170, 0, 85, 192}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.Over(bg))
		})
	}
	assert.Equal(t, Transparent, Transparent.Over(Transparent))
}
