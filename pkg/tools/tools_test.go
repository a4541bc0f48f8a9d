package tools

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/paintkit/pkg/floodfill"
	"github.com/ha1tch/paintkit/pkg/raster"
)

var red = raster.Color{R: 255, A: 255}

func whiteBuffer(w, h int) *raster.Buffer {
	b := raster.NewBuffer(w, h)
	b.Fill(raster.White)
	return b
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"brush", KindBrush},
		{"Eraser", KindEraser},
		{"fill", KindFill},
		{"bucket", KindFill},
		{"pick", KindPick},
		{" colorpicker ", KindPick},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseKind("spray")
	assert.True(t, errors.Is(err, ErrUnknownTool))
}

func TestKindString(t *testing.T) {
	for _, k := range Kinds() {
		back, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, back)
	}
	assert.Equal(t, "Kind(12)", Kind(12).String())
}

func TestClampBrushSize(t *testing.T) {
	assert.Equal(t, MinBrushSize, ClampBrushSize(-4))
	assert.Equal(t, 7, ClampBrushSize(7))
	assert.Equal(t, MaxBrushSize, ClampBrushSize(1000))
}

func TestBrushFirstPointStampsDot(t *testing.T) {
	buf := whiteBuffer(20, 20)
	brush := Brush{Color: red, Size: 5}

	eff, s := brush.Draw(buf, Stroke{}, image.Pt(10, 10))
	assert.True(t, eff.Changed)
	assert.False(t, eff.Done)
	assert.Equal(t, image.Rect(8, 8, 13, 13), eff.Bounds)
	assert.Equal(t, Stroke{Last: image.Pt(10, 10), Active: true}, s)

	assert.Equal(t, red, buf.Get(10, 10))
	assert.Equal(t, red, buf.Get(12, 10))
	assert.Equal(t, raster.White, buf.Get(13, 10))
}

func TestBrushConnectsPoints(t *testing.T) {
	buf := whiteBuffer(30, 10)
	brush := Brush{Color: red, Size: 1}

	_, s := brush.Draw(buf, Stroke{}, image.Pt(2, 5))
	eff, s := brush.Draw(buf, s, image.Pt(20, 5))

	assert.Equal(t, image.Pt(20, 5), s.Last)
	assert.Equal(t, image.Rect(2, 5, 21, 6), eff.Bounds)
	for x := 2; x <= 20; x++ {
		assert.Equal(t, red, buf.Get(x, 5), "gap at x=%d", x)
	}
	assert.Equal(t, raster.White, buf.Get(21, 5))
}

func TestStrokeLineDiagonal(t *testing.T) {
	buf := whiteBuffer(10, 10)
	r := StrokeLine(buf, image.Pt(0, 0), image.Pt(9, 9), 0, raster.Black)
	assert.Equal(t, image.Rect(0, 0, 10, 10), r)
	for i := 0; i < 10; i++ {
		assert.Equal(t, raster.Black, buf.Get(i, i))
	}
	assert.Equal(t, raster.White, buf.Get(0, 9))
}

func TestStrokeOffCanvas(t *testing.T) {
	buf := whiteBuffer(5, 5)
	eff, s := Brush{Color: red, Size: 3}.Draw(buf, Stroke{}, image.Pt(-20, -20))
	assert.False(t, eff.Changed)
	assert.True(t, s.Active, "stroke continues even off canvas")
}

func TestEraserPaintsBackground(t *testing.T) {
	buf := whiteBuffer(10, 10)
	eff, _ := Eraser{Size: 3}.Draw(buf, Stroke{}, image.Pt(5, 5))
	assert.True(t, eff.Changed)
	assert.Equal(t, raster.Transparent, buf.Get(5, 5))

	Eraser{Size: 1, Background: raster.Black}.Draw(buf, Stroke{}, image.Pt(0, 0))
	assert.Equal(t, raster.Black, buf.Get(0, 0))
	assert.Equal(t, KindEraser, Eraser{}.Kind())
}

func TestFillTool(t *testing.T) {
	buf := whiteBuffer(4, 4)
	fill := Fill{Color: red, Options: floodfill.DefaultOptions()}

	eff, s := fill.Draw(buf, Stroke{Active: true, Last: image.Pt(1, 1)}, image.Pt(0, 0))
	assert.True(t, eff.Changed)
	assert.True(t, eff.Done)
	assert.Equal(t, Stroke{}, s)
	assert.Equal(t, red, buf.Get(3, 3))

	eff, _ = fill.Draw(buf, Stroke{}, image.Pt(0, 0))
	assert.False(t, eff.Changed, "second fill with the same colour is a no-op")
}

func TestColorPick(t *testing.T) {
	buf := whiteBuffer(3, 3)
	buf.Set(1, 1, red)

	eff, s := ColorPick{}.Draw(buf, Stroke{}, image.Pt(1, 1))
	assert.True(t, eff.HasPick)
	assert.Equal(t, red, eff.Picked)
	assert.False(t, eff.Changed)
	assert.True(t, eff.Done)
	assert.Equal(t, Stroke{}, s)

	eff, _ = ColorPick{}.Draw(buf, Stroke{}, image.Pt(9, 9))
	assert.False(t, eff.HasPick)
}

func TestToolInterface(t *testing.T) {
	for _, tool := range []Tool{Brush{}, Eraser{}, Fill{}, ColorPick{}} {
		assert.Contains(t, Kinds(), tool.Kind())
	}
}
