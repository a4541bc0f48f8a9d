// Package tools implements the drawing tools that act on a raster buffer.
//
// Every tool has the same shape: it receives the buffer, the stroke state
// left by the previous call and the current point, and returns what it did
// together with the new stroke state. Tools keep no position of their own.
package tools

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/ha1tch/paintkit/pkg/floodfill"
	"github.com/ha1tch/paintkit/pkg/raster"
)

// Brush size limits, in pixels.
const (
	MinBrushSize     = 1
	MaxBrushSize     = 64
	DefaultBrushSize = 5
)

// Kind identifies a tool.
type Kind int

const (
	KindBrush Kind = iota
	KindEraser
	KindFill
	KindPick
)

var kindNames = []string{"brush", "eraser", "fill", "pick"}

// String returns the tool name.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Kinds returns all tool kinds in display order.
func Kinds() []Kind {
	return []Kind{KindBrush, KindEraser, KindFill, KindPick}
}

// ErrUnknownTool is returned by ParseKind.
var ErrUnknownTool = errors.New("unknown tool")

// ParseKind parses a tool name. "colorpicker" and "bucket" are accepted as
// aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "brush":
		return KindBrush, nil
	case "eraser":
		return KindEraser, nil
	case "fill", "bucket":
		return KindFill, nil
	case "pick", "colorpicker":
		return KindPick, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTool, s)
}

// ClampBrushSize limits n to [MinBrushSize, MaxBrushSize].
func ClampBrushSize(n int) int {
	return min(max(n, MinBrushSize), MaxBrushSize)
}

// Stroke is the state carried between calls of one pointer gesture.
type Stroke struct {
	Last   image.Point // point of the previous call
	Active bool        // false before the first point of a gesture
}

// Effect reports what a Draw call did.
type Effect struct {
	Changed bool            // pixels may have been written
	Bounds  image.Rectangle // area that may have changed
	Picked  raster.Color    // colour read by the pick tool
	HasPick bool            // Picked is valid
	Done    bool            // the gesture is complete after this call
}

// Tool is a drawing tool.
type Tool interface {
	Kind() Kind
	Draw(buf *raster.Buffer, s Stroke, p image.Point) (Effect, Stroke)
}

// Brush paints round-capped lines of the given diameter.
type Brush struct {
	Color raster.Color
	Size  int
}

// Kind implements Tool.
func (b Brush) Kind() Kind { return KindBrush }

// Draw implements Tool. The first point of a stroke stamps a single dot;
// later points connect to the previous one.
func (b Brush) Draw(buf *raster.Buffer, s Stroke, p image.Point) (Effect, Stroke) {
	return paint(buf, s, p, b.Size, b.Color)
}

// Eraser paints the background colour, transparent by default.
type Eraser struct {
	Size       int
	Background raster.Color
}

// Kind implements Tool.
func (e Eraser) Kind() Kind { return KindEraser }

// Draw implements Tool.
func (e Eraser) Draw(buf *raster.Buffer, s Stroke, p image.Point) (Effect, Stroke) {
	return paint(buf, s, p, e.Size, e.Background)
}

// Fill runs a flood fill at the point.
type Fill struct {
	Color   raster.Color
	Options floodfill.Options
}

// Kind implements Tool.
func (f Fill) Kind() Kind { return KindFill }

// Draw implements Tool. A fill is a single-point gesture.
func (f Fill) Draw(buf *raster.Buffer, _ Stroke, p image.Point) (Effect, Stroke) {
	res := floodfill.Fill(buf, p.X, p.Y, f.Color, f.Options)
	return Effect{Changed: res.Changed(), Bounds: res.Bounds, Done: true}, Stroke{}
}

// ColorPick reads the colour under the point.
type ColorPick struct{}

// Kind implements Tool.
func (ColorPick) Kind() Kind { return KindPick }

// Draw implements Tool. Points outside the buffer pick nothing.
func (ColorPick) Draw(buf *raster.Buffer, _ Stroke, p image.Point) (Effect, Stroke) {
	if !buf.InBounds(p.X, p.Y) {
		return Effect{Done: true}, Stroke{}
	}
	return Effect{Picked: buf.Get(p.X, p.Y), HasPick: true, Done: true}, Stroke{}
}

func paint(buf *raster.Buffer, s Stroke, p image.Point, size int, c raster.Color) (Effect, Stroke) {
	radius := ClampBrushSize(size) / 2
	var r image.Rectangle
	if s.Active {
		r = StrokeLine(buf, s.Last, p, radius, c)
	} else {
		r = buf.FillCircle(p.X, p.Y, radius, c)
	}
	return Effect{Changed: !r.Empty(), Bounds: r}, Stroke{Last: p, Active: true}
}

// StrokeLine stamps discs of the given radius along the Bresenham line from
// a to b, inclusive. It returns the clipped area touched.
func StrokeLine(buf *raster.Buffer, a, b image.Point, radius int, c raster.Color) image.Rectangle {
	x0, y0, x1, y1 := a.X, a.Y, b.X, b.Y
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy

	var dirty image.Rectangle
	for {
		dirty = dirty.Union(buf.FillCircle(x0, y0, radius, c))
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
	return dirty
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
