// Package floodfill implements tolerance-based bucket fill over a raster
// buffer.
//
// A fill starts from a seed pixel, samples its colour, and recolours the
// maximal 4-connected region of pixels whose channels are all within the
// tolerance of that colour. Two policies are supported:
//
//   - Direct recolours each matching pixel as the traversal visits it.
//   - Expand first collects the region, then recolours a square
//     neighbourhood of Expansion pixels around every collected pixel. This
//     closes the anti-aliased seams that stroke rendering leaves along
//     region borders.
//
// The traversal uses an explicit stack and a visited bitset, so large
// canvases do not hit recursion limits and each pixel is evaluated once.
package floodfill

import (
	"errors"
	"fmt"
	"image"

	"github.com/ha1tch/paintkit/internal/logging"
	"github.com/ha1tch/paintkit/pkg/raster"
)

// Default settings
const (
	DefaultTolerance = 30
	MaxTolerance     = 255
	MaxExpansion     = 16
)

// Policy selects how the matched region is recoloured.
type Policy int

const (
	// Direct recolours pixels during traversal.
	Direct Policy = iota
	// Expand collects the region, then dilates it by Expansion pixels.
	Expand
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case Direct:
		return "direct"
	case Expand:
		return "expand"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ErrInvalidOptions is returned by Options.Validate.
var ErrInvalidOptions = errors.New("invalid fill options")

// Options configures a fill.
type Options struct {
	Tolerance int    // per-channel absolute difference, inclusive
	Expansion int    // dilation margin in pixels (Expand policy only)
	Policy    Policy
}

// DefaultOptions returns a Direct fill with the default tolerance.
func DefaultOptions() Options {
	return Options{Tolerance: DefaultTolerance, Policy: Direct}
}

// Validate checks the option ranges.
func (o Options) Validate() error {
	if o.Tolerance < 0 || o.Tolerance > MaxTolerance {
		return fmt.Errorf("%w: tolerance %d outside [0, %d]", ErrInvalidOptions, o.Tolerance, MaxTolerance)
	}
	if o.Expansion < 0 || o.Expansion > MaxExpansion {
		return fmt.Errorf("%w: expansion %d outside [0, %d]", ErrInvalidOptions, o.Expansion, MaxExpansion)
	}
	if o.Policy != Direct && o.Policy != Expand {
		return fmt.Errorf("%w: unknown policy %v", ErrInvalidOptions, o.Policy)
	}
	return nil
}

// Result describes what a fill changed. The zero Result means no-op.
type Result struct {
	Pixels  int             // pixels in the matched region
	Painted int             // pixel writes, including dilation
	Bounds  image.Rectangle // dirty rectangle
}

// Changed reports whether the fill touched the buffer.
func (r Result) Changed() bool {
	return r.Painted > 0
}

// Region is the set of pixels found connected to a seed.
type Region struct {
	Points []image.Point
	Bounds image.Rectangle
}

// Len returns the number of pixels in the region.
func (r Region) Len() int {
	return len(r.Points)
}

// Fill recolours the region connected to (x, y) with fill. The buffer is
// modified in place. Seeds outside the buffer, or seeds whose colour already
// matches fill within the tolerance, leave the buffer untouched.
func Fill(buf *raster.Buffer, x, y int, fill raster.Color, opts Options) Result {
	if !buf.InBounds(x, y) {
		return Result{}
	}
	target := buf.Get(x, y)
	if target.Matches(fill, opts.Tolerance) {
		return Result{}
	}

	var res Result
	if opts.Policy == Expand && opts.Expansion > 0 {
		region := collect(buf, x, y, target, opts.Tolerance, nil)
		res.Pixels = region.Len()
		res.Painted, res.Bounds = dilate(buf, region, fill, opts.Expansion)
	} else {
		region := collect(buf, x, y, target, opts.Tolerance, func(i int) {
			setAt(buf.Pix(), i, fill)
		})
		res.Pixels = region.Len()
		res.Painted = region.Len()
		res.Bounds = region.Bounds
	}

	logging.Logger().Debug("flood fill",
		"seed", image.Pt(x, y),
		"target", target.Hex(),
		"fill", fill.Hex(),
		"policy", opts.Policy.String(),
		"pixels", res.Pixels,
		"painted", res.Painted)
	return res
}

// Collect returns the 4-connected region of pixels matching the colour at
// (x, y) within tolerance, without modifying the buffer. An out-of-bounds
// seed yields an empty region.
func Collect(buf *raster.Buffer, x, y, tolerance int) Region {
	if !buf.InBounds(x, y) {
		return Region{}
	}
	return collect(buf, x, y, buf.Get(x, y), tolerance, nil)
}

// Dilate paints a (2*margin+1) square around every pixel of region,
// clamped to the buffer. It returns the dirty rectangle.
func Dilate(buf *raster.Buffer, region Region, fill raster.Color, margin int) image.Rectangle {
	_, r := dilate(buf, region, fill, margin)
	return r
}

// collect walks the region from the seed. visit, when set, is called with
// the byte offset of each matching pixel as soon as it is accepted; the
// pixel has already been marked visited, so recolouring it cannot cause it
// to be evaluated again.
func collect(buf *raster.Buffer, x, y int, target raster.Color, tolerance int, visit func(off int)) Region {
	w, h := buf.Width(), buf.Height()
	pix := buf.Pix()
	visited := newBitset(w * h)

	var region Region
	stack := []image.Point{{X: x, Y: y}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.Y < 0 || p.X >= w || p.Y >= h {
			continue
		}
		idx := p.Y*w + p.X
		if visited.get(idx) {
			continue
		}
		visited.set(idx)

		off := buf.Offset(p.X, p.Y)
		if !colorAt(pix, off).Matches(target, tolerance) {
			continue
		}

		region.add(p)
		if visit != nil {
			visit(off)
		}

		stack = append(stack,
			image.Point{X: p.X + 1, Y: p.Y},
			image.Point{X: p.X - 1, Y: p.Y},
			image.Point{X: p.X, Y: p.Y + 1},
			image.Point{X: p.X, Y: p.Y - 1},
		)
	}
	return region
}

func dilate(buf *raster.Buffer, region Region, fill raster.Color, margin int) (int, image.Rectangle) {
	if region.Len() == 0 {
		return 0, image.Rectangle{}
	}
	if margin < 0 {
		margin = 0
	}
	bounds := buf.Bounds()
	pix := buf.Pix()
	painted := 0

	for _, p := range region.Points {
		r := image.Rect(p.X-margin, p.Y-margin, p.X+margin+1, p.Y+margin+1).Intersect(bounds)
		for yy := r.Min.Y; yy < r.Max.Y; yy++ {
			for xx := r.Min.X; xx < r.Max.X; xx++ {
				setAt(pix, buf.Offset(xx, yy), fill)
				painted++
			}
		}
	}
	dirty := region.Bounds.Inset(-margin).Intersect(bounds)
	return painted, dirty
}

func (r *Region) add(p image.Point) {
	r.Points = append(r.Points, p)
	pr := image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))}
	if len(r.Points) == 1 {
		r.Bounds = pr
		return
	}
	r.Bounds = r.Bounds.Union(pr)
}

func colorAt(pix []uint8, off int) raster.Color {
	return raster.Color{R: pix[off], G: pix[off+1], B: pix[off+2], A: pix[off+3]}
}

func setAt(pix []uint8, off int, c raster.Color) {
	pix[off+0] = c.R
	pix[off+1] = c.G
	pix[off+2] = c.B
	pix[off+3] = c.A
}
