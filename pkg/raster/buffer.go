package raster

import (
	"bytes"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Buffer is a rectangular pixel buffer. Pixels are stored row-major as
// non-premultiplied RGBA, 4 bytes per pixel. Reads outside the buffer
// return Transparent and writes outside it are ignored.
type Buffer struct {
	img *image.NRGBA
}

// NewBuffer creates a transparent buffer. Negative sizes are treated as 0.
func NewBuffer(width, height int) *Buffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Buffer{img: image.NewNRGBA(image.Rect(0, 0, width, height))}
}

// FromImage copies any image into a new buffer whose origin is (0, 0).
// NRGBA sources are copied byte for byte; other models go through a Src
// draw, which is exact for opaque pixels.
func FromImage(src image.Image) *Buffer {
	b := src.Bounds()
	buf := NewBuffer(b.Dx(), b.Dy())
	if n, ok := src.(*image.NRGBA); ok {
		copyRows(buf.img, n, b)
		return buf
	}
	draw.Draw(buf.img, buf.img.Bounds(), src, b.Min, draw.Src)
	return buf
}

// copyRows copies the r area of src to the origin of dst, clipped to dst.
func copyRows(dst, src *image.NRGBA, r image.Rectangle) {
	w := min(r.Dx(), dst.Rect.Dx())
	h := min(r.Dy(), dst.Rect.Dy())
	for y := 0; y < h; y++ {
		si := src.PixOffset(r.Min.X, r.Min.Y+y)
		di := dst.PixOffset(dst.Rect.Min.X, dst.Rect.Min.Y+y)
		copy(dst.Pix[di:di+w*4], src.Pix[si:si+w*4])
	}
}

// Width returns the width in pixels.
func (b *Buffer) Width() int { return b.img.Rect.Dx() }

// Height returns the height in pixels.
func (b *Buffer) Height() int { return b.img.Rect.Dy() }

// Bounds implements image.Image.
func (b *Buffer) Bounds() image.Rectangle { return b.img.Rect }

// ColorModel implements image.Image.
func (b *Buffer) ColorModel() color.Model { return color.NRGBAModel }

// At implements image.Image.
func (b *Buffer) At(x, y int) color.Color { return b.Get(x, y) }

// Pix returns the raw pixel bytes. The slice aliases the buffer.
func (b *Buffer) Pix() []uint8 { return b.img.Pix }

// NRGBA returns the buffer as a standard library image sharing its pixels.
func (b *Buffer) NRGBA() *image.NRGBA { return b.img }

// InBounds reports whether (x, y) lies inside the buffer.
func (b *Buffer) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Width() && y < b.Height()
}

// Offset returns the index of the first byte of pixel (x, y) in Pix.
// The caller must check InBounds first.
func (b *Buffer) Offset(x, y int) int {
	return y*b.img.Stride + x*4
}

// Get returns the colour at (x, y).
func (b *Buffer) Get(x, y int) Color {
	if !b.InBounds(x, y) {
		return Transparent
	}
	i := b.Offset(x, y)
	p := b.img.Pix[i : i+4 : i+4]
	return Color{R: p[0], G: p[1], B: p[2], A: p[3]}
}

// Set sets the colour at (x, y).
func (b *Buffer) Set(x, y int, c Color) {
	if !b.InBounds(x, y) {
		return
	}
	i := b.Offset(x, y)
	p := b.img.Pix[i : i+4 : i+4]
	p[0], p[1], p[2], p[3] = c.R, c.G, c.B, c.A
}

// Fill sets every pixel to c.
func (b *Buffer) Fill(c Color) {
	pix := b.img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i+0] = c.R
		pix[i+1] = c.G
		pix[i+2] = c.B
		pix[i+3] = c.A
	}
}

// FillRect fills the intersection of r with the buffer. It returns the
// rectangle actually painted.
func (b *Buffer) FillRect(r image.Rectangle, c Color) image.Rectangle {
	r = r.Intersect(b.img.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			b.Set(x, y, c)
		}
	}
	return r
}

// FillCircle paints a filled disc centred on (cx, cy). It returns the
// clipped bounding rectangle of the disc.
func (b *Buffer) FillCircle(cx, cy, radius int, c Color) image.Rectangle {
	if radius < 0 {
		return image.Rectangle{}
	}
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y <= radius*radius {
				b.Set(cx+x, cy+y, c)
			}
		}
	}
	return image.Rect(cx-radius, cy-radius, cx+radius+1, cy+radius+1).Intersect(b.img.Rect)
}

// Clone returns a deep copy of b.
func (b *Buffer) Clone() *Buffer {
	img := image.NewNRGBA(b.img.Rect)
	copy(img.Pix, b.img.Pix)
	return &Buffer{img: img}
}

// Equal reports whether both buffers have the same size and pixels.
func (b *Buffer) Equal(o *Buffer) bool {
	if o == nil {
		return false
	}
	return b.img.Rect == o.img.Rect && bytes.Equal(b.img.Pix, o.img.Pix)
}

// Resize changes the buffer size, keeping the existing content anchored at
// the top-left corner. Pixels outside the old area are transparent.
func (b *Buffer) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if width == b.Width() && height == b.Height() {
		return
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	copyRows(dst, b.img, b.img.Rect)
	b.img = dst
}

// Grow enlarges the buffer to at least width × height. It never shrinks
// and reports whether the size changed.
func (b *Buffer) Grow(width, height int) bool {
	w := max(b.Width(), width)
	h := max(b.Height(), height)
	if w == b.Width() && h == b.Height() {
		return false
	}
	b.Resize(w, h)
	return true
}

// Replace makes b a copy of src, adopting its size.
func (b *Buffer) Replace(src *Buffer) {
	img := image.NewNRGBA(src.img.Rect)
	copy(img.Pix, src.img.Pix)
	b.img = img
}
