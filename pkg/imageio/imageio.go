// Package imageio reads and writes canvas images.
//
// Input formats are detected from the file header rather than the name.
// Output is always PNG.
package imageio

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	"image/png"
	"io"
	"os"

	"github.com/anthonynsimon/bild/clone"
	"github.com/h2non/filetype"
	"github.com/mitchellh/go-homedir"
	_ "golang.org/x/image/bmp" // register decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register decoder

	"github.com/ha1tch/paintkit/internal/logging"
	"github.com/ha1tch/paintkit/pkg/raster"
)

// MaxScale is the largest export scale factor.
const MaxScale = 16

// sniffLen is the header size filetype needs to match every type it knows.
const sniffLen = 262

// ErrNotImage is returned for input that is not a supported image format.
var ErrNotImage = errors.New("not a supported image")

var supported = map[string]bool{
	"png":  true,
	"jpg":  true,
	"gif":  true,
	"bmp":  true,
	"webp": true,
}

// Info describes an image file without decoding its pixels.
type Info struct {
	Width, Height int
	Format        string // file extension of the detected type, e.g. "png"
	MIME          string
}

// SaveOptions configures PNG export.
type SaveOptions struct {
	Scale      int          // integer upscale factor, 0 or 1 for none
	Background raster.Color // transparency is flattened onto this unless it is itself transparent
}

// Sniff detects the image type of a file header. It returns ErrNotImage for
// unknown or unsupported types.
func Sniff(head []byte) (Info, error) {
	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown || !supported[kind.Extension] {
		return Info{}, ErrNotImage
	}
	return Info{Format: kind.Extension, MIME: kind.MIME.Value}, nil
}

func sniffReader(r io.Reader) (*bufio.Reader, Info, error) {
	br := bufio.NewReaderSize(r, sniffLen*2)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, Info{}, err
	}
	info, err := Sniff(head)
	return br, info, err
}

// Decode reads an image and converts it to a buffer.
func Decode(r io.Reader) (*raster.Buffer, Info, error) {
	br, info, err := sniffReader(r)
	if err != nil {
		return nil, Info{}, err
	}
	img, _, err := image.Decode(br)
	if err != nil {
		return nil, Info{}, fmt.Errorf("decoding %s: %w", info.Format, err)
	}
	info.Width, info.Height = img.Bounds().Dx(), img.Bounds().Dy()

	buf := toBuffer(img)
	logging.Logger().Debug("image decoded", "format", info.Format, "width", info.Width, "height", info.Height)
	return buf, info, nil
}

// toBuffer converts a decoded image to a buffer without passing translucent
// pixels through premultiplied RGBA. Only opaque images use the RGBA copy.
func toBuffer(img image.Image) *raster.Buffer {
	switch src := img.(type) {
	case *image.NRGBA:
		return raster.FromImage(src)
	case *image.Paletted:
		return fromPaletted(src)
	case *image.NRGBA64:
		return fromNRGBA64(src)
	}
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return raster.FromImage(clone.AsRGBA(img))
	}
	b := img.Bounds()
	buf := raster.NewBuffer(b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			buf.Set(x-b.Min.X, y-b.Min.Y, raster.FromColor(img.At(x, y)))
		}
	}
	return buf
}

// fromPaletted maps palette indices through the palette converted once.
// Indices past the end of the palette read as transparent.
func fromPaletted(src *image.Paletted) *raster.Buffer {
	lut := make([]raster.Color, len(src.Palette))
	for i, c := range src.Palette {
		lut[i] = raster.FromColor(c)
	}
	b := src.Bounds()
	buf := raster.NewBuffer(b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if i := int(src.Pix[src.PixOffset(x, y)]); i < len(lut) {
				buf.Set(x-b.Min.X, y-b.Min.Y, lut[i])
			}
		}
	}
	return buf
}

// fromNRGBA64 keeps the high byte of each big-endian 16-bit channel.
func fromNRGBA64(src *image.NRGBA64) *raster.Buffer {
	b := src.Bounds()
	buf := raster.NewBuffer(b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			p := src.Pix[src.PixOffset(x, y):]
			buf.Set(x-b.Min.X, y-b.Min.Y, raster.Color{R: p[0], G: p[2], B: p[4], A: p[6]})
		}
	}
	return buf
}

// Load reads an image file. The path may start with ~.
func Load(path string) (*raster.Buffer, Info, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, Info{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, Info{}, err
	}
	defer f.Close()

	buf, info, err := Decode(f)
	if err != nil {
		return nil, Info{}, fmt.Errorf("%s: %w", path, err)
	}
	return buf, info, nil
}

// Inspect reads only the header and dimensions of an image file.
func Inspect(path string) (Info, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return Info{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()

	br, info, err := sniffReader(f)
	if err != nil {
		return Info{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg, _, err := image.DecodeConfig(br)
	if err != nil {
		return Info{}, fmt.Errorf("%s: %w", path, err)
	}
	info.Width, info.Height = cfg.Width, cfg.Height
	return info, nil
}

// Render applies the export options and returns the image to encode.
func Render(buf *raster.Buffer, opts SaveOptions) image.Image {
	var img image.Image = buf.NRGBA()
	if opts.Background.A != 0 {
		flat := buf.Clone()
		pix := flat.Pix()
		for i := 0; i < len(pix); i += 4 {
			c := raster.Color{R: pix[i], G: pix[i+1], B: pix[i+2], A: pix[i+3]}.Over(opts.Background)
			pix[i], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, c.A
		}
		img = flat.NRGBA()
	}

	scale := min(max(opts.Scale, 1), MaxScale)
	if scale > 1 {
		b := img.Bounds()
		dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
		img = dst
	}
	return img
}

// Encode writes buf as PNG.
func Encode(w io.Writer, buf *raster.Buffer, opts SaveOptions) error {
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	return enc.Encode(w, Render(buf, opts))
}

// Save writes buf to a PNG file. The path may start with ~.
func Save(path string, buf *raster.Buffer, opts SaveOptions) (err error) {
	path, err = homedir.Expand(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err := Encode(f, buf, opts); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	logging.Logger().Info("image saved", "path", path, "scale", max(opts.Scale, 1))
	return nil
}
