package history

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/ha1tch/paintkit/pkg/raster"
)

// Encoding selects how a snapshot stores its pixels.
type Encoding int

const (
	// EncodingRaw keeps an uncompressed copy of the pixels.
	EncodingRaw Encoding = iota
	// EncodingPNG keeps PNG-compressed pixels. Slower, much smaller for
	// typical drawings.
	EncodingPNG
)

// String returns the encoding name used in configuration files.
func (e Encoding) String() string {
	switch e {
	case EncodingRaw:
		return "raw"
	case EncodingPNG:
		return "png"
	default:
		return fmt.Sprintf("Encoding(%d)", int(e))
	}
}

// ErrUnknownEncoding is returned for unrecognised encoding names.
var ErrUnknownEncoding = errors.New("unknown snapshot encoding")

// ParseEncoding parses "raw" or "png".
func ParseEncoding(s string) (Encoding, error) {
	switch s {
	case "raw", "":
		return EncodingRaw, nil
	case "png":
		return EncodingPNG, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownEncoding, s)
}

// Snapshot is an immutable copy of a buffer's content. It never shares
// memory with the buffer it was taken from.
type Snapshot struct {
	width, height int
	enc           Encoding
	data          []byte
}

// Capture copies the content of buf.
func Capture(buf *raster.Buffer, enc Encoding) (Snapshot, error) {
	s := Snapshot{width: buf.Width(), height: buf.Height(), enc: enc}
	switch enc {
	case EncodingRaw:
		s.data = bytes.Clone(buf.Pix())
		if s.data == nil {
			s.data = []byte{}
		}
	case EncodingPNG:
		var b bytes.Buffer
		pe := png.Encoder{CompressionLevel: png.BestSpeed}
		if err := pe.Encode(&b, buf.NRGBA()); err != nil {
			return Snapshot{}, fmt.Errorf("encoding snapshot: %w", err)
		}
		s.data = b.Bytes()
	default:
		return Snapshot{}, fmt.Errorf("%w: %v", ErrUnknownEncoding, enc)
	}
	return s, nil
}

// Restore materialises the snapshot as a new buffer.
func (s Snapshot) Restore() (*raster.Buffer, error) {
	switch s.enc {
	case EncodingRaw:
		buf := raster.NewBuffer(s.width, s.height)
		if len(s.data) != len(buf.Pix()) {
			return nil, fmt.Errorf("restoring snapshot: have %d bytes, want %d", len(s.data), len(buf.Pix()))
		}
		copy(buf.Pix(), s.data)
		return buf, nil
	case EncodingPNG:
		img, err := png.Decode(bytes.NewReader(s.data))
		if err != nil {
			return nil, fmt.Errorf("decoding snapshot: %w", err)
		}
		return raster.FromImage(img), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownEncoding, s.enc)
	}
}

// Size returns the snapshot dimensions.
func (s Snapshot) Size() image.Point {
	return image.Pt(s.width, s.height)
}

// Encoding returns how the pixels are stored.
func (s Snapshot) Encoding() Encoding { return s.enc }

// Bytes returns the memory held by the pixel payload.
func (s Snapshot) Bytes() int { return len(s.data) }

// IsZero reports whether s is the zero Snapshot.
func (s Snapshot) IsZero() bool { return s.data == nil }

// Equal reports whether two snapshots hold the same image. Snapshots with
// different encodings are never equal.
func (s Snapshot) Equal(o Snapshot) bool {
	return s.width == o.width && s.height == o.height && s.enc == o.enc && bytes.Equal(s.data, o.data)
}
