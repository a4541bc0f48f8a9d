package floodfill

import (
	"image"
	"testing"

	"github.com/ha1tch/paintkit/pkg/raster"
)

// FuzzFillDirect fills arbitrary 4x4 grey images and checks that a direct
// fill writes exactly the pixels it reports, all inside its bounds.
// Run with: go test -fuzz=FuzzFillDirect -fuzztime=30s ./pkg/floodfill/
func FuzzFillDirect(f *testing.F) {
	f.Add([]byte{}, uint8(0), uint8(0), uint8(30), uint8(255))
	f.Add([]byte{0, 0, 0, 255, 0, 0, 0, 255, 0, 0, 0, 255, 255, 255, 255, 255}, uint8(1), uint8(1), uint8(0), uint8(128))
	f.Add([]byte{10, 20, 30, 40, 50, 60, 70, 80}, uint8(3), uint8(3), uint8(15), uint8(0))
	f.Add([]byte{200}, uint8(9), uint8(2), uint8(255), uint8(7))

	f.Fuzz(func(t *testing.T, grey []byte, sx, sy, tol, ink uint8) {
		buf := raster.NewBuffer(4, 4)
		for i, v := range grey {
			if i >= 16 {
				break
			}
			buf.Set(i%4, i/4, raster.Color{R: v, G: v, B: v, A: 255})
		}
		before := buf.Clone()
		fill := raster.Color{R: ink, G: 255 - ink, B: ink / 2, A: 255}
		x, y := int(sx%6)-1, int(sy%6)-1

		res := Fill(buf, x, y, fill, Options{Tolerance: int(tol), Policy: Direct})

		if res.Painted != res.Pixels {
			t.Fatalf("direct fill painted %d of %d pixels", res.Painted, res.Pixels)
		}
		changed := 0
		for py := 0; py < 4; py++ {
			for px := 0; px < 4; px++ {
				if buf.Get(px, py) == before.Get(px, py) {
					continue
				}
				changed++
				if !image.Pt(px, py).In(res.Bounds) {
					t.Fatalf("pixel (%d,%d) changed outside bounds %v", px, py, res.Bounds)
				}
				if buf.Get(px, py) != fill {
					t.Fatalf("pixel (%d,%d) = %v, want %v", px, py, buf.Get(px, py), fill)
				}
			}
		}
		if changed != res.Painted {
			t.Fatalf("changed %d pixels, reported %d", changed, res.Painted)
		}
	})
}
