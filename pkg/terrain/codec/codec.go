// Package codec converts between height fields and 8-bit RGBA rasters.
package codec

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/OCharnyshevich/relief/pkg/heightfield"
	"github.com/OCharnyshevich/relief/pkg/terrain"
)

const maxPacked = 0xFFFFFF

// Decode builds a field from img. Each pixel packs R<<16 | G<<8 | B into a
// 24-bit value that is normalized and scaled into [minHeight, maxHeight].
// Alpha is ignored.
func Decode(img image.Image, minHeight, maxHeight float64) (*heightfield.Field, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", terrain.ErrImageDecode)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: image has zero area (%dx%d)", terrain.ErrImageDecode, b.Dx(), b.Dy())
	}

	f, err := heightfield.New(b.Dx(), b.Dy())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", terrain.ErrImageDecode, err)
	}

	spread := maxHeight - minHeight
	vals := f.Samples()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			v := uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
			vals[y*b.Dx()+x] = minHeight + float64(v)/maxPacked*spread
		}
	}
	return f, nil
}

// Encode writes f as a grayscale image using the field's own min/max.
func Encode(f *heightfield.Field) *image.RGBA {
	lo, hi := f.MinMax()
	return EncodeRange(f, lo, hi)
}

// EncodeRange writes f as a grayscale image, mapping minHeight to 0 and
// maxHeight to 255. Samples outside the range saturate. A zero-width range
// encodes every pixel as black.
func EncodeRange(f *heightfield.Field, minHeight, maxHeight float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Cols(), f.Rows()))
	spread := maxHeight - minHeight

	for row := 0; row < f.Rows(); row++ {
		for col := 0; col < f.Cols(); col++ {
			var g uint8
			if spread > 0 {
				g = quantize((f.Get(col, row) - minHeight) / spread)
			}
			i := img.PixOffset(col, row)
			img.Pix[i+0] = g
			img.Pix[i+1] = g
			img.Pix[i+2] = g
			img.Pix[i+3] = 0xFF
		}
	}
	return img
}

func quantize(t float64) uint8 {
	v := math.Round(t * 255)
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}
