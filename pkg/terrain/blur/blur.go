// Package blur approximates a Gaussian blur over a height field with a
// sequence of separable box blurs.
package blur

import (
	"fmt"
	"math"

	"github.com/OCharnyshevich/relief/pkg/heightfield"
	"github.com/OCharnyshevich/relief/pkg/terrain"
)

// Params configures Gaussian.
type Params struct {
	// Radius is the standard deviation of the approximated Gaussian.
	Radius float64
	// Passes is the number of box blurs; 3 is already close to a Gaussian.
	Passes int
}

// DefaultParams returns a unit-radius, three-pass blur.
func DefaultParams() Params {
	return Params{Radius: 1, Passes: 3}
}

// Validate checks Radius >= 0 and Passes >= 1.
func (p Params) Validate() error {
	if math.IsNaN(p.Radius) || math.IsInf(p.Radius, 0) || p.Radius < 0 {
		return fmt.Errorf("%w: blur radius %v must be a non-negative number", terrain.ErrOutOfRangeOption, p.Radius)
	}
	if p.Passes < 1 {
		return fmt.Errorf("%w: blur passes %d must be at least 1", terrain.ErrOutOfRangeOption, p.Passes)
	}
	return nil
}

// Boxes returns n odd box widths whose combined variance matches a
// Gaussian of standard deviation sigma. The first m boxes use the lower
// width wl, the rest wl+2.
func Boxes(sigma float64, n int) []int {
	wIdeal := math.Sqrt(12*sigma*sigma/float64(n) + 1)
	wl := int(math.Floor(wIdeal))
	if wl%2 == 0 {
		wl--
	}
	wu := wl + 2

	fn, fwl := float64(n), float64(wl)
	mIdeal := (12*sigma*sigma - fn*fwl*fwl - 4*fn*fwl - 3*fn) / (-4*fwl - 4)
	m := int(math.Round(mIdeal))

	sizes := make([]int, n)
	for i := range sizes {
		if i < m {
			sizes[i] = wl
		} else {
			sizes[i] = wu
		}
	}
	return sizes
}

// Gaussian blurs f in place.
func Gaussian(f *heightfield.Field, p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Radius == 0 {
		return nil
	}

	scratch := make([]float64, f.Len())
	for _, w := range Boxes(p.Radius, p.Passes) {
		box(f, scratch, (w-1)/2)
	}
	return nil
}

// Box applies a single separable box blur of half-width r in place.
func Box(f *heightfield.Field, r int) error {
	if r < 0 {
		return fmt.Errorf("%w: box radius %d is negative", terrain.ErrOutOfRangeOption, r)
	}
	box(f, make([]float64, f.Len()), r)
	return nil
}

// box runs the horizontal pass into scratch, then the vertical pass back
// into the field.
func box(f *heightfield.Field, scratch []float64, r int) {
	if r == 0 {
		return
	}
	vals := f.Samples()
	cols, rows := f.Cols(), f.Rows()

	for row := 0; row < rows; row++ {
		blurLine(vals, scratch, row*cols, 1, cols, r)
	}
	for col := 0; col < cols; col++ {
		blurLine(scratch, vals, col, cols, rows, r)
	}
}

// blurLine writes the moving average of half-width r over the n samples
// src[base], src[base+step], ... into dst. Reads past either end return
// the nearest edge sample. The running sum keeps the cost independent of r.
func blurLine(src, dst []float64, base, step, n, r int) {
	last := n - 1
	at := func(i int) float64 {
		if i < 0 {
			i = 0
		} else if i > last {
			i = last
		}
		return src[base+i*step]
	}

	// Window centred on 0: r+1 copies of the first sample plus samples 1..r.
	sum := float64(r+1) * at(0)
	inside := min(r, last)
	for i := 1; i <= inside; i++ {
		sum += at(i)
	}
	sum += float64(r-inside) * at(last)

	width := float64(2*r + 1)
	for i := 0; i < n; i++ {
		dst[base+i*step] = sum / width
		sum += at(i+r+1) - at(i-r)
	}
}
