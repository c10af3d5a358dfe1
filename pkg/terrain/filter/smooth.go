package filter

import (
	"sort"

	"github.com/OCharnyshevich/relief/pkg/heightfield"
	"github.com/OCharnyshevich/relief/pkg/terrain/blur"
)

// SmoothParams is the blur applied after Step. The radius must stay well
// below the band width in cells, otherwise the terraces are blurred away.
var SmoothParams = blur.Params{Radius: 1, Passes: 3}

// Smooth softens the field with a small Gaussian blur.
func Smooth(f *heightfield.Field) error {
	return blur.Gaussian(f, SmoothParams)
}

// SmoothMedian replaces each sample with the median of its 3×3
// neighbourhood, counting only cells inside the field.
func SmoothMedian(f *heightfield.Field) {
	src := f.Values()
	buf := make([]float64, 0, 9)

	f.Map(func(col, row int, _ float64) float64 {
		buf = neighbourhood(src, f.Cols(), f.Rows(), col, row, true, buf[:0])
		sort.Float64s(buf)
		n := len(buf)
		if n%2 == 1 {
			return buf[n/2]
		}
		return (buf[n/2-1] + buf[n/2]) / 2
	})
}

// SmoothConservative clamps each sample into the range spanned by its
// in-field neighbours, flattening isolated spikes and pits only.
func SmoothConservative(f *heightfield.Field) {
	src := f.Values()
	buf := make([]float64, 0, 8)

	f.Map(func(col, row int, v float64) float64 {
		buf = neighbourhood(src, f.Cols(), f.Rows(), col, row, false, buf[:0])
		if len(buf) == 0 {
			return v
		}
		lo, hi := buf[0], buf[0]
		for _, n := range buf[1:] {
			lo, hi = min(lo, n), max(hi, n)
		}
		return max(lo, min(hi, v))
	})
}

// neighbourhood appends the in-bounds 3×3 samples around (col, row) to dst.
func neighbourhood(src []float64, cols, rows, col, row int, self bool, dst []float64) []float64 {
	for dy := -1; dy <= 1; dy++ {
		y := row + dy
		if y < 0 || y >= rows {
			continue
		}
		for dx := -1; dx <= 1; dx++ {
			x := col + dx
			if x < 0 || x >= cols || (!self && dx == 0 && dy == 0) {
				continue
			}
			dst = append(dst, src[y*cols+x])
		}
	}
	return dst
}
