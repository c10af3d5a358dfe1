package gen

import (
	"github.com/OCharnyshevich/relief/pkg/heightfield"
	"github.com/OCharnyshevich/relief/pkg/terrain"
)

// DiamondSquare fills a field with midpoint-displacement fractal terrain.
//
// The algorithm runs on a lattice of 2^n+1 squares. The lattice step is taken
// from the shorter axis and the longer axis gets as many squares as it needs,
// so memory stays proportional to the field. The top-left window of the
// lattice is kept and the result never shows resampling seams.
func DiamondSquare(widthSegments, heightSegments int, opts terrain.Options, src terrain.Source) (*heightfield.Field, error) {
	f, err := prepare(widthSegments, heightSegments, opts, src)
	if err != nil {
		return nil, err
	}

	step := gridSize(min(f.Cols(), f.Rows())) - 1
	w := latticeSize(f.Cols(), step)
	h := latticeSize(f.Rows(), step)
	grid := make([]float64, w*h)

	mid := (opts.MinHeight + opts.MaxHeight) / 2
	scale := opts.Spread() * opts.Frequency / 5
	for y := 0; y < h; y += step {
		for x := 0; x < w; x += step {
			grid[y*w+x] = mid + displacement(src, scale)
		}
	}

	displace(grid, w, h, step, src, scale*opts.Roughness, opts.Roughness)

	vals := f.Samples()
	for row := 0; row < f.Rows(); row++ {
		copy(vals[row*f.Cols():(row+1)*f.Cols()], grid[row*w:row*w+f.Cols()])
	}
	return f, nil
}

// gridSize returns the smallest 2^k+1 that is >= n.
func gridSize(n int) int {
	s := 1
	for s+1 < n {
		s <<= 1
	}
	return s + 1
}

// latticeSize returns the smallest k*step+1 that is >= n.
func latticeSize(n, step int) int {
	k := (n - 1 + step - 1) / step
	return k*step + 1
}

// displace runs the diamond and square steps over a w×h grid whose lattice
// points (multiples of step on both axes) are already seeded. scale is the
// displacement bound of the first level and shrinks by roughness per level.
func displace(grid []float64, w, h, step int, src terrain.Source, scale, roughness float64) {
	for ; step > 1; step /= 2 {
		half := step / 2

		// Diamond: centre of each square from its four corners.
		for y := half; y < h; y += step {
			for x := half; x < w; x += step {
				avg := (grid[(y-half)*w+x-half] +
					grid[(y-half)*w+x+half] +
					grid[(y+half)*w+x-half] +
					grid[(y+half)*w+x+half]) / 4
				grid[y*w+x] = avg + displacement(src, scale)
			}
		}

		// Square: edge midpoints from the neighbours that exist.
		for y := 0; y < h; y += half {
			x0 := half
			if (y/half)%2 == 1 {
				x0 = 0
			}
			for x := x0; x < w; x += step {
				grid[y*w+x] = neighbourMean(grid, w, h, x, y, half) + displacement(src, scale)
			}
		}

		scale *= roughness
	}
}

// neighbourMean averages the in-bounds samples half cells away along each axis.
func neighbourMean(grid []float64, w, h, x, y, half int) float64 {
	var sum float64
	var n int
	if x-half >= 0 {
		sum += grid[y*w+x-half]
		n++
	}
	if x+half < w {
		sum += grid[y*w+x+half]
		n++
	}
	if y-half >= 0 {
		sum += grid[(y-half)*w+x]
		n++
	}
	if y+half < h {
		sum += grid[(y+half)*w+x]
		n++
	}
	return sum / float64(n)
}

// displacement returns a uniform value in [-scale, scale).
func displacement(src terrain.Source, scale float64) float64 {
	return (src.Float64()*2 - 1) * scale
}
