// Package filter reshapes an existing height field in place.
package filter

import (
	"fmt"
	"math"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"

	"github.com/OCharnyshevich/relief/pkg/heightfield"
	"github.com/OCharnyshevich/relief/pkg/terrain"
)

// Turbulence adds a non-negative sum of absolute-valued noise octaves to
// every sample. Each octave doubles the frequency and halves the amplitude;
// the total peaks at TurbulenceAmplitude times the height range.
func Turbulence(f *heightfield.Field, opts terrain.Options, src terrain.Source) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	if src == nil {
		return fmt.Errorf("%w: turbulence needs a random source", terrain.ErrOutOfRangeOption)
	}
	turbulence(f, opts, newNoise(opts.Noise, src.Int63()))
	return nil
}

func turbulence(f *heightfield.Field, opts terrain.Options, noise func(x, y float64) float64) {
	octaves := max(opts.TurbulenceOctaves, 1)
	gain := opts.Spread() * opts.TurbulenceAmplitude
	base := opts.Frequency / float64(min(f.Cols(), f.Rows()))

	var norm float64
	for o := 0; o < octaves; o++ {
		norm += math.Ldexp(1, -o)
	}

	f.Map(func(col, row int, v float64) float64 {
		x, y := float64(col)*base, float64(row)*base
		var sum float64
		amp, freq := 1.0, 1.0
		for o := 0; o < octaves; o++ {
			sum += amp * math.Abs(noise(x*freq, y*freq))
			amp *= 0.5
			freq *= 2
		}
		return v + gain*sum/norm
	})
}

// newNoise returns a single-octave 2-D noise function for the basis.
func newNoise(basis terrain.Noise, seed int64) func(x, y float64) float64 {
	if basis == terrain.NoiseSimplex {
		return opensimplex.New(seed).Eval2
	}
	return perlin.NewPerlin(2, 2, 1, seed).Noise2D
}
