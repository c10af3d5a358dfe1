package gen

import (
	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"

	"github.com/OCharnyshevich/relief/pkg/heightfield"
	"github.com/OCharnyshevich/relief/pkg/terrain"
)

const (
	perlinAlpha   = 2
	perlinBeta    = 2
	perlinOctaves = 3
)

// Perlin fills a field with octave Perlin noise centred on the middle of
// the height range. Frequency sets how many noise periods span the field.
func Perlin(widthSegments, heightSegments int, opts terrain.Options, src terrain.Source) (*heightfield.Field, error) {
	f, err := prepare(widthSegments, heightSegments, opts, src)
	if err != nil {
		return nil, err
	}
	p := perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, src.Int63())
	sample(f, opts, p.Noise2D)
	return f, nil
}

// Simplex fills a field with OpenSimplex noise.
func Simplex(widthSegments, heightSegments int, opts terrain.Options, src terrain.Source) (*heightfield.Field, error) {
	f, err := prepare(widthSegments, heightSegments, opts, src)
	if err != nil {
		return nil, err
	}
	n := opensimplex.New(src.Int63())
	sample(f, opts, n.Eval2)
	return f, nil
}

// sample evaluates noise over the grid and scales it to half the height
// range around its midpoint. Octave sums can overshoot [-1, 1] slightly,
// so the noise is clipped first.
func sample(f *heightfield.Field, opts terrain.Options, noise func(x, y float64) float64) {
	mid := (opts.MinHeight + opts.MaxHeight) / 2
	amp := opts.Spread() / 2
	divisor := float64(min(f.Cols(), f.Rows())) / opts.Frequency

	f.Map(func(col, row int, _ float64) float64 {
		n := max(-1, min(1, noise(float64(col)/divisor, float64(row)/divisor)))
		return mid + n*amp
	})
}
