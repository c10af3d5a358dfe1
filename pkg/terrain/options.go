package terrain

import (
	"errors"
	"fmt"
	"math"

	"github.com/OCharnyshevich/relief/pkg/heightfield"
)

var (
	// ErrOutOfRangeOption is returned when an option value is outside its allowed range.
	ErrOutOfRangeOption = errors.New("option out of range")
	// ErrImageDecode is returned when a source image cannot be turned into a field.
	ErrImageDecode = errors.New("image decode failure")
)

// Source is the random number source consumed by generators and filters.
// *math/rand.Rand satisfies it.
type Source interface {
	Float64() float64
	Int63() int64
}

// Noise selects the noise basis used by turbulence.
type Noise string

const (
	NoisePerlin  Noise = "perlin"
	NoiseSimplex Noise = "simplex"
)

// Options configures generators and filters. Start from DefaultOptions;
// every field is meaningful.
type Options struct {
	MinHeight float64
	MaxHeight float64

	// Frequency controls feature density of the procedural generators.
	Frequency float64
	// Roughness is the per-level displacement decay of diamond-square, in (0, 1].
	Roughness float64

	// Steps is the number of elevation bands; 1 or less disables stepping.
	Steps int

	Turbulent           bool
	TurbulenceOctaves   int
	TurbulenceAmplitude float64
	Noise               Noise

	// Stretch maps the observed min/max onto [MinHeight, MaxHeight] when
	// true, and the nominal range when false.
	Stretch bool
	// Easing remaps normalized heights. Nil means Linear.
	Easing Easing

	// After runs once at the end of the normalization pipeline.
	After func(f *heightfield.Field, opts Options)
}

// DefaultOptions returns Options with every field set to its default.
func DefaultOptions() Options {
	return Options{
		MinHeight:           -100,
		MaxHeight:           100,
		Frequency:           2.5,
		Roughness:           0.5,
		Steps:               1,
		TurbulenceOctaves:   4,
		TurbulenceAmplitude: 0.1,
		Noise:               NoisePerlin,
		Stretch:             true,
		Easing:              Linear,
	}
}

// Spread returns MaxHeight - MinHeight.
func (o Options) Spread() float64 {
	return o.MaxHeight - o.MinHeight
}

// Ease applies the configured easing, falling back to Linear.
func (o Options) Ease(t float64) float64 {
	if o.Easing == nil {
		return t
	}
	return o.Easing(t)
}

// Validate checks every option range. It never adjusts values.
func (o Options) Validate() error {
	if !finite(o.MinHeight) || !finite(o.MaxHeight) {
		return fmt.Errorf("%w: height range [%v, %v] must be finite", ErrOutOfRangeOption, o.MinHeight, o.MaxHeight)
	}
	if o.MinHeight > o.MaxHeight {
		return fmt.Errorf("%w: min height %v above max height %v", ErrOutOfRangeOption, o.MinHeight, o.MaxHeight)
	}
	if !finite(o.Frequency) || o.Frequency <= 0 {
		return fmt.Errorf("%w: frequency %v must be positive", ErrOutOfRangeOption, o.Frequency)
	}
	if !finite(o.Roughness) || o.Roughness <= 0 || o.Roughness > 1 {
		return fmt.Errorf("%w: roughness %v must be in (0, 1]", ErrOutOfRangeOption, o.Roughness)
	}
	if o.Steps < 0 {
		return fmt.Errorf("%w: steps %d is negative", ErrOutOfRangeOption, o.Steps)
	}
	if o.Turbulent {
		if o.TurbulenceOctaves < 1 {
			return fmt.Errorf("%w: turbulence octaves %d must be at least 1", ErrOutOfRangeOption, o.TurbulenceOctaves)
		}
		if !finite(o.TurbulenceAmplitude) || o.TurbulenceAmplitude < 0 {
			return fmt.Errorf("%w: turbulence amplitude %v is negative", ErrOutOfRangeOption, o.TurbulenceAmplitude)
		}
		switch o.Noise {
		case NoisePerlin, NoiseSimplex:
		default:
			return fmt.Errorf("%w: unknown noise basis %q", ErrOutOfRangeOption, o.Noise)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
