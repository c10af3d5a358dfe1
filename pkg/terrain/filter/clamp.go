package filter

import (
	"math"

	"github.com/OCharnyshevich/relief/pkg/heightfield"
	"github.com/OCharnyshevich/relief/pkg/terrain"
)

// Clamp rescales the field into [MinHeight, MaxHeight] through the easing
// function. With Stretch the observed min/max are the source range,
// otherwise the nominal range is used and samples outside it saturate.
// A zero-width range collapses every sample to MinHeight.
func Clamp(f *heightfield.Field, opts terrain.Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	spread := opts.Spread()
	if spread == 0 {
		f.Fill(opts.MinHeight)
		return nil
	}

	lo, hi := opts.MinHeight, opts.MaxHeight
	if opts.Stretch {
		lo, hi = f.MinMax()
	}
	actual := hi - lo

	vals := f.Samples()
	for i, v := range vals {
		var t float64
		if actual > 0 {
			t = unit((v - lo) / actual)
		}
		vals[i] = opts.MinHeight + unit(opts.Ease(t))*spread
	}
	return nil
}

// unit clamps t into [0, 1], mapping NaN to 0.
func unit(t float64) float64 {
	switch {
	case math.IsNaN(t) || t < 0:
		return 0
	case t > 1:
		return 1
	default:
		return t
	}
}
