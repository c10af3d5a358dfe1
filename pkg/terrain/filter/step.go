package filter

import (
	"math"

	"github.com/OCharnyshevich/relief/pkg/heightfield"
	"github.com/OCharnyshevich/relief/pkg/terrain"
)

// Step quantizes the field into opts.Steps evenly spaced bands spanning its
// current min/max, producing terraces. Steps <= 1 leaves the field alone.
func Step(f *heightfield.Field, opts terrain.Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	if opts.Steps <= 1 {
		return nil
	}

	lo, hi := f.MinMax()
	spread := hi - lo
	if spread == 0 {
		return nil
	}

	steps := opts.Steps
	bandHeight := spread / float64(steps-1)
	vals := f.Samples()
	for i, v := range vals {
		band := int(math.Floor((v - lo) / spread * float64(steps)))
		band = max(0, min(steps-1, band))
		vals[i] = lo + float64(band)*bandHeight
	}
	return nil
}
