package filter

import (
	"fmt"

	"github.com/OCharnyshevich/relief/pkg/heightfield"
	"github.com/OCharnyshevich/relief/pkg/terrain"
)

// Normalize runs the shaping pipeline in its fixed order:
// turbulence, step and smooth, clamp with easing, then opts.After.
// Options are checked before the field is touched.
func Normalize(f *heightfield.Field, opts terrain.Options, src terrain.Source) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	if opts.Turbulent && src == nil {
		return fmt.Errorf("%w: turbulence needs a random source", terrain.ErrOutOfRangeOption)
	}

	if opts.Turbulent {
		if err := Turbulence(f, opts, src); err != nil {
			return fmt.Errorf("turbulence: %w", err)
		}
	}
	if opts.Steps > 1 {
		if err := Step(f, opts); err != nil {
			return fmt.Errorf("step: %w", err)
		}
		if err := Smooth(f); err != nil {
			return fmt.Errorf("smooth: %w", err)
		}
	}
	if err := Clamp(f, opts); err != nil {
		return fmt.Errorf("clamp: %w", err)
	}
	if opts.After != nil {
		opts.After(f, opts)
	}
	return nil
}
