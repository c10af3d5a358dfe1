package terrain

import (
	"fmt"
	"math"
	"sort"
)

// Easing is a monotonic remap of [0, 1] onto [0, 1].
type Easing func(t float64) float64

// Linear leaves t unchanged.
func Linear(t float64) float64 { return t }

// EaseIn starts flat and accelerates (cubic).
func EaseIn(t float64) float64 { return t * t * t }

// EaseOut starts steep and flattens out.
func EaseOut(t float64) float64 {
	y := 1 - t
	return 1 - y*y*y
}

// EaseInOut is smoothstep: flat at both ends.
func EaseInOut(t float64) float64 { return t * t * (3 - 2*t) }

// InEaseOut is steep at both ends and flat in the middle.
func InEaseOut(t float64) float64 {
	y := 2*t - 1
	return 0.5*y*y*y + 0.5
}

// EaseInWeak is a gentler EaseIn.
func EaseInWeak(t float64) float64 { return math.Pow(t, 1.55) }

// EaseInStrong pushes most of the terrain towards the floor.
func EaseInStrong(t float64) float64 { return math.Pow(t, 7) }

var easings = map[string]Easing{
	"linear":       Linear,
	"easein":       EaseIn,
	"easeout":      EaseOut,
	"easeinout":    EaseInOut,
	"ineaseout":    InEaseOut,
	"easeinweak":   EaseInWeak,
	"easeinstrong": EaseInStrong,
}

// EasingByName resolves a configured easing name such as "easeinout".
// The empty name means Linear.
func EasingByName(name string) (Easing, error) {
	if name == "" {
		return Linear, nil
	}
	e, ok := easings[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown easing %q", ErrOutOfRangeOption, name)
	}
	return e, nil
}

// EasingNames lists the names accepted by EasingByName.
func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for n := range easings {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
