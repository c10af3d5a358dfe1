// Package gen populates height fields, either procedurally or from a raster image.
package gen

import (
	"fmt"
	"image"

	"github.com/OCharnyshevich/relief/pkg/heightfield"
	"github.com/OCharnyshevich/relief/pkg/terrain"
	"github.com/OCharnyshevich/relief/pkg/terrain/codec"
)

// Kind selects a generator.
type Kind int

const (
	KindDiamondSquare Kind = iota
	KindPerlin
	KindSimplex
	KindImage
)

var kindNames = map[Kind]string{
	KindDiamondSquare: "diamondsquare",
	KindPerlin:        "perlin",
	KindSimplex:       "simplex",
	KindImage:         "image",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind resolves a generator name as used in configuration files.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown generator %q", terrain.ErrOutOfRangeOption, name)
}

// Request describes the field to generate. WidthSegments and HeightSegments
// are ignored by KindImage, which takes its size from Image.
type Request struct {
	Kind           Kind
	WidthSegments  int
	HeightSegments int
	Image          image.Image
}

// Func is the signature shared by the procedural generators.
type Func func(widthSegments, heightSegments int, opts terrain.Options, src terrain.Source) (*heightfield.Field, error)

// Generate validates opts and dispatches on req.Kind.
func Generate(req Request, opts terrain.Options, src terrain.Source) (*heightfield.Field, error) {
	var fn Func
	switch req.Kind {
	case KindDiamondSquare:
		fn = DiamondSquare
	case KindPerlin:
		fn = Perlin
	case KindSimplex:
		fn = Simplex
	case KindImage:
		return FromImage(req.Image, opts)
	default:
		return nil, fmt.Errorf("%w: unknown generator kind %d", terrain.ErrOutOfRangeOption, int(req.Kind))
	}
	return fn(req.WidthSegments, req.HeightSegments, opts, src)
}

// FromImage decodes img into a field spanning [MinHeight, MaxHeight].
func FromImage(img image.Image, opts terrain.Options) (*heightfield.Field, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return codec.Decode(img, opts.MinHeight, opts.MaxHeight)
}

// prepare validates the request before any allocation happens.
func prepare(widthSegments, heightSegments int, opts terrain.Options, src terrain.Source) (*heightfield.Field, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("%w: random source is required", terrain.ErrOutOfRangeOption)
	}
	return heightfield.FromSegments(widthSegments, heightSegments)
}
