package config

import (
	"encoding/json"
	"fmt"
	"hash/fnv"

	"github.com/OCharnyshevich/relief/pkg/terrain"
	"github.com/OCharnyshevich/relief/pkg/terrain/blur"
	"github.com/OCharnyshevich/relief/pkg/terrain/gen"
)

// Config holds the relief tool configuration.
type Config struct {
	Generator      string `json:"generator"` // "diamondsquare", "perlin", "simplex" or "image"
	WidthSegments  int    `json:"width_segments"`
	HeightSegments int    `json:"height_segments"`
	Seed           int64  `json:"seed"`
	Tiles          int    `json:"tiles"`     // number of tiles built from seed, seed+1, ...
	Heightmap      string `json:"heightmap"` // source image path or URL for the image generator

	MinHeight           float64 `json:"min_height"`
	MaxHeight           float64 `json:"max_height"`
	Frequency           float64 `json:"frequency"`
	Roughness           float64 `json:"roughness"`
	Steps               int     `json:"steps"`
	Turbulent           bool    `json:"turbulent"`
	TurbulenceOctaves   int     `json:"turbulence_octaves"`
	TurbulenceAmplitude float64 `json:"turbulence_amplitude"`
	Noise               string  `json:"noise"`
	Stretch             bool    `json:"stretch"`
	Easing              string  `json:"easing"`

	// Extra Gaussian blur applied after the pipeline (0 = none).
	BlurRadius float64 `json:"blur_radius"`
	BlurPasses int     `json:"blur_passes"`

	Output    string `json:"-"`          // output directory, also holds config.json
	WriteJSON bool   `json:"write_json"` // also dump raw samples as JSON
	Cache     bool   `json:"cache"`      // reuse tiles from <output>/cache/tiles.db
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	o := terrain.DefaultOptions()
	return &Config{
		Generator:           gen.KindDiamondSquare.String(),
		WidthSegments:       127,
		HeightSegments:      127,
		Tiles:               1,
		MinHeight:           o.MinHeight,
		MaxHeight:           o.MaxHeight,
		Frequency:           o.Frequency,
		Roughness:           o.Roughness,
		Steps:               o.Steps,
		TurbulenceOctaves:   o.TurbulenceOctaves,
		TurbulenceAmplitude: o.TurbulenceAmplitude,
		Noise:               string(o.Noise),
		Stretch:             o.Stretch,
		Easing:              "linear",
		BlurPasses:          blur.DefaultParams().Passes,
		Output:              "out",
		Cache:               true,
	}
}

// Options converts the configuration into engine options.
func (c *Config) Options() (terrain.Options, error) {
	easing, err := terrain.EasingByName(c.Easing)
	if err != nil {
		return terrain.Options{}, err
	}
	o := terrain.Options{
		MinHeight:           c.MinHeight,
		MaxHeight:           c.MaxHeight,
		Frequency:           c.Frequency,
		Roughness:           c.Roughness,
		Steps:               c.Steps,
		Turbulent:           c.Turbulent,
		TurbulenceOctaves:   c.TurbulenceOctaves,
		TurbulenceAmplitude: c.TurbulenceAmplitude,
		Noise:               terrain.Noise(c.Noise),
		Stretch:             c.Stretch,
		Easing:              easing,
	}
	if err := o.Validate(); err != nil {
		return terrain.Options{}, err
	}
	return o, nil
}

// Kind resolves the configured generator.
func (c *Config) Kind() (gen.Kind, error) {
	return gen.ParseKind(c.Generator)
}

// Blur returns the post-pipeline blur, or ok=false when disabled.
func (c *Config) Blur() (p blur.Params, ok bool) {
	if c.BlurRadius == 0 {
		return blur.Params{}, false
	}
	return blur.Params{Radius: c.BlurRadius, Passes: c.BlurPasses}, true
}

// Validate checks the fields that the engine does not validate itself.
func (c *Config) Validate() error {
	if _, err := c.Kind(); err != nil {
		return err
	}
	if _, err := c.Options(); err != nil {
		return err
	}
	if c.Tiles < 1 {
		return fmt.Errorf("%w: tiles %d must be at least 1", terrain.ErrOutOfRangeOption, c.Tiles)
	}
	if p, ok := c.Blur(); ok {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	if c.Generator == gen.KindImage.String() && c.Heightmap == "" {
		return fmt.Errorf("%w: image generator needs a heightmap source", terrain.ErrOutOfRangeOption)
	}
	if c.Output == "" {
		return fmt.Errorf("%w: output directory required", terrain.ErrOutOfRangeOption)
	}
	return nil
}

// Fingerprint identifies the terrain a config produces for a given seed.
// Fields that do not change tile contents are left out.
func (c *Config) Fingerprint() string {
	k := *c
	k.Seed, k.Tiles = 0, 0
	k.WriteJSON, k.Cache = false, false
	data, _ := json.Marshal(k)

	h := fnv.New64a()
	h.Write(data)
	return fmt.Sprintf("%016x", h.Sum64())
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	mergeField(&cfg.Generator, fromFile.Generator, !explicitFlags["generator"])
	mergeField(&cfg.WidthSegments, fromFile.WidthSegments, !explicitFlags["width"])
	mergeField(&cfg.HeightSegments, fromFile.HeightSegments, !explicitFlags["height"])
	mergeField(&cfg.Seed, fromFile.Seed, !explicitFlags["seed"])
	mergeField(&cfg.Tiles, fromFile.Tiles, !explicitFlags["tiles"])
	mergeField(&cfg.Heightmap, fromFile.Heightmap, !explicitFlags["heightmap"])
	mergeField(&cfg.MinHeight, fromFile.MinHeight, !explicitFlags["min-height"])
	mergeField(&cfg.MaxHeight, fromFile.MaxHeight, !explicitFlags["max-height"])
	mergeField(&cfg.Frequency, fromFile.Frequency, !explicitFlags["frequency"])
	mergeField(&cfg.Roughness, fromFile.Roughness, !explicitFlags["roughness"])
	mergeField(&cfg.Steps, fromFile.Steps, !explicitFlags["steps"])
	mergeField(&cfg.Turbulent, fromFile.Turbulent, !explicitFlags["turbulent"])
	mergeField(&cfg.TurbulenceOctaves, fromFile.TurbulenceOctaves, !explicitFlags["turbulence-octaves"])
	mergeField(&cfg.TurbulenceAmplitude, fromFile.TurbulenceAmplitude, !explicitFlags["turbulence-amplitude"])
	mergeField(&cfg.Noise, fromFile.Noise, !explicitFlags["noise"])
	mergeField(&cfg.Stretch, fromFile.Stretch, !explicitFlags["stretch"])
	mergeField(&cfg.Easing, fromFile.Easing, !explicitFlags["easing"])
	mergeField(&cfg.BlurRadius, fromFile.BlurRadius, !explicitFlags["blur"])
	mergeField(&cfg.BlurPasses, fromFile.BlurPasses, !explicitFlags["blur-passes"])
	mergeField(&cfg.WriteJSON, fromFile.WriteJSON, !explicitFlags["json"])
	mergeField(&cfg.Cache, fromFile.Cache, !explicitFlags["cache"])
}

func mergeField[T any](dst *T, v T, take bool) {
	if take {
		*dst = v
	}
}
