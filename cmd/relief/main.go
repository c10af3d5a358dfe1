package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/OCharnyshevich/relief/internal/config"
	"github.com/OCharnyshevich/relief/internal/pipeline"
	"github.com/OCharnyshevich/relief/internal/storage"
	"github.com/OCharnyshevich/relief/internal/tilecache"
	"github.com/OCharnyshevich/relief/pkg/terrain"
	"github.com/OCharnyshevich/relief/pkg/terrain/codec"
	"github.com/OCharnyshevich/relief/pkg/terrain/gen"
)

func main() {
	cfg := config.DefaultConfig()

	flag.StringVar(&cfg.Generator, "generator", cfg.Generator, "generator: diamondsquare, perlin, simplex or image")
	flag.IntVar(&cfg.WidthSegments, "width", cfg.WidthSegments, "width in segments (columns = width+1)")
	flag.IntVar(&cfg.HeightSegments, "height", cfg.HeightSegments, "height in segments (rows = height+1)")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed of the first tile")
	flag.IntVar(&cfg.Tiles, "tiles", cfg.Tiles, "number of tiles to build")
	flag.StringVar(&cfg.Heightmap, "heightmap", cfg.Heightmap, "source image path or URL for the image generator")
	flag.Float64Var(&cfg.MinHeight, "min-height", cfg.MinHeight, "lowest elevation")
	flag.Float64Var(&cfg.MaxHeight, "max-height", cfg.MaxHeight, "highest elevation")
	flag.Float64Var(&cfg.Frequency, "frequency", cfg.Frequency, "feature density")
	flag.Float64Var(&cfg.Roughness, "roughness", cfg.Roughness, "diamond-square displacement decay per level")
	flag.IntVar(&cfg.Steps, "steps", cfg.Steps, "number of terraces (<=1 disables)")
	flag.BoolVar(&cfg.Turbulent, "turbulent", cfg.Turbulent, "add turbulence")
	flag.IntVar(&cfg.TurbulenceOctaves, "turbulence-octaves", cfg.TurbulenceOctaves, "turbulence octave count")
	flag.Float64Var(&cfg.TurbulenceAmplitude, "turbulence-amplitude", cfg.TurbulenceAmplitude, "turbulence strength as a fraction of the height range")
	flag.StringVar(&cfg.Noise, "noise", cfg.Noise, "turbulence noise: perlin or simplex")
	flag.BoolVar(&cfg.Stretch, "stretch", cfg.Stretch, "stretch the observed range over min..max height")
	flag.StringVar(&cfg.Easing, "easing", cfg.Easing, "easing: "+strings.Join(terrain.EasingNames(), ", "))
	flag.Float64Var(&cfg.BlurRadius, "blur", cfg.BlurRadius, "extra gaussian blur radius after shaping (0 = none)")
	flag.IntVar(&cfg.BlurPasses, "blur-passes", cfg.BlurPasses, "box blur passes approximating the gaussian")
	flag.StringVar(&cfg.Output, "o", cfg.Output, "output directory (config.json is read from here)")
	flag.BoolVar(&cfg.WriteJSON, "json", cfg.WriteJSON, "also write raw samples as JSON")
	flag.BoolVar(&cfg.Cache, "cache", cfg.Cache, "reuse previously built tiles")
	save := flag.Bool("save-config", false, "write the effective config to config.json")
	purge := flag.Bool("purge-cache", false, "drop cached tiles built with the current settings before building")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, explicit, *save, *purge, log); err != nil {
		log.Error("relief failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, explicit map[string]bool, save, purge bool, log *slog.Logger) error {
	store, err := storage.New(cfg.Output, log)
	if err != nil {
		return err
	}

	fromFile := *cfg
	if err := store.LoadConfig(&fromFile); err != nil {
		return err
	}
	config.Merge(cfg, &fromFile, explicit)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if save {
		if err := store.SaveConfig(cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
	}

	opts, err := cfg.Options()
	if err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	kind, err := cfg.Kind()
	if err != nil {
		return fmt.Errorf("invalid generator: %w", err)
	}
	job := pipeline.Job{
		Request: gen.Request{
			Kind:           kind,
			WidthSegments:  cfg.WidthSegments,
			HeightSegments: cfg.HeightSegments,
		},
		Options: opts,
		Seed:    cfg.Seed,
		Tiles:   cfg.Tiles,
	}
	if p, ok := cfg.Blur(); ok {
		job.Blur = &p
	}
	if kind == gen.KindImage {
		img, err := store.FetchImage(ctx, cfg.Heightmap)
		if err != nil {
			return err
		}
		job.Request.Image = img
	}
	if cfg.Cache {
		cache, err := tilecache.Open(filepath.Join(cfg.Output, "cache", "tiles.db"), log)
		if err != nil {
			return err
		}
		defer cache.Close()
		job.Cache = cache
		job.CacheKey = cfg.Fingerprint()

		if purge {
			n, err := cache.Purge(job.CacheKey + "/")
			if err != nil {
				return err
			}
			log.Info("purged cached tiles", "fingerprint", job.CacheKey, "count", n)
		}
	}

	log.Info("building terrain",
		"generator", kind,
		"width", cfg.WidthSegments,
		"height", cfg.HeightSegments,
		"tiles", cfg.Tiles,
		"seed", cfg.Seed,
	)

	tiles, err := pipeline.New(log).BuildTiles(ctx, job)
	if err != nil {
		return err
	}

	for _, t := range tiles {
		name := fmt.Sprintf("tile-%03d", t.Index)
		path, err := store.SaveImage(name, codec.EncodeRange(t.Field, opts.MinHeight, opts.MaxHeight))
		if err != nil {
			return fmt.Errorf("save %s: %w", name, err)
		}
		log.Info("wrote heightmap", "path", path)

		if cfg.WriteJSON {
			path, err := store.SaveField(name, t.Field)
			if err != nil {
				return fmt.Errorf("save %s samples: %w", name, err)
			}
			log.Info("wrote samples", "path", path)
		}
	}
	return nil
}
