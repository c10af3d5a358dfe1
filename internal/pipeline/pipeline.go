package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/OCharnyshevich/relief/pkg/heightfield"
	"github.com/OCharnyshevich/relief/pkg/terrain"
	"github.com/OCharnyshevich/relief/pkg/terrain/blur"
	"github.com/OCharnyshevich/relief/pkg/terrain/filter"
	"github.com/OCharnyshevich/relief/pkg/terrain/gen"
)

// Job describes a batch of tiles sharing one generator and option set.
type Job struct {
	Request gen.Request
	Options terrain.Options
	Seed    int64
	Tiles   int
	// Blur, when non-nil, runs after normalization.
	Blur *blur.Params
	// Workers caps concurrent tiles; 0 means GOMAXPROCS.
	Workers int
	// Cache, when non-nil, serves and stores tiles under CacheKey/<seed>.
	// CacheKey must change whenever anything but the seed changes.
	Cache    Cache
	CacheKey string
}

// Cache stores built fields between runs.
type Cache interface {
	Get(key string) (*heightfield.Field, bool, error)
	Put(key string, f *heightfield.Field) error
}

// Tile is one built height field. The pipeline keeps no reference to Field.
type Tile struct {
	Index int
	Seed  int64
	Field *heightfield.Field
}

// Pipeline runs generation and normalization.
type Pipeline struct {
	log *slog.Logger
}

// New creates a Pipeline that logs to log.
func New(log *slog.Logger) *Pipeline {
	return &Pipeline{log: log}
}

// Build generates a field and runs it through filter.Normalize and the
// optional extra blur.
func (p *Pipeline) Build(req gen.Request, opts terrain.Options, src terrain.Source, extra *blur.Params) (*heightfield.Field, error) {
	if extra != nil {
		if err := extra.Validate(); err != nil {
			return nil, err
		}
	}

	f, err := gen.Generate(req, opts, src)
	if err != nil {
		return nil, fmt.Errorf("generate %s: %w", req.Kind, err)
	}
	if err := filter.Normalize(f, opts, src); err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	if extra != nil {
		if err := blur.Gaussian(f, *extra); err != nil {
			return nil, fmt.Errorf("blur: %w", err)
		}
	}
	return f, nil
}

// BuildTiles builds job.Tiles independent fields concurrently. Tile i uses
// its own random source seeded with job.Seed+i, so output does not depend
// on scheduling.
func (p *Pipeline) BuildTiles(ctx context.Context, job Job) ([]Tile, error) {
	if job.Tiles < 1 {
		return nil, fmt.Errorf("%w: tiles %d must be at least 1", terrain.ErrOutOfRangeOption, job.Tiles)
	}
	workers := job.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	tiles := make([]Tile, job.Tiles)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range tiles {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			seed := job.Seed + int64(i)
			key := fmt.Sprintf("%s/%d", job.CacheKey, seed)

			if job.Cache != nil {
				f, ok, err := job.Cache.Get(key)
				if err != nil {
					p.log.Warn("tile cache read failed", "key", key, "error", err)
				} else if ok {
					tiles[i] = Tile{Index: i, Seed: seed, Field: f}
					p.log.Info("cached tile", "index", i, "seed", seed)
					return nil
				}
			}

			f, err := p.Build(job.Request, job.Options, rand.New(rand.NewSource(seed)), job.Blur)
			if err != nil {
				return fmt.Errorf("tile %d: %w", i, err)
			}
			tiles[i] = Tile{Index: i, Seed: seed, Field: f}

			if job.Cache != nil {
				if err := job.Cache.Put(key, f); err != nil {
					p.log.Warn("tile cache write failed", "key", key, "error", err)
				}
			}

			lo, hi := f.MinMax()
			p.log.Info("built tile",
				"index", i,
				"seed", seed,
				"generator", job.Request.Kind,
				"cols", f.Cols(),
				"rows", f.Rows(),
				"min", lo,
				"max", hi,
				"elapsed", time.Since(start),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tiles, nil
}
