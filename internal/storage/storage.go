package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	// Source heightmaps may come in any of these formats.
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	getter "github.com/hashicorp/go-getter"

	"github.com/OCharnyshevich/relief/internal/config"
	"github.com/OCharnyshevich/relief/pkg/heightfield"
	"github.com/OCharnyshevich/relief/pkg/terrain"
)

// Storage handles file-based persistence for config, source images and tiles.
type Storage struct {
	dir string
	log *slog.Logger
}

// New creates a new Storage rooted at dir, creating subdirectories as needed.
func New(dir string, log *slog.Logger) (*Storage, error) {
	dirs := []string{
		dir,
		filepath.Join(dir, "tiles"),
		filepath.Join(dir, "cache"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", d, err)
		}
	}
	return &Storage{dir: dir, log: log}, nil
}

// LoadConfig reads config.json into cfg. If the file does not exist, cfg is unchanged.
func (s *Storage) LoadConfig(cfg *config.Config) error {
	path := filepath.Join(s.dir, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	s.log.Info("loaded config from file", "path", path)
	return nil
}

// SaveConfig writes cfg to config.json atomically.
func (s *Storage) SaveConfig(cfg *config.Config) error {
	path := filepath.Join(s.dir, "config.json")
	return s.atomicWrite(path, func(f *os.File) error {
		return writeJSON(f, cfg)
	})
}

// FetchImage loads a source heightmap. Existing local paths are read
// directly; anything else is handed to go-getter (http, s3, gcs, git, ...)
// and cached under cache/.
func (s *Storage) FetchImage(ctx context.Context, src string) (image.Image, error) {
	local := src
	if _, err := os.Stat(src); err != nil {
		local = filepath.Join(s.dir, "cache", cacheName(src))
		pwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		client := &getter.Client{
			Ctx:  ctx,
			Src:  src,
			Dst:  local,
			Pwd:  pwd,
			Mode: getter.ClientModeFile,
		}
		s.log.Info("fetching heightmap", "src", src, "dst", local)
		if err := client.Get(); err != nil {
			return nil, fmt.Errorf("fetch heightmap %s: %w", src, err)
		}
	}

	f, err := os.Open(local)
	if err != nil {
		return nil, fmt.Errorf("open heightmap: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", terrain.ErrImageDecode, src, err)
	}
	b := img.Bounds()
	s.log.Info("decoded heightmap", "src", src, "format", format, "width", b.Dx(), "height", b.Dy())
	return img, nil
}

// SaveImage writes img as tiles/<name>.png atomically and returns its path.
func (s *Storage) SaveImage(name string, img image.Image) (string, error) {
	path := filepath.Join(s.dir, "tiles", name+".png")
	err := s.atomicWrite(path, func(f *os.File) error {
		if err := png.Encode(f, img); err != nil {
			return fmt.Errorf("encode png: %w", err)
		}
		return nil
	})
	return path, err
}

// SaveField writes the raw samples of f as tiles/<name>.json atomically.
func (s *Storage) SaveField(name string, f *heightfield.Field) (string, error) {
	path := filepath.Join(s.dir, "tiles", name+".json")
	err := s.atomicWrite(path, func(file *os.File) error {
		return writeJSON(file, FieldDataFromField(f))
	})
	return path, err
}

// atomicWrite writes through a temp file and renames it over path.
func (s *Storage) atomicWrite(path string, write func(f *os.File) error) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func writeJSON(f *os.File, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	data = append(data, '\n')
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// cacheName derives a stable file name for a remote source, keeping its
// extension so format sniffing logs stay readable.
func cacheName(src string) string {
	h := fnv.New64a()
	h.Write([]byte(src))
	p := src
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return fmt.Sprintf("%016x%s", h.Sum64(), path.Ext(p))
}
