// Package tilecache keeps built tiles in a LevelDB database so repeated
// runs with the same settings skip generation.
package tilecache

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/OCharnyshevich/relief/internal/storage"
	"github.com/OCharnyshevich/relief/pkg/heightfield"
)

// Cache is a LevelDB-backed store of height fields keyed by string.
type Cache struct {
	db  *leveldb.DB
	log *slog.Logger
}

// Open opens (or creates) the database at path.
func Open(path string, log *slog.Logger) (*Cache, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open tile cache %s: %w", path, err)
	}
	return &Cache{db: db, log: log}, nil
}

// Close releases the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the field stored under key. ok is false on a miss.
func (c *Cache) Get(key string) (f *heightfield.Field, ok bool, err error) {
	v, err := c.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}

	var fd storage.FieldData
	if err := json.Unmarshal(v, &fd); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", key, err)
	}
	f, err = fd.Field()
	if err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return f, true, nil
}

// Put stores a snapshot of f under key.
func (c *Cache) Put(key string, f *heightfield.Field) error {
	b, err := json.Marshal(storage.FieldDataFromField(f))
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.db.Put([]byte(key), b, nil); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	c.log.Debug("cached tile", "key", key, "bytes", len(b))
	return nil
}

// Purge deletes every key starting with prefix and returns how many were removed.
func (c *Cache) Purge(prefix string) (int, error) {
	iter := c.db.NewIterator(util.BytesPrefix([]byte(prefix)), nil)
	defer iter.Release()

	batch := new(leveldb.Batch)
	for iter.Next() {
		batch.Delete(append([]byte(nil), iter.Key()...))
	}
	if err := iter.Error(); err != nil {
		return 0, fmt.Errorf("scan %s: %w", prefix, err)
	}
	if err := c.db.Write(batch, nil); err != nil {
		return 0, fmt.Errorf("purge %s: %w", prefix, err)
	}
	c.log.Debug("purged tiles", "prefix", prefix, "count", batch.Len())
	return batch.Len(), nil
}
