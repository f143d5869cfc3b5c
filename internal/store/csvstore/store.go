// Package csvstore implements store.Store over a directory of CSV
// files, one file per table. Reads go through a ristretto cache of
// parsed tables; every write rewrites the whole file and drops the
// cached copy.
package csvstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/dgraph-io/ristretto"

	"github.com/vigneshgurumohan/agents-store/internal/store"
	"github.com/vigneshgurumohan/agents-store/pkg/models"
)

// Store is the CSV implementation of store.Store. A single mutex
// covers all tables; the workload is read-heavy and files are small.
type Store struct {
	dir   string
	mu    sync.Mutex
	cache *ristretto.Cache
}

// Open opens (creating if needed) the data directory at dir.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("csvstore: data directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     1 << 24,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Store{dir: dir, cache: cache}, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string { return s.dir }

// Close releases the table cache.
func (s *Store) Close() error {
	if s == nil || s.cache == nil {
		return nil
	}
	s.cache.Close()
	return nil
}

func (s *Store) path(table string) string {
	return filepath.Join(s.dir, table+".csv")
}

// Health reports degraded when any table file is missing. A missing
// file is not fatal; reads treat it as an empty table.
func (s *Store) Health(ctx context.Context) models.Health {
	h := models.Health{Status: "healthy", DataSource: "csv"}
	if _, err := os.Stat(s.dir); err != nil {
		h.Status = "unhealthy"
		h.Error = err.Error()
		return h
	}
	for _, t := range store.Tables {
		if _, err := os.Stat(s.path(t)); errors.Is(err, fs.ErrNotExist) {
			h.MissingFiles = append(h.MissingFiles, t+".csv")
		}
	}
	if len(h.MissingFiles) > 0 {
		h.Status = "degraded"
	}
	return h
}

// NextID allocates the next sequential id for table.
func (s *Store) NextID(ctx context.Context, table string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextIDLocked(table)
}

func (s *Store) nextIDLocked(table string) (string, error) {
	col := store.IDColumn(table)
	if col == "" {
		return "", fmt.Errorf("csvstore: table %q has no id sequence", table)
	}
	ids, err := s.columnLocked(table, col)
	if err != nil {
		return "", err
	}
	return store.NextSequentialID(table, ids)
}

// columnLocked reads one raw column without decoding rows into structs.
func (s *Store) columnLocked(table, col string) ([]string, error) {
	recs, err := s.rawLocked(table)
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	idx := -1
	for i, name := range recs[0] {
		if name == col {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil
	}
	out := make([]string, 0, len(recs)-1)
	for _, rec := range recs[1:] {
		if idx < len(rec) {
			out = append(out, rec[idx])
		}
	}
	return out, nil
}
