package csvstore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/vigneshgurumohan/agents-store/internal/store"
)

// Generic table plumbing. All helpers assume s.mu is held; exported
// Store methods in queries.go do the locking.

// rawLocked reads the file as-is, header included. Missing files read
// as empty tables.
func (s *Store) rawLocked(table string) ([][]string, error) {
	f, err := os.Open(s.path(table))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	recs, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csvstore: read %s: %w", table, err)
	}
	return recs, nil
}

func readLocked[T any](s *Store, table string) ([]T, error) {
	if v, ok := s.cache.Get(table); ok {
		if rows, ok := v.([]T); ok {
			return rows, nil
		}
	}
	recs, err := s.rawLocked(table)
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	header := recs[0]
	rows := make([]T, 0, len(recs)-1)
	for _, rec := range recs[1:] {
		rows = append(rows, store.Decode[T](header, rec))
	}
	s.cache.Set(table, rows, int64(len(rows))+1)
	return rows, nil
}

// writeLocked rewrites the whole table through a temp file and
// replaces the cached copy. The header is always the canonical column
// set, so files written once stay aligned with the codec. Columns
// outside the schema are readable until the first write, then dropped;
// migrate legacy columns before pointing the server at old data.
func writeLocked[T any](s *Store, table string, rows []T) error {
	tmp, err := os.CreateTemp(s.dir, table+".csv.tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(store.Columns[T]()); err != nil {
		tmp.Close()
		return err
	}
	for _, row := range rows {
		if err := w.Write(store.Encode(row)); err != nil {
			tmp.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), s.path(table)); err != nil {
		return err
	}
	s.cache.Del(table)
	s.cache.Set(table, rows, int64(len(rows))+1)
	return nil
}

func appendLocked[T any](s *Store, table string, add []T) error {
	rows, err := readLocked[T](s, table)
	if err != nil {
		return err
	}
	next := make([]T, 0, len(rows)+len(add))
	next = append(next, rows...)
	next = append(next, add...)
	return writeLocked(s, table, next)
}

func filterLocked[T any](s *Store, table, col, val string) ([]T, error) {
	rows, err := readLocked[T](s, table)
	if err != nil {
		return nil, err
	}
	var out []T
	for _, row := range rows {
		if v, ok := store.Field(row, col); ok && v == val {
			out = append(out, row)
		}
	}
	return out, nil
}

func firstLocked[T any](s *Store, table, col, val string) (*T, error) {
	rows, err := filterLocked[T](s, table, col, val)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}
	return &rows[0], nil
}

// updateLocked patches cols on every row matching col=val and returns
// the match count.
func updateLocked[T any](s *Store, table, col, val string, cols map[string]string) (int, error) {
	rows, err := readLocked[T](s, table)
	if err != nil {
		return 0, err
	}
	next := make([]T, len(rows))
	copy(next, rows)
	n := 0
	for i := range next {
		v, ok := store.Field(next[i], col)
		if !ok || v != val {
			continue
		}
		if err := store.Apply(&next[i], cols); err != nil {
			return 0, err
		}
		n++
	}
	if n == 0 {
		return 0, store.ErrNotFound
	}
	return n, writeLocked(s, table, next)
}

func deleteLocked[T any](s *Store, table, col, val string) error {
	rows, err := readLocked[T](s, table)
	if err != nil {
		return err
	}
	next := make([]T, 0, len(rows))
	for _, row := range rows {
		if v, ok := store.Field(row, col); ok && v == val {
			continue
		}
		next = append(next, row)
	}
	if len(next) == len(rows) {
		return nil
	}
	return writeLocked(s, table, next)
}
