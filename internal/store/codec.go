package store

import (
	"fmt"
	"reflect"
	"sync"
)

// The row codec maps record structs to flat tabular rows using their
// `csv` struct tags. Both backends share it: the CSV store for file
// headers and the Postgres store for column lists. All tagged fields
// must be strings.

type typeInfo struct {
	cols []string
	idx  map[string]int
}

var infoCache sync.Map // reflect.Type -> *typeInfo

func infoOf(t reflect.Type) *typeInfo {
	if v, ok := infoCache.Load(t); ok {
		return v.(*typeInfo)
	}
	ti := &typeInfo{idx: make(map[string]int)}
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("csv")
		if tag == "" || tag == "-" {
			continue
		}
		ti.cols = append(ti.cols, tag)
		ti.idx[tag] = i
	}
	infoCache.Store(t, ti)
	return ti
}

// Columns returns the tagged column names of T in declaration order.
func Columns[T any]() []string {
	var zero T
	ti := infoOf(reflect.TypeOf(zero))
	out := make([]string, len(ti.cols))
	copy(out, ti.cols)
	return out
}

// Encode flattens v into a row ordered like Columns[T]().
func Encode[T any](v T) []string {
	rv := reflect.ValueOf(v)
	ti := infoOf(rv.Type())
	rec := make([]string, len(ti.cols))
	for i, col := range ti.cols {
		rec[i] = rv.Field(ti.idx[col]).String()
	}
	return rec
}

// Decode builds a T from a row laid out per header. Columns absent
// from T are skipped, so stores tolerate files with extra columns.
func Decode[T any](header, rec []string) T {
	var v T
	rv := reflect.ValueOf(&v).Elem()
	ti := infoOf(rv.Type())
	for i, col := range header {
		if i >= len(rec) {
			break
		}
		if fi, ok := ti.idx[col]; ok {
			rv.Field(fi).SetString(rec[i])
		}
	}
	return v
}

// Field returns the value of the named column in v.
func Field[T any](v T, col string) (string, bool) {
	rv := reflect.ValueOf(v)
	ti := infoOf(rv.Type())
	fi, ok := ti.idx[col]
	if !ok {
		return "", false
	}
	return rv.Field(fi).String(), true
}

// Apply patches the named columns of v. Unknown columns are an error
// so handler typos surface instead of silently dropping data.
func Apply[T any](v *T, cols map[string]string) error {
	rv := reflect.ValueOf(v).Elem()
	ti := infoOf(rv.Type())
	for col, val := range cols {
		fi, ok := ti.idx[col]
		if !ok {
			return fmt.Errorf("store: unknown column %q", col)
		}
		rv.Field(fi).SetString(val)
	}
	return nil
}

// FillNA replaces empty tagged fields with the "na" placeholder. It is
// applied at the API boundary; stored rows keep empty cells.
func FillNA[T any](v T) T {
	rv := reflect.ValueOf(&v).Elem()
	ti := infoOf(rv.Type())
	for _, fi := range ti.idx {
		if f := rv.Field(fi); f.String() == "" {
			f.SetString("na")
		}
	}
	return v
}

// FillNAAll applies FillNA to every row.
func FillNAAll[T any](rows []T) []T {
	out := make([]T, len(rows))
	for i, r := range rows {
		out[i] = FillNA(r)
	}
	return out
}
