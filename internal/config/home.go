package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
)

type homeKey struct{}

// WithHome stores the marketplace home path in the context.
func WithHome(ctx context.Context, home string) context.Context {
	return context.WithValue(ctx, homeKey{}, home)
}

// HomeFrom returns the marketplace home path from the context, if set.
func HomeFrom(ctx context.Context) (string, bool) {
	v := ctx.Value(homeKey{})
	s, ok := v.(string)
	return s, ok
}

// MustHomeFrom returns the home path from the context, or panics if not set.
func MustHomeFrom(ctx context.Context) string {
	if h, ok := HomeFrom(ctx); ok && h != "" {
		return h
	}
	panic("agents-store home missing from context")
}

// ResolveHome returns the marketplace home directory (override,
// AGENTS_STORE_HOME, or default ~/.agents-store). Data files, generated
// documents, and the env file live under it.
func ResolveHome(override string) (string, error) {
	if override != "" {
		return filepath.Clean(override), nil
	}
	if env := os.Getenv("AGENTS_STORE_HOME"); env != "" {
		return filepath.Clean(env), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("could not determine user home directory")
	}
	return filepath.Join(home, ".agents-store"), nil
}

// DataDir returns the tabular data directory under home.
func DataDir(home string) string { return filepath.Join(home, "data") }

// DocumentsDir returns the generated-documents directory under home.
func DocumentsDir(home string) string { return filepath.Join(home, "documents") }
