// Package storage is the key-value store shared by every pipeline stage.
// Values are opaque JSON documents; there are no multi-key transactions, so
// readers re-check every key they depend on.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("storage: key not found")

// Store is an asynchronous key-value store. Implementations must be safe
// for concurrent use and must make each Set visible atomically.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, keys ...string) error
}

// BaseDir returns the root data directory (~/.cta).
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".cta"), nil
}
