package store

import (
	"context"
	"errors"
)

// ErrClosed is returned when a closed store is used.
var ErrClosed = errors.New("store: closed")

// ErrDecode is returned when a persisted value does not decode into the
// cell type.
var ErrDecode = errors.New("store: decode persisted value")

// Store is a key/value backend for encoded cell values.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save writes data under key, replacing any previous value.
	Save(ctx context.Context, key string, data []byte) error

	// Load returns the data stored under key.
	// Returns (nil, nil) if the key does not exist.
	Load(ctx context.Context, key string) ([]byte, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the store.
	Close() error
}
