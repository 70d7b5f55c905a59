package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("key not found")

// Store is the read side of the client data backend consulted by the scoring
// engine. Implementations must be safe for concurrent reads.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// NopStore is a Store with no data. Every lookup misses.
type NopStore struct{}

// Get always returns ErrNotFound.
func (NopStore) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, ErrNotFound
}
