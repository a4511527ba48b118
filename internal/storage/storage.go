// Package storage provides the durable key-value store that backs carts,
// sessions, recent searches, orders and the catalog. Values are opaque JSON
// documents; typed access lives in the store package.
package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

// UpdateFunc receives the current value of a key (found is false when the
// key is absent) and returns its replacement. Returning a nil slice deletes
// the key.
type UpdateFunc func(current []byte, found bool) ([]byte, error)

type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Update applies fn atomically with respect to other Update calls on the
	// same key.
	Update(ctx context.Context, key string, fn UpdateFunc) error
}
