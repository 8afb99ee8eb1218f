package repository

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when the key has never been set
var ErrKeyNotFound = errors.New("key not found")

// UpdateFunc receives the current value (ok is false when the key is absent)
// and returns the value to store. Returning an error aborts the update and
// the error is passed back to the caller unchanged.
type UpdateFunc func(current string, ok bool) (string, error)

// KVStore is the persistence substrate for the progress store and user registry
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// Update performs an atomic read-modify-write of key
	Update(ctx context.Context, key string, fn UpdateFunc) error
	// Keys lists stored keys starting with prefix
	Keys(ctx context.Context, prefix string) ([]string, error)
}
