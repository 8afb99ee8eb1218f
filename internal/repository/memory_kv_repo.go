package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryKVRepository keeps values in process memory. Nothing survives a restart.
type MemoryKVRepository struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryKVRepository() *MemoryKVRepository {
	return &MemoryKVRepository{values: make(map[string]string)}
}

func (r *MemoryKVRepository) Get(ctx context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.values[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

func (r *MemoryKVRepository) Set(ctx context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value
	return nil
}

func (r *MemoryKVRepository) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.values, key)
	return nil
}

func (r *MemoryKVRepository) Update(ctx context.Context, key string, fn UpdateFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.values[key]
	next, err := fn(current, ok)
	if err != nil {
		return err
	}
	r.values[key] = next
	return nil
}

func (r *MemoryKVRepository) Keys(ctx context.Context, prefix string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := []string{}
	for k := range r.values {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
