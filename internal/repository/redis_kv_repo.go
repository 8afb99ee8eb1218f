package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const maxUpdateRetries = 10

// RedisKVRepository stores key-value pairs as plain Redis strings under a prefix
type RedisKVRepository struct {
	rdb    *goredis.Client
	prefix string
}

// RedisOptions configures the Redis connection
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedisKVRepository connects to Redis and verifies the connection
func NewRedisKVRepository(ctx context.Context, opts RedisOptions) (*RedisKVRepository, error) {
	if strings.TrimSpace(opts.Addr) == "" {
		return nil, fmt.Errorf("missing redis address")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisKVRepository{rdb: rdb, prefix: opts.Prefix}, nil
}

// Close closes the underlying client
func (r *RedisKVRepository) Close() error {
	return r.rdb.Close()
}

func (r *RedisKVRepository) key(k string) string {
	return r.prefix + k
}

// Get retrieves the value for key
func (r *RedisKVRepository) Get(ctx context.Context, key string) (string, error) {
	value, err := r.rdb.Get(ctx, r.key(key)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key without expiry
func (r *RedisKVRepository) Set(ctx context.Context, key, value string) error {
	if err := r.rdb.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes key
func (r *RedisKVRepository) Delete(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Update applies fn under WATCH and retries when another client wrote the key first
func (r *RedisKVRepository) Update(ctx context.Context, key string, fn UpdateFunc) error {
	full := r.key(key)

	txf := func(tx *goredis.Tx) error {
		current, err := tx.Get(ctx, full).Result()
		ok := true
		if errors.Is(err, goredis.Nil) {
			current, ok = "", false
		} else if err != nil {
			return fmt.Errorf("redis get %s: %w", key, err)
		}

		next, err := fn(current, ok)
		if err != nil {
			return err
		}
		if ok && next == current {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, full, next, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := r.rdb.Watch(ctx, txf, full)
		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("redis update %s: too many concurrent writers", key)
}

// Keys lists stored keys that start with prefix, sorted
func (r *RedisKVRepository) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys := []string{}
	iter := r.rdb.Scan(ctx, 0, r.key(prefix)+"*", 100).Iterator()
	for iter.Next(ctx) {
		k := strings.TrimPrefix(iter.Val(), r.prefix)
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan %s: %w", prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}
