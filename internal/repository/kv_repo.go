package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/squirrel"

	"spellbee/internal/database"
)

// SQLKVRepository stores key-value pairs in the kv_store table
type SQLKVRepository struct {
	db   *database.DB
	psql squirrel.StatementBuilderType
}

// NewSQLKVRepository creates a KV repository over db. Queries are built with
// ? placeholders; the database wrapper rewrites them for the active dialect.
func NewSQLKVRepository(db *database.DB) *SQLKVRepository {
	return &SQLKVRepository{
		db:   db,
		psql: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

// Get retrieves the value for key
func (r *SQLKVRepository) Get(ctx context.Context, key string) (string, error) {
	value, ok, err := r.get(ctx, r.db, key, false)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrKeyNotFound
	}
	return value, nil
}

// Set inserts or replaces the value for key
func (r *SQLKVRepository) Set(ctx context.Context, key, value string) error {
	return r.set(ctx, r.db, key, value)
}

// Delete removes key; deleting a missing key is not an error
func (r *SQLKVRepository) Delete(ctx context.Context, key string) error {
	query, args, err := r.psql.Delete("kv_store").Where(squirrel.Eq{"kv_key": key}).ToSql()
	if err != nil {
		return fmt.Errorf("build SQL query (key: %s): %w", key, err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete key %s: %w", key, err)
	}
	return nil
}

// Update runs fn against the current value inside a transaction and stores its result
func (r *SQLKVRepository) Update(ctx context.Context, key string, fn UpdateFunc) error {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, ok, err := r.get(ctx, tx, key, true)
	if err != nil {
		return err
	}

	next, err := fn(current, ok)
	if err != nil {
		return err
	}

	if !ok || next != current {
		if err := r.set(ctx, tx, key, next); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit key %s: %w", key, err)
	}
	return nil
}

// Keys lists stored keys that start with prefix, sorted
func (r *SQLKVRepository) Keys(ctx context.Context, prefix string) ([]string, error) {
	builder := r.psql.Select("kv_key").From("kv_store").OrderBy("kv_key")
	if prefix != "" {
		builder = builder.Where(squirrel.Like{"kv_key": prefix + "%"})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build SQL query (prefix: %s): %w", prefix, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list keys (prefix: %s): %w", prefix, err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		// LIKE treats _ and % in the prefix as wildcards
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list keys (prefix: %s): %w", prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (r *SQLKVRepository) get(ctx context.Context, q database.DBTX, key string, forUpdate bool) (string, bool, error) {
	builder := r.psql.Select("kv_value").From("kv_store").Where(squirrel.Eq{"kv_key": key})
	if lock := strings.TrimSpace(q.GetDialect().LockClause()); forUpdate && lock != "" {
		builder = builder.Suffix(lock)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return "", false, fmt.Errorf("build SQL query (key: %s): %w", key, err)
	}

	var value string
	err = q.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get key %s: %w", key, err)
	}
	return value, true, nil
}

func (r *SQLKVRepository) set(ctx context.Context, q database.DBTX, key, value string) error {
	if _, err := q.ExecContext(ctx, q.GetDialect().UpsertKVQuery(), key, value); err != nil {
		return fmt.Errorf("set key %s: %w", key, err)
	}
	return nil
}
