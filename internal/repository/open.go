package repository

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"spellbee/internal/config"
	"spellbee/internal/database"
	"spellbee/internal/logger"
	"spellbee/migrations"
)

// OpenKV opens the key-value backend named by cfg.StorageBackend. The
// returned func releases the backend.
func OpenKV(ctx context.Context, cfg *config.Config, log *logger.Logger) (KVStore, func() error, error) {
	switch cfg.StorageBackend {
	case "sql", "":
		db, err := database.InitializeWithConfig(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}

		var schema fs.FS = migrations.FS
		if cfg.MigrationsPath != "" {
			schema = os.DirFS(cfg.MigrationsPath)
		}
		applied, err := db.RunMigrations(ctx, schema)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("Database ready", "type", cfg.DatabaseType, "migrations_applied", len(applied))
		return NewSQLKVRepository(db), db.Close, nil

	case "redis":
		repo, err := NewRedisKVRepository(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err != nil {
			return nil, nil, err
		}
		log.Info("Redis ready", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
		return repo, repo.Close, nil

	case "memory":
		log.Warn("Using in-memory storage, progress is lost on exit")
		return NewMemoryKVRepository(), func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported storage backend: %s", cfg.StorageBackend)
	}
}
