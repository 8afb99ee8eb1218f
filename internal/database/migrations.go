package database

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
)

// RunMigrations executes the dialect's SQL migration files from fsys in
// filename order, skipping the ones already recorded. It returns the
// filenames applied by this call.
func (db *DB) RunMigrations(ctx context.Context, fsys fs.FS) ([]string, error) {
	if _, err := db.ExecContext(ctx, db.Dialect.CreateMigrationsTableQuery()); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	files, err := fs.Glob(fsys, path.Join(db.Dialect.MigrationsSubdir(), "*.sql"))
	if err != nil {
		return nil, fmt.Errorf("failed to read migration files: %w", err)
	}
	sort.Strings(files)

	var applied []string
	for _, file := range files {
		filename := path.Base(file)

		hasRun, err := db.hasMigrationRun(ctx, filename)
		if err != nil {
			return applied, fmt.Errorf("failed to check migration status: %w", err)
		}
		if hasRun {
			continue
		}

		content, err := fs.ReadFile(fsys, file)
		if err != nil {
			return applied, fmt.Errorf("failed to read migration file %s: %w", filename, err)
		}

		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return applied, fmt.Errorf("failed to execute migration %s: %w", filename, err)
		}

		if err := db.recordMigration(ctx, filename); err != nil {
			return applied, fmt.Errorf("failed to record migration %s: %w", filename, err)
		}

		applied = append(applied, filename)
	}

	return applied, nil
}

// hasMigrationRun checks if a migration has already been executed
func (db *DB) hasMigrationRun(ctx context.Context, filename string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM migrations WHERE filename = ?", filename).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// recordMigration marks a migration as completed
func (db *DB) recordMigration(ctx context.Context, filename string) error {
	_, err := db.ExecContext(ctx, "INSERT INTO migrations (filename) VALUES (?)", filename)
	return err
}
