package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"spellbee/internal/database"
	"spellbee/internal/logger"
	"spellbee/internal/repository"
	"spellbee/migrations"
)

var errBackendDown = errors.New("connection refused")

// failingKV is a KVStore whose every call fails
type failingKV struct{}

func (failingKV) Get(ctx context.Context, key string) (string, error) { return "", errBackendDown }
func (failingKV) Set(ctx context.Context, key, value string) error { return errBackendDown }
func (failingKV) Delete(ctx context.Context, key string) error { return errBackendDown }
func (failingKV) Update(ctx context.Context, key string, fn repository.UpdateFunc) error {
	return errBackendDown
}
func (failingKV) Keys(ctx context.Context, prefix string) ([]string, error) {
	return nil, errBackendDown
}

func newSQLiteKV(t *testing.T) repository.KVStore {
	t.Helper()
	db, err := database.Initialize(filepath.Join(t.TempDir(), "spellbee.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if _, err := db.RunMigrations(context.Background(), migrations.FS); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return repository.NewSQLKVRepository(db)
}

type fixture struct {
	kv       repository.KVStore
	store    *UserStore
	progress *ProgressService
	users    *UserService
	backup   *BackupService
	clock    *time.Time
}

// newFixture wires the services over kv with a controllable clock in UTC
func newFixture(t *testing.T, kv repository.KVStore) *fixture {
	t.Helper()
	log := logger.Nop()
	store := NewUserStore(kv, log)
	progress := NewProgressService(store, time.UTC, log)
	users := NewUserService(store, log)
	backup := NewBackupService(store, users, log)

	clock := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	f := &fixture{kv: kv, store: store, progress: progress, users: users, backup: backup, clock: &clock}
	progress.now = func() time.Time { return *f.clock }
	backup.now = func() time.Time { return *f.clock }
	return f
}

func (f *fixture) setDay(date string) {
	d, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		panic(err)
	}
	*f.clock = d.Add(15 * time.Hour)
}
