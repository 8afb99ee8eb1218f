package repository

import (
	"context"
	"path/filepath"
	"testing"

	"spellbee/internal/config"
	"spellbee/internal/logger"
)

func TestOpenKV(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     *config.Config
		wantErr bool
	}{
		{name: "memory", cfg: &config.Config{StorageBackend: "memory"}},
		{name: "sqlite", cfg: &config.Config{StorageBackend: "sql", DatabaseType: "sqlite", DatabasePath: filepath.Join(t.TempDir(), "kv.db")}},
		{name: "unknown backend", cfg: &config.Config{StorageBackend: "etcd"}, wantErr: true},
		{name: "unknown database", cfg: &config.Config{StorageBackend: "sql", DatabaseType: "oracle"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv, closeFn, err := OpenKV(ctx, tt.cfg, logger.Nop())
			if (err != nil) != tt.wantErr {
				t.Fatalf("OpenKV() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			defer closeFn()

			if err := kv.Set(ctx, "k", "v"); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if got, err := kv.Get(ctx, "k"); err != nil || got != "v" {
				t.Errorf("Get() = %q, %v", got, err)
			}
		})
	}
}
