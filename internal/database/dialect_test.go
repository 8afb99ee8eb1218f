package database

import (
	"strings"
	"testing"
)

func TestDialectSQLite(t *testing.T) {
	dialect := NewSQLiteDialect()

	t.Run("DriverName", func(t *testing.T) {
		if got := dialect.DriverName(); got != "sqlite3" {
			t.Errorf("DriverName() = %v, want sqlite3", got)
		}
	})

	t.Run("DSN", func(t *testing.T) {
		tests := []struct {
			path string
			want string
		}{
			{path: "spellbee.db", want: "spellbee.db?_txlock=immediate&_busy_timeout=5000"},
			{path: "file:spellbee.db?cache=shared", want: "file:spellbee.db?cache=shared&_txlock=immediate&_busy_timeout=5000"},
		}
		for _, tt := range tests {
			if got := dialect.DSN(DialectConfig{Path: tt.path}); got != tt.want {
				t.Errorf("DSN(%q) = %q, want %q", tt.path, got, tt.want)
			}
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		if got := dialect.MigrationsSubdir(); got != "sqlite" {
			t.Errorf("MigrationsSubdir() = %v, want sqlite", got)
		}
	})

	t.Run("LockClause", func(t *testing.T) {
		if got := dialect.LockClause(); got != "" {
			t.Errorf("LockClause() = %q, want empty", got)
		}
	})
}

func TestDialectPostgreSQL(t *testing.T) {
	dialect := NewPostgresDialect()

	t.Run("DriverName", func(t *testing.T) {
		if got := dialect.DriverName(); got != "postgres" {
			t.Errorf("DriverName() = %v, want postgres", got)
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		if got := dialect.MigrationsSubdir(); got != "postgres" {
			t.Errorf("MigrationsSubdir() = %v, want postgres", got)
		}
	})

	t.Run("UpsertKVQuery", func(t *testing.T) {
		got := dialect.RewriteQuery(dialect.UpsertKVQuery())
		if !strings.Contains(got, "VALUES ($1, $2,") {
			t.Errorf("rewritten upsert = %q, want numbered placeholders", got)
		}
		if !strings.Contains(got, "ON CONFLICT (kv_key)") {
			t.Errorf("upsert = %q, want ON CONFLICT clause", got)
		}
	})
}

func TestDialectMySQL(t *testing.T) {
	dialect := NewMySQLDialect()

	t.Run("DriverName", func(t *testing.T) {
		if got := dialect.DriverName(); got != "mysql" {
			t.Errorf("DriverName() = %v, want mysql", got)
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		if got := dialect.MigrationsSubdir(); got != "mysql" {
			t.Errorf("MigrationsSubdir() = %v, want mysql", got)
		}
	})

	t.Run("UpsertKVQuery", func(t *testing.T) {
		if got := dialect.UpsertKVQuery(); !strings.Contains(got, "ON DUPLICATE KEY UPDATE") {
			t.Errorf("UpsertKVQuery() = %q, want ON DUPLICATE KEY UPDATE", got)
		}
	})
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{
			name:     "SQLite no change",
			dialect:  NewSQLiteDialect(),
			query:    "SELECT kv_value FROM kv_store WHERE kv_key = ?",
			expected: "SELECT kv_value FROM kv_store WHERE kv_key = ?",
		},
		{
			name:     "PostgreSQL single placeholder",
			dialect:  NewPostgresDialect(),
			query:    "SELECT kv_value FROM kv_store WHERE kv_key = ?",
			expected: "SELECT kv_value FROM kv_store WHERE kv_key = $1",
		},
		{
			name:     "PostgreSQL multiple placeholders",
			dialect:  NewPostgresDialect(),
			query:    "INSERT INTO kv_store (kv_key, kv_value) VALUES (?, ?)",
			expected: "INSERT INTO kv_store (kv_key, kv_value) VALUES ($1, $2)",
		},
		{
			name:     "MySQL no change",
			dialect:  NewMySQLDialect(),
			query:    "DELETE FROM kv_store WHERE kv_key = ?",
			expected: "DELETE FROM kv_store WHERE kv_key = ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.dialect.RewriteQuery(tt.query); result != tt.expected {
				t.Errorf("RewriteQuery() = %v, want %v", result, tt.expected)
			}
		})
	}
}
