package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nerrad567/gray-logic-assistant/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-assistant/internal/infrastructure/database"
	_ "github.com/nerrad567/gray-logic-assistant/migrations"
)

func testConfig(t *testing.T) config.DatabaseConfig {
	t.Helper()
	return config.DatabaseConfig{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	}
}

func TestOpen(t *testing.T) {
	t.Run("creates database file and directory", func(t *testing.T) {
		ctx := context.Background()
		cfg := testConfig(t)
		cfg.Path = filepath.Join(t.TempDir(), "nested", "dir", "test.db")

		db, err := database.Open(ctx, cfg)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer db.Close()

		if db.Path() != cfg.Path {
			t.Errorf("Path() = %q, want %q", db.Path(), cfg.Path)
		}
	})

	t.Run("health check passes on open database", func(t *testing.T) {
		ctx := context.Background()
		db, err := database.Open(ctx, testConfig(t))
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer db.Close()

		if err := db.HealthCheck(ctx); err != nil {
			t.Errorf("HealthCheck() error = %v", err)
		}
	})

	t.Run("health check fails on closed database", func(t *testing.T) {
		ctx := context.Background()
		db, err := database.Open(ctx, testConfig(t))
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		db.Close()

		if err := db.HealthCheck(ctx); err == nil {
			t.Error("HealthCheck() on closed DB should fail")
		}
	})
}

func TestMigrate(t *testing.T) {
	ctx := context.Background()

	t.Run("applies migrations and records versions", func(t *testing.T) {
		db, err := database.Open(ctx, testConfig(t))
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			t.Fatalf("Migrate() error = %v", err)
		}

		var count int
		if err := db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("querying schema_migrations: %v", err)
		}
		if count == 0 {
			t.Error("no migrations recorded")
		}

		// The entities table must exist after migration.
		if _, err := db.ExecContext(ctx,
			"SELECT entity_id, domain, state, attributes, updated_at FROM entities LIMIT 1"); err != nil {
			t.Errorf("entities table not usable: %v", err)
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		db, err := database.Open(ctx, testConfig(t))
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			t.Fatalf("first Migrate() error = %v", err)
		}
		if err := db.Migrate(ctx); err != nil {
			t.Fatalf("second Migrate() error = %v", err)
		}
	})
}
