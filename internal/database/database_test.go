package database

import (
	"context"
	"path/filepath"
	"testing"
)

func TestMigrate(t *testing.T) {
	ctx := context.Background()
	db, err := Open(filepath.Join(t.TempDir(), "portfolio.db"))
	if err != nil {
		t.Fatalf("Open() returned unexpected error: %v", err)
	}
	defer db.Close()

	t.Run("fresh database is pending", func(t *testing.T) {
		version, pending, err := SchemaStatus(ctx, db)
		if err != nil {
			t.Fatalf("SchemaStatus() returned unexpected error: %v", err)
		}
		if version != 0 || !pending {
			t.Errorf("Expected version 0 with pending migrations, got %d pending=%v", version, pending)
		}
	})

	t.Run("applies all migrations", func(t *testing.T) {
		version, err := Migrate(ctx, db)
		if err != nil {
			t.Fatalf("Migrate() returned unexpected error: %v", err)
		}
		if version != 2 {
			t.Errorf("Expected schema version 2, got %d", version)
		}

		for _, table := range []string{"users", "positions", "portfolio_history", "price_cache"} {
			var name string
			err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
			if err != nil {
				t.Errorf("Expected table %s to exist: %v", table, err)
			}
		}
	})

	// WHY: the server migrates on every start; a second run must be a no-op.
	t.Run("is idempotent", func(t *testing.T) {
		version, err := Migrate(ctx, db)
		if err != nil {
			t.Fatalf("Migrate() returned unexpected error: %v", err)
		}
		if version != 2 {
			t.Errorf("Expected schema version 2, got %d", version)
		}
		_, pending, err := SchemaStatus(ctx, db)
		if err != nil || pending {
			t.Errorf("Expected no pending migrations, got pending=%v err=%v", pending, err)
		}
	})

	t.Run("health check", func(t *testing.T) {
		if err := HealthCheck(db); err != nil {
			t.Errorf("HealthCheck() returned unexpected error: %v", err)
		}
	})
}
