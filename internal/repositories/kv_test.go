package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/sonar/internal/shared"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	// Each :memory: connection is its own database.
	db.SetMaxOpenConns(1)

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func TestKVRepository(t *testing.T) {
	t.Run("Get Missing Key", func(t *testing.T) {
		repo := NewKVRepository(setupTestDB(t))

		_, err := repo.Get("spotify_access_token")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}

		if _, ok := repo.GetItem("spotify_access_token"); ok {
			t.Error("expected GetItem to report absence")
		}
	})

	t.Run("Set And Get", func(t *testing.T) {
		repo := NewKVRepository(setupTestDB(t))

		if err := repo.SetItem("spotify_access_token", "abc"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		value, ok := repo.GetItem("spotify_access_token")
		if !ok || value != "abc" {
			t.Errorf("expected abc, got %q (found=%v)", value, ok)
		}
	})

	t.Run("Set Overwrites", func(t *testing.T) {
		repo := NewKVRepository(setupTestDB(t))

		_ = repo.SetItem("k", "first")
		if err := repo.SetItem("k", "second"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		value, _ := repo.GetItem("k")
		if value != "second" {
			t.Errorf("expected second, got %q", value)
		}

		keys, err := repo.Keys()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(keys) != 1 {
			t.Errorf("expected 1 key, got %v", keys)
		}
	})

	t.Run("Remove Is Idempotent", func(t *testing.T) {
		repo := NewKVRepository(setupTestDB(t))

		_ = repo.SetItem("k", "v")
		if err := repo.RemoveItem("k"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := repo.RemoveItem("k"); err != nil {
			t.Fatalf("second remove should succeed, got %v", err)
		}
		if _, ok := repo.GetItem("k"); ok {
			t.Error("expected key to be removed")
		}
	})

	t.Run("Closed Database", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewKVRepository(db)
		db.Close()

		if err := repo.SetItem("k", "v"); err == nil {
			t.Error("expected error writing to closed database")
		}
		if _, ok := repo.GetItem("k"); ok {
			t.Error("expected absence from closed database")
		}
	})
}
