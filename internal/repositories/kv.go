package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/sonar/internal/shared"
)

// KVRepository persists string key/value pairs in the client_storage table.
//
// It satisfies client.Storage, giving the CLI the same durable storage a browser
// build gets from localStorage.
type KVRepository struct {
	db *sql.DB
}

// NewKVRepository creates a new [KVRepository] with the given database connection
func NewKVRepository(db *sql.DB) *KVRepository {
	return &KVRepository{db: db}
}

// Get returns the value stored under key, or [shared.ErrNotFound].
func (r *KVRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM client_storage WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", shared.ErrNotFound, key)
	}
	if err != nil {
		return "", fmt.Errorf("failed to query client storage: %w", err)
	}
	return value, nil
}

// GetItem returns the stored value and whether it was found.
// Query failures are reported as absent.
func (r *KVRepository) GetItem(key string) (string, bool) {
	value, err := r.Get(key)
	if err != nil {
		return "", false
	}
	return value, true
}

// SetItem inserts or replaces the value stored under key.
func (r *KVRepository) SetItem(key, value string) error {
	query := `
		INSERT INTO client_storage (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := r.db.Exec(query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to write client storage: %w", err)
	}
	return nil
}

// RemoveItem deletes key. Removing a missing key is not an error.
func (r *KVRepository) RemoveItem(key string) error {
	if _, err := r.db.Exec("DELETE FROM client_storage WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete from client storage: %w", err)
	}
	return nil
}

// Keys lists every stored key in lexical order.
func (r *KVRepository) Keys() ([]string, error) {
	rows, err := r.db.Query("SELECT key FROM client_storage ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to list client storage: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
