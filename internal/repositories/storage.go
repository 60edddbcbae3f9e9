package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// StorageRepository persists string values under string keys in the storage table.
//
// It plays the role browser local storage plays for a web client: a handful of named slots that survive restarts.
type StorageRepository struct {
	db *sql.DB
}

// NewStorageRepository creates a new [StorageRepository] with the given database connection
func NewStorageRepository(db *sql.DB) *StorageRepository {
	return &StorageRepository{db: db}
}

// Get returns the value stored under key. ok is false when the key is absent.
func (r *StorageRepository) Get(key string) (value string, ok bool, err error) {
	err = r.db.QueryRow("SELECT value FROM storage WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read storage key %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value
func (r *StorageRepository) Set(key, value string) error {
	query := `
		INSERT INTO storage (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	if _, err := r.db.Exec(query, key, value, time.Now()); err != nil {
		return fmt.Errorf("failed to write storage key %s: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (r *StorageRepository) Remove(key string) error {
	if _, err := r.db.Exec("DELETE FROM storage WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to remove storage key %s: %w", key, err)
	}
	return nil
}

// Keys lists stored keys in lexical order
func (r *StorageRepository) Keys() ([]string, error) {
	rows, err := r.db.Query("SELECT key FROM storage ORDER BY key ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query storage keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan storage key: %w", err)
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return keys, nil
}

// Slot binds a [StorageRepository] to a single key.
//
// Slot satisfies session.Store.
type Slot struct {
	repo *StorageRepository
	key  string
}

// NewSlot returns the slot named key in repo.
func NewSlot(repo *StorageRepository, key string) *Slot {
	return &Slot{repo: repo, key: key}
}

// Key returns the slot's storage key
func (s *Slot) Key() string { return s.key }

func (s *Slot) Load() (string, bool, error) { return s.repo.Get(s.key) }
func (s *Slot) Save(value string) error     { return s.repo.Set(s.key, value) }
func (s *Slot) Clear() error                { return s.repo.Remove(s.key) }
