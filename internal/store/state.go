package store

import (
	"context"
	"database/sql"
	"fmt"
)

// GetState returns the value stored under key. A missing key yields "" and false.
func GetState(ctx context.Context, db *sql.DB, key string) (string, bool, error) {
	var value string
	err := db.QueryRowContext(ctx,
		`SELECT value FROM local_state WHERE key = ?`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("querying state %q: %w", key, err)
	}
	return value, true, nil
}

// SetState stores value under key, replacing any previous value.
func SetState(ctx context.Context, db *sql.DB, key, value string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO local_state (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("storing state %q: %w", key, err)
	}
	return nil
}

// DeleteState removes key. Deleting a missing key is not an error.
func DeleteState(ctx context.Context, db *sql.DB, key string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM local_state WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting state %q: %w", key, err)
	}
	return nil
}

// StateStore exposes local_state as a key/value store for the session.
type StateStore struct {
	DB *sql.DB
}

// NewStateStore wraps db.
func NewStateStore(db *sql.DB) *StateStore {
	return &StateStore{DB: db}
}

func (s *StateStore) Get(ctx context.Context, key string) (string, bool, error) {
	return GetState(ctx, s.DB, key)
}

func (s *StateStore) Set(ctx context.Context, key, value string) error {
	return SetState(ctx, s.DB, key, value)
}

func (s *StateStore) Delete(ctx context.Context, key string) error {
	return DeleteState(ctx, s.DB, key)
}
