package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// PostgresBlobStore keeps state blobs in a single key/value table with a
// JSONB value column.
type PostgresBlobStore struct {
	db *sqlx.DB
}

// NewPostgresBlobStore constructs a PostgresBlobStore.
func NewPostgresBlobStore(db *sqlx.DB) *PostgresBlobStore {
	return &PostgresBlobStore{db: db}
}

// EnsureSchema creates the backing table when missing.
func (s *PostgresBlobStore) EnsureSchema(ctx context.Context) error {
	const query = `CREATE TABLE IF NOT EXISTS app_state (
        key TEXT PRIMARY KEY,
        value JSONB NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL
    )`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure app_state schema: %w", err)
	}
	return nil
}

// Get returns the value stored under key, or ErrKeyNotFound.
func (s *PostgresBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	const query = `SELECT value FROM app_state WHERE key = $1`
	var value []byte
	if err := s.db.GetContext(ctx, &value, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("get state %s: %w", key, err)
	}
	return value, nil
}

// Set upserts the value under key.
func (s *PostgresBlobStore) Set(ctx context.Context, key string, value []byte) error {
	const query = `INSERT INTO app_state (key, value, updated_at) VALUES ($1, $2, $3)
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	if _, err := s.db.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("set state %s: %w", key, err)
	}
	return nil
}

// Delete removes the key if present.
func (s *PostgresBlobStore) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM app_state WHERE key = $1`
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("delete state %s: %w", key, err)
	}
	return nil
}
