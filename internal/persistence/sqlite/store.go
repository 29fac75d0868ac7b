// Package sqlite persists the key-value snapshots in a single SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Store implements persistence.Store on top of SQLite.
type Store struct {
	pool *ConnectionPool
	now  func() time.Time
}

// Open connects to the database at dsn with default settings and creates the
// kv table when missing.
func Open(ctx context.Context, dsn string) (*Store, error) {
	return OpenWithConfig(ctx, DefaultConfig(dsn))
}

// OpenWithConfig connects using explicit connection settings.
func OpenWithConfig(ctx context.Context, config Config) (*Store, error) {
	pool, err := NewConnectionPool(config)
	if err != nil {
		return nil, err
	}
	store := &Store{pool: pool, now: time.Now}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.pool == nil {
		return nil
	}
	return s.pool.Close()
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.pool.DB().QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, mapError(err)
	}
	if value == nil {
		value = []byte{}
	}
	return value, true, nil
}

// Set upserts value under key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := s.pool.DB().ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, s.now().UTC().Format(time.RFC3339Nano))
	return mapError(err)
}

// Delete removes key. Deleting an absent key is a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.pool.DB().ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return mapError(err)
}

// Keys lists stored keys in lexical order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.pool.DB().QueryContext(ctx, `SELECT key FROM kv ORDER BY key ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, mapError(err)
		}
		keys = append(keys, key)
	}
	return keys, mapError(rows.Err())
}
