package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Migration is one ordered schema step.
type Migration struct {
	Version     string
	Description string
	SQL         []string
}

// AppliedMigration is a row of the schema_migrations table.
type AppliedMigration struct {
	Version       string
	AppliedAt     time.Time
	ExecutionTime time.Duration
}

// MigrationError reports the step that failed.
type MigrationError struct {
	Version   string
	Operation string
	Err       error
}

func (e *MigrationError) Error() string {
	if e.Version == "" {
		return fmt.Sprintf("migration %s failed: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("migration %s: %s failed: %v", e.Version, e.Operation, e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }

// migrations must stay sorted by version and never be edited once released.
var migrations = []Migration{
	{
		Version:     "001",
		Description: "create kv table",
		SQL: []string{`
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at TEXT NOT NULL
)`},
	},
}

const versionTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version           TEXT PRIMARY KEY,
	applied_at        TEXT NOT NULL,
	execution_time_ms INTEGER NOT NULL
)`

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.pool.DB().ExecContext(ctx, versionTable); err != nil {
		return &MigrationError{Operation: "create schema_migrations table", Err: err}
	}
	for _, m := range migrations {
		applied, err := s.isApplied(ctx, m.Version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}
		if err := s.apply(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) isApplied(ctx context.Context, version string) (bool, error) {
	var one int
	err := s.pool.DB().QueryRowContext(ctx,
		`SELECT 1 FROM schema_migrations WHERE version = ? LIMIT 1`, version).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, &MigrationError{Version: version, Operation: "check version", Err: err}
	}
	return true, nil
}

func (s *Store) apply(ctx context.Context, m Migration) error {
	started := time.Now()
	return s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		for i, stmt := range m.SQL {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return &MigrationError{Version: m.Version, Operation: fmt.Sprintf("execute statement %d", i+1), Err: err}
			}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO schema_migrations (version, applied_at, execution_time_ms) VALUES (?, ?, ?)`,
			m.Version, s.now().UTC().Format(time.RFC3339), time.Since(started).Milliseconds())
		if err != nil {
			return &MigrationError{Version: m.Version, Operation: "record migration", Err: err}
		}
		return nil
	})
}

// AppliedMigrations lists recorded schema steps in version order.
func (s *Store) AppliedMigrations(ctx context.Context) ([]AppliedMigration, error) {
	rows, err := s.pool.DB().QueryContext(ctx,
		`SELECT version, applied_at, execution_time_ms FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, &MigrationError{Operation: "list applied", Err: err}
	}
	defer rows.Close()

	var applied []AppliedMigration
	for rows.Next() {
		var (
			version, appliedAt string
			ms                 int64
		)
		if err := rows.Scan(&version, &appliedAt, &ms); err != nil {
			return nil, &MigrationError{Operation: "scan applied", Err: err}
		}
		at, _ := time.Parse(time.RFC3339, appliedAt)
		applied = append(applied, AppliedMigration{
			Version:       version,
			AppliedAt:     at,
			ExecutionTime: time.Duration(ms) * time.Millisecond,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &MigrationError{Operation: "list applied", Err: err}
	}
	return applied, nil
}
