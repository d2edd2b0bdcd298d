package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Executor runs migrations against a SQLite database and tracks applied
// versions in the schema_migrations table.
type Executor struct {
	db *sql.DB
}

// NewExecutor creates a migration executor over the given database.
func NewExecutor(db *sql.DB) *Executor {
	return &Executor{db: db}
}

// InitializeVersionTable creates the schema_migrations table if needed.
func (e *Executor) InitializeVersionTable(ctx context.Context) error {
	const createTable = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL,
			checksum TEXT,
			execution_time_ms INTEGER
		)
	`
	if _, err := e.db.ExecContext(ctx, createTable); err != nil {
		return newError("", "create schema_migrations table", err)
	}
	return nil
}

// ExecuteMigration runs a single migration within one transaction. The SQL
// may contain multiple statements; SQLite executes them atomically here so a
// failing statement rolls back the whole file.
func (e *Executor) ExecuteMigration(ctx context.Context, m Migration) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return newError(m.Version, "begin transaction", err)
	}

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return newError(m.Version, "execute",
				fmt.Errorf("%w (rollback error: %v)", err, rbErr))
		}
		return newError(m.Version, "execute", fmt.Errorf("%w: %v", ErrMigrationFailed, err))
	}

	if err := tx.Commit(); err != nil {
		return newError(m.Version, "commit", err)
	}
	return nil
}

// RecordMigration marks a version as applied.
func (e *Executor) RecordMigration(ctx context.Context, m Migration, executionTime time.Duration) error {
	const insert = `
		INSERT INTO schema_migrations (version, applied_at, checksum, execution_time_ms)
		VALUES (?, ?, ?, ?)
	`
	appliedAt := time.Now().UTC().Format(time.RFC3339)
	if _, err := e.db.ExecContext(ctx, insert, m.Version, appliedAt, m.Checksum, executionTime.Milliseconds()); err != nil {
		return newError(m.Version, "record", err)
	}
	return nil
}

// AppliedVersions returns all recorded migrations ordered by version.
func (e *Executor) AppliedVersions(ctx context.Context) ([]AppliedMigration, error) {
	const query = `
		SELECT version, applied_at, COALESCE(execution_time_ms, 0)
		FROM schema_migrations
		ORDER BY version ASC
	`
	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, newError("", "query applied versions", err)
	}
	defer rows.Close()

	var applied []AppliedMigration
	for rows.Next() {
		var (
			record      AppliedMigration
			appliedAt   string
			executionMS int64
		)
		if err := rows.Scan(&record.Version, &appliedAt, &executionMS); err != nil {
			return nil, newError("", "scan applied version", err)
		}
		if record.AppliedAt, err = time.Parse(time.RFC3339, appliedAt); err != nil {
			return nil, newError(record.Version, "parse applied_at", err)
		}
		record.ExecutionTime = time.Duration(executionMS) * time.Millisecond
		applied = append(applied, record)
	}
	if err := rows.Err(); err != nil {
		return nil, newError("", "iterate applied versions", err)
	}
	return applied, nil
}
