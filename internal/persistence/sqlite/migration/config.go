package migration

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteConfig holds SQLite-specific database settings.
type SQLiteConfig struct {
	// DSN is the database file path or connection string.
	DSN string
	// BusyTimeout sets how long SQLite waits for database locks.
	BusyTimeout time.Duration
	// JournalMode sets the SQLite journal mode (WAL, DELETE, ...).
	JournalMode string
	// MaxOpenConns bounds the connection pool.
	MaxOpenConns int
	// MaxIdleConns bounds idle pooled connections.
	MaxIdleConns int
}

// DefaultSQLiteConfig returns settings suitable for a single-node service.
func DefaultSQLiteConfig(dsn string) SQLiteConfig {
	return SQLiteConfig{
		DSN:          dsn,
		BusyTimeout:  5 * time.Second,
		JournalMode:  "WAL",
		MaxOpenConns: 8,
		MaxIdleConns: 4,
	}
}

// OpenDatabase opens and configures a SQLite connection pool. Foreign key
// enforcement is always enabled; the booking schema relies on it for its
// cascade rules.
func OpenDatabase(cfg SQLiteConfig) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("sqlite DSN must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
	}
	if cfg.BusyTimeout > 0 {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	if cfg.JournalMode != "" {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA journal_mode = %s", cfg.JournalMode))
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	return db, nil
}
