package migration

import (
	"context"
	"database/sql"
	"log/slog"
	"time"
)

// Manager orchestrates scanning and executing pending migrations.
type Manager struct {
	scanner  *Scanner
	executor *Executor
	logger   *slog.Logger
}

// NewManager wires a manager over the embedded migrations and the given
// database connection.
func NewManager(db *sql.DB, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		scanner:  NewScanner(),
		executor: NewExecutor(db),
		logger:   logger,
	}
}

// RunMigrations applies all pending migrations in version order. Already
// applied versions are skipped.
func (m *Manager) RunMigrations(ctx context.Context) error {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return err
	}

	pending, err := m.PendingMigrations(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		m.logger.InfoContext(ctx, "schema is up to date")
		return nil
	}

	for _, mig := range pending {
		start := time.Now()
		m.logger.InfoContext(ctx, "applying migration",
			"version", mig.Version, "description", mig.Description)

		if err := m.executor.ExecuteMigration(ctx, mig); err != nil {
			m.logger.ErrorContext(ctx, "migration failed",
				"version", mig.Version, "error", err)
			return err
		}
		elapsed := time.Since(start)
		if err := m.executor.RecordMigration(ctx, mig, elapsed); err != nil {
			return err
		}

		m.logger.InfoContext(ctx, "migration applied",
			"version", mig.Version, "duration", elapsed)
	}

	return nil
}

// PendingMigrations returns embedded migrations not yet recorded as applied.
func (m *Manager) PendingMigrations(ctx context.Context) ([]Migration, error) {
	all, err := m.scanner.ScanMigrations()
	if err != nil {
		return nil, err
	}

	applied, err := m.executor.AppliedVersions(ctx)
	if err != nil {
		return nil, err
	}
	appliedSet := make(map[string]struct{}, len(applied))
	for _, record := range applied {
		appliedSet[record.Version] = struct{}{}
	}

	pending := make([]Migration, 0, len(all))
	for _, mig := range all {
		if _, ok := appliedSet[mig.Version]; ok {
			continue
		}
		pending = append(pending, mig)
	}
	return pending, nil
}

// AppliedMigrations returns all recorded migrations ordered by version.
func (m *Manager) AppliedMigrations(ctx context.Context) ([]AppliedMigration, error) {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return nil, err
	}
	return m.executor.AppliedVersions(ctx)
}
