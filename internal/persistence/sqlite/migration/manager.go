package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

const versionTableDDL = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version TEXT PRIMARY KEY,
	applied_at TEXT NOT NULL,
	execution_time_ms INTEGER NOT NULL
)`

// Manager applies the embedded migration set against a database.
type Manager struct {
	db         *sql.DB
	migrations []Migration
	logger     *slog.Logger
}

// NewManager creates a manager for the embedded migration set.
func NewManager(db *sql.DB, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{db: db, migrations: Migrations(), logger: logger}
}

// Apply runs all pending migrations in version order. Each migration runs
// in its own transaction and is recorded in schema_migrations on success.
// Calling Apply on an up-to-date database is a no-op.
func (m *Manager) Apply(ctx context.Context) error {
	if err := m.initVersionTable(ctx); err != nil {
		return fmt.Errorf("failed to initialize version table: %w", err)
	}

	applied, err := m.AppliedVersions(ctx)
	if err != nil {
		return err
	}

	appliedSet := make(map[string]bool, len(applied))
	for _, version := range applied {
		appliedSet[version] = true
	}

	known := make(map[string]bool, len(m.migrations))
	for _, migration := range m.migrations {
		known[migration.Version] = true
	}
	for _, version := range applied {
		if !known[version] {
			return fmt.Errorf("%w: applied version %s not found in embedded set", ErrVersionConflict, version)
		}
	}

	pending := 0
	for _, migration := range m.migrations {
		if appliedSet[migration.Version] {
			continue
		}
		pending++

		start := time.Now()
		if err := m.apply(ctx, migration); err != nil {
			return NewMigrationError(migration.Version, "execute migration", fmt.Errorf("%w: %v", ErrMigrationFailed, err))
		}
		m.logger.InfoContext(ctx, "migration applied",
			"version", migration.Version,
			"description", migration.Description,
			"duration", time.Since(start))
	}

	if pending == 0 {
		m.logger.DebugContext(ctx, "schema up to date", "versions", len(applied))
	}

	return nil
}

// AppliedVersions returns the versions recorded in schema_migrations,
// oldest first.
func (m *Manager) AppliedVersions(ctx context.Context) ([]string, error) {
	rows, err := m.db.QueryContext(ctx, "SELECT version FROM schema_migrations ORDER BY version ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query applied versions: %w", err)
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		versions = append(versions, version)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read applied versions: %w", err)
	}

	return versions, nil
}

func (m *Manager) initVersionTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, versionTableDDL)
	return err
}

func (m *Manager) apply(ctx context.Context, migration Migration) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	start := time.Now()
	for _, statement := range migration.Statements {
		if _, err := tx.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("statement failed: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, applied_at, execution_time_ms) VALUES (?, ?, ?)",
		migration.Version,
		time.Now().UTC().Format(time.RFC3339),
		time.Since(start).Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	return tx.Commit()
}
