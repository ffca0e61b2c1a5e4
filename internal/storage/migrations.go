package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS runs (
					id TEXT PRIMARY KEY,
					source TEXT,
					output TEXT,
					started_at DATETIME NOT NULL,
					duration_ms INTEGER DEFAULT 0,
					moved_to_good INTEGER DEFAULT 0,
					moved_to_bad INTEGER DEFAULT 0,
					no_action INTEGER DEFAULT 0,
					unassigned INTEGER DEFAULT 0,
					assigned INTEGER DEFAULT 0
				)`,

				`CREATE TABLE IF NOT EXISTS decisions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					run_id TEXT NOT NULL,
					campaign_id TEXT NOT NULL,
					sheet TEXT NOT NULL,
					row_index INTEGER NOT NULL,
					outcome TEXT NOT NULL,
					product TEXT,
					from_grouping TEXT,
					to_grouping TEXT,
					profitability TEXT,
					threshold TEXT,
					reason TEXT,
					FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE,
					UNIQUE (run_id, campaign_id)
				)`,
				`CREATE INDEX idx_decisions_run ON decisions(run_id)`,
				`CREATE INDEX idx_decisions_outcome ON decisions(outcome)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Add price estimates and manual assignments",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS price_estimates (
					run_id TEXT NOT NULL,
					product TEXT NOT NULL,
					source TEXT NOT NULL,
					price REAL DEFAULT 0,
					PRIMARY KEY (run_id, product),
					FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
				)`,
				`CREATE TABLE IF NOT EXISTS thresholds (
					run_id TEXT NOT NULL,
					product TEXT NOT NULL,
					threshold REAL NOT NULL,
					PRIMARY KEY (run_id, product),
					FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
				)`,
				`CREATE TABLE IF NOT EXISTS assignments (
					run_id TEXT NOT NULL,
					campaign_id TEXT NOT NULL,
					campaign_name TEXT,
					grouping_name TEXT NOT NULL,
					PRIMARY KEY (run_id, campaign_id),
					FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
}

// Migrate brings the schema up to ExpectedSchemaVersion.
func (s *SQLiteAudit) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	// Get current version
	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Debug("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
