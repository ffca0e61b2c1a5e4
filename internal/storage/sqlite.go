package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteAudit records finished runs in a SQLite database.
type SQLiteAudit struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteAudit opens (creating if needed) the audit database at dbPath.
// Use ":memory:" for a throwaway database.
func NewSQLiteAudit(dbPath string) (*SQLiteAudit, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: SQLite gains nothing from more, and :memory: needs a single handle.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteAudit{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *SQLiteAudit) Close() error {
	return s.db.Close()
}
