package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// InitSQLite initializes the local SQLite database and creates the
// schemas for persisting companion snapshots and the event journal.
func InitSQLite(dbPath string) (*sql.DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if err := createSchemas(db); err != nil {
		return nil, fmt.Errorf("failed to create schemas: %w", err)
	}

	return db, nil
}

func createSchemas(db *sql.DB) error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS companions (
			name TEXT PRIMARY KEY,
			schema_version INTEGER NOT NULL,
			hunger REAL NOT NULL,
			happiness REAL NOT NULL,
			energy REAL NOT NULL,
			xp REAL NOT NULL,
			level INTEGER NOT NULL,
			evolution_stage TEXT NOT NULL,
			is_alive BOOLEAN NOT NULL DEFAULT 1,
			base_trait TEXT NOT NULL,
			temp_trait TEXT,
			temp_trait_until DATETIME,
			inventory_json TEXT NOT NULL,
			last_update DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			companion TEXT NOT NULL,
			timestamp DATETIME NOT NULL,
			event_type TEXT NOT NULL,
			summary TEXT NOT NULL,
			payload TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_companion ON events(companion);`,
		`CREATE INDEX IF NOT EXISTS idx_events_type ON events(event_type);`,
	}

	for _, query := range schemas {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}
