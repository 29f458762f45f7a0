package store

import (
	"database/sql"
	"fmt"
)

// migration is one forward-only schema step, applied in ascending
// Version order inside a single transaction.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// pendingMigrations is the full schema history for the SQLite adapter.
// Never edit an applied migration's SQL in place — append a new one.
var pendingMigrations = []migration{
	{
		Version: 1,
		Name:    "create_nodes_edges_snapshots",
		SQL: `
CREATE TABLE IF NOT EXISTS nodes (
	id TEXT PRIMARY KEY,
	type_name TEXT NOT NULL,
	payload_kind TEXT NOT NULL,
	payload_data BLOB NOT NULL,
	parent_ids TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	hash TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS edges (
	id TEXT PRIMARY KEY,
	input_ids TEXT NOT NULL,
	output_id TEXT NOT NULL,
	operation_name TEXT NOT NULL,
	metadata TEXT NOT NULL,
	has_confidence INTEGER NOT NULL,
	confidence REAL,
	has_duration INTEGER NOT NULL,
	duration_ms INTEGER,
	created_at INTEGER NOT NULL,
	hash TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_edges_output_id ON edges(output_id);

CREATE TABLE IF NOT EXISTS snapshots (
	branch_name TEXT NOT NULL,
	hash TEXT NOT NULL,
	captured_at INTEGER NOT NULL,
	events TEXT NOT NULL,
	vectors TEXT NOT NULL,
	PRIMARY KEY (branch_name, hash)
);
`,
	},
}

// runMigrations applies every pending migration not yet recorded in
// schema_migrations, each inside its own transaction.
func runMigrations(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY, name TEXT NOT NULL)`); err != nil {
		return fmt.Errorf("store: failed to create schema_migrations: %w", err)
	}

	applied := make(map[int]bool)
	rows, err := db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("store: failed to read schema_migrations: %w", err)
	}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return fmt.Errorf("store: failed to scan schema_migrations: %w", err)
		}
		applied[v] = true
	}
	rows.Close()

	for _, m := range pendingMigrations {
		if applied[m.Version] {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("store: migration %d begin: %w", m.Version, err)
		}
		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("store: migration %d (%s) failed: %w", m.Version, m.Name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (version, name) VALUES (?, ?)`, m.Version, m.Name); err != nil {
			tx.Rollback()
			return fmt.Errorf("store: migration %d record failed: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("store: migration %d commit failed: %w", m.Version, err)
		}
	}
	return nil
}
