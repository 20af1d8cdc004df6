// Package sqlite provides SQLite-based persistent storage for SnapSolve.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// FileName is the database file created inside the data directory.
const FileName = "snapsolve.db"

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/snapsolve.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, FileName)
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// Progression snapshot: one row per state field
		`CREATE TABLE IF NOT EXISTS progression (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Streak-risk reminders awaiting platform delivery.
		// One per kind per day; policy: max per day, quiet hours.
		`CREATE TABLE IF NOT EXISTS reminders (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			kind       TEXT NOT NULL,
			date       TEXT NOT NULL,
			title      TEXT NOT NULL,
			body       TEXT NOT NULL,
			deliver_at INTEGER NOT NULL,
			created_at INTEGER NOT NULL,
			shown      BOOLEAN DEFAULT 0,
			UNIQUE(kind, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reminders_deliver ON reminders(deliver_at)`,

		// Purchase ledger: append-only record of entitlement changes
		`CREATE TABLE IF NOT EXISTS purchases (
			id         TEXT PRIMARY KEY,
			timestamp  INTEGER NOT NULL,
			kind       TEXT NOT NULL,
			product_id TEXT NOT NULL DEFAULT '',
			amount     INTEGER NOT NULL DEFAULT 0,
			source     TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_purchases_ts ON purchases(timestamp)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
