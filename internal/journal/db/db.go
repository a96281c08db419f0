// Package db owns the journal's embedded SQLite database: the single
// connection, the store tables and their indexes, and the schema version.
//
// Records are stored as JSON documents, one table per object store, with
// the primary key and the secondary index values (user, date, session)
// broken out into indexed columns. The JSON body is the source of truth;
// the columns exist for lookups. Schema upgrades are additive only - new
// stores and columns may appear at a version bump, existing data is never
// dropped or rewritten by the schema layer.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ali-derogar/bujo/internal/journal/schema"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// SchemaVersion is the current schema version (PRAGMA user_version).
// Version 1 was the single-user layout without user_id columns.
const SchemaVersion = 2

// DB wraps the SQLite connection for the journal database.
type DB struct {
	conn *sql.DB
	path string
}

// Open creates a new database connection at the specified path.
//
// The database is opened in embedded mode with WAL for concurrent reads.
// If the database doesn't exist, it is created; call InitSchema before
// using it. The caller MUST call Close() when done.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &ConnectionError{Path: path, Err: fmt.Errorf("failed to create database directory: %w", err)}
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", path))
	if err != nil {
		return nil, &ConnectionError{Path: path, Err: err}
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, &ConnectionError{Path: path, Err: fmt.Errorf("failed to ping database: %w", err)}
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	db := &DB{
		conn: conn,
		path: path,
	}

	// WAL for concurrent reads during migration scans
	if _, err := db.conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, &ConnectionError{Path: path, Err: fmt.Errorf("failed to enable WAL mode: %w", err)}
	}

	if _, err := db.conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, &ConnectionError{Path: path, Err: fmt.Errorf("failed to set busy timeout: %w", err)}
	}

	return db, nil
}

// RawDB returns the underlying sql.DB connection.
func (db *DB) RawDB() *sql.DB {
	return db.conn
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// Close closes the database connection.
// Performs a WAL checkpoint to ensure all changes are persisted.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}

	if _, err := db.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint WAL: %v\n", err)
	}

	if err := db.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	db.conn = nil
	return nil
}

// InitSchema creates the store tables and indexes if they don't exist.
// Idempotent - safe to call multiple times.
func (db *DB) InitSchema() error {
	return db.InitSchemaContext(context.Background())
}

// InitSchemaContext creates the database schema with context support.
func (db *DB) InitSchemaContext(ctx context.Context) error {
	ddl := `
	-- Time-scoped stores: indexed by date and owner
	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		date TEXT,
		updated_at TEXT,
		body TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS expenses (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		date TEXT,
		updated_at TEXT,
		body TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS daily_journals (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		date TEXT,
		updated_at TEXT,
		body TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS moods (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		date TEXT,
		updated_at TEXT,
		body TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS sleep (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		date TEXT,
		updated_at TEXT,
		body TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS calendar_notes (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		date TEXT,
		updated_at TEXT,
		body TEXT NOT NULL
	);

	-- Period-scoped store
	CREATE TABLE IF NOT EXISTS goals (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		date TEXT,
		updated_at TEXT,
		body TEXT NOT NULL
	);

	-- Profiles: a profile is its own owner (user_id = id)
	CREATE TABLE IF NOT EXISTS user_profiles (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		date TEXT,
		updated_at TEXT,
		body TEXT NOT NULL
	);

	-- AI chat state
	CREATE TABLE IF NOT EXISTS ai_sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		date TEXT,
		updated_at TEXT,
		body TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS ai_messages (
		id TEXT PRIMARY KEY,
		session_id TEXT,
		updated_at TEXT,
		body TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS ai_reports (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		date TEXT,
		updated_at TEXT,
		body TEXT NOT NULL
	);

	-- Secondary indexes (non-unique: records share a date across users)
	CREATE INDEX IF NOT EXISTS idx_tasks_date ON tasks(date);
	CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id);
	CREATE INDEX IF NOT EXISTS idx_expenses_date ON expenses(date);
	CREATE INDEX IF NOT EXISTS idx_expenses_user ON expenses(user_id);
	CREATE INDEX IF NOT EXISTS idx_journals_date ON daily_journals(date);
	CREATE INDEX IF NOT EXISTS idx_journals_user ON daily_journals(user_id);
	CREATE INDEX IF NOT EXISTS idx_moods_date ON moods(date);
	CREATE INDEX IF NOT EXISTS idx_moods_user ON moods(user_id);
	CREATE INDEX IF NOT EXISTS idx_sleep_date ON sleep(date);
	CREATE INDEX IF NOT EXISTS idx_sleep_user ON sleep(user_id);
	CREATE INDEX IF NOT EXISTS idx_notes_date ON calendar_notes(date);
	CREATE INDEX IF NOT EXISTS idx_notes_user ON calendar_notes(user_id);
	CREATE INDEX IF NOT EXISTS idx_goals_user ON goals(user_id);
	CREATE INDEX IF NOT EXISTS idx_ai_sessions_user ON ai_sessions(user_id);
	CREATE INDEX IF NOT EXISTS idx_ai_messages_session ON ai_messages(session_id);
	CREATE INDEX IF NOT EXISTS idx_ai_reports_user ON ai_reports(user_id);
	`

	if _, err := db.conn.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := db.upgradeColumns(ctx); err != nil {
		return err
	}

	if _, err := db.conn.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version=%d", SchemaVersion)); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}

	return nil
}

// upgradeColumns adds the user_id column to store tables created by the
// version 1 (single-user) schema. Additive only.
func (db *DB) upgradeColumns(ctx context.Context) error {
	for _, store := range schema.Stores() {
		if store == schema.StoreAIMessages {
			// messages are session-scoped, never owned directly
			continue
		}
		var count int
		err := db.conn.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM pragma_table_info(?) WHERE name='user_id'", store).Scan(&count)
		if err != nil || count > 0 {
			continue
		}
		if _, err := db.conn.ExecContext(ctx, "ALTER TABLE "+store+" ADD COLUMN user_id TEXT"); err != nil {
			return fmt.Errorf("failed to upgrade schema (%s.user_id): %w", store, err)
		}
	}
	return nil
}

// Version returns the stored schema version.
func (db *DB) Version(ctx context.Context) (int, error) {
	var v int
	if err := db.conn.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}
