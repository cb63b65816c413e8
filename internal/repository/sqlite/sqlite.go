// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE NEXT TO MONGODB?
// SQLite is an embedded database: it lives inside your Go binary as a single file.
// It gives ChronoFlow a zero-infrastructure mode (STORE_DRIVER=sqlite) and, with
// ":memory:", a real store for tests that needs no running MongoDB.
//
// The tables mirror the MongoDB collections: same field names, same unique
// index on users.email, same (date, time) index used by the due-event scan.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which means you need a C compiler installed and
// cross-compilation becomes painful. modernc.org/sqlite is pure Go.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/xid"

	"github.com/sakif/chronoflow/internal/repository"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

var _ repository.Store = (*DB)(nil)

// DB wraps a sql.DB connection pool and provides repository methods.
type DB struct {
	conn *sql.DB
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/chronoflow.db"  → file-based database (persistent)
//   - ":memory:"            → in-memory database (tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// An in-memory database exists per connection. Pinning the pool to one
	// connection keeps every query on the same database.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while the poller scans and a request writes.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.EnsureSchema(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close(_ context.Context) error {
	return db.conn.Close()
}

// Ping verifies the database is reachable. Used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

// ValidID reports whether id looks like an identifier this store generated.
// Events are keyed by xid strings (20 chars, base32hex).
func (db *DB) ValidID(id string) bool {
	_, err := xid.FromString(id)
	return err == nil
}

// EnsureSchema creates the tables and indexes if they don't exist.
//
// CREATE ... IF NOT EXISTS makes this safe to run on every start and from
// the setup-db command.
func (db *DB) EnsureSchema(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			username   TEXT NOT NULL,
			email      TEXT NOT NULL UNIQUE,
			password   TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// Column names match the MongoDB document keys so patches apply unchanged.
	_, err = db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS events (
			id          TEXT PRIMARY KEY,
			"email"       TEXT NOT NULL,
			"title"       TEXT NOT NULL,
			"description" TEXT NOT NULL DEFAULT '',
			"date"        TEXT NOT NULL,
			"time"        TEXT NOT NULL,
			"category"    TEXT NOT NULL DEFAULT 'personal',
			"reminder"    TEXT NOT NULL DEFAULT 'both',
			"photo"       TEXT,
			"soundType"   TEXT NOT NULL DEFAULT 'chime',
			"triggered"   INTEGER NOT NULL DEFAULT 0,
			"bgColor"     TEXT NOT NULL DEFAULT '#6c5ce7',
			created_at  DATETIME NOT NULL,
			updated_at  DATETIME
		);
		CREATE INDEX IF NOT EXISTS idx_events_email ON events("email");
		CREATE INDEX IF NOT EXISTS idx_events_date_time ON events("date", "time");
	`)
	if err != nil {
		return fmt.Errorf("creating events table: %w", err)
	}

	return nil
}

// Stats returns row counts per table.
func (db *DB) Stats(ctx context.Context) (map[string]int64, error) {
	stats := make(map[string]int64, 2)
	for _, table := range []string{"users", "events"} {
		var n int64
		if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("sqlite: counting %s: %w", table, err)
		}
		stats[table] = n
	}
	return stats, nil
}

// isUniqueViolation reports whether err came from a UNIQUE constraint.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
