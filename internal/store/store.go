// Package store provides SQLite-backed durable storage for notes and
// their forward-link index, with scoped multi-record transactions.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/starford/laguz/internal/apperr"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
	id            TEXT PRIMARY KEY,
	owner_id      TEXT NOT NULL,
	title         TEXT NOT NULL,
	kind          TEXT NOT NULL DEFAULT 'note',
	content       TEXT NOT NULL DEFAULT '',
	diary_date    DATETIME,
	mood_score    INTEGER,
	mood_feelings TEXT NOT NULL DEFAULT '[]',
	mood_factors  TEXT NOT NULL DEFAULT '[]',
	created_at    DATETIME NOT NULL,
	updated_at    DATETIME NOT NULL,
	UNIQUE(owner_id, title)
);

CREATE TABLE IF NOT EXISTS note_links (
	source   TEXT NOT NULL,
	target   TEXT NOT NULL,
	position INTEGER NOT NULL DEFAULT 0,
	UNIQUE(source, target)
);

CREATE INDEX IF NOT EXISTS idx_notes_owner ON notes(owner_id);
CREATE INDEX IF NOT EXISTS idx_notes_owner_updated ON notes(owner_id, updated_at);
CREATE INDEX IF NOT EXISTS idx_links_source ON note_links(source);
CREATE INDEX IF NOT EXISTS idx_links_target ON note_links(target);
`

// DB wraps a sql.DB with note-store operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", mapErr(err))
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping verifies the database is reachable. Used by readiness checks.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("store: ping: %w", mapErr(err))
	}
	return nil
}

// WithTx runs fn inside a transaction. Rollback is deferred so every
// non-success exit path aborts; commit happens only when fn returns nil.
// Busy/locked aborts surface as apperr.ErrTxConflict for the caller's
// retry policy.
func (db *DB) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", mapErr(err))
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if err := fn(&Tx{ctx: ctx, q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", mapErr(err))
	}
	return nil
}

// view returns a Tx backed by the plain connection for auto-commit reads.
func (db *DB) view(ctx context.Context) *Tx {
	return &Tx{ctx: ctx, q: db.conn}
}

// querier is satisfied by both *sql.DB and *sql.Tx so the same data
// access code serves transactional and auto-commit paths.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// mapErr translates driver-level failures into the apperr taxonomy.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		switch {
		case serr.Code == sqlite3.ErrBusy || serr.Code == sqlite3.ErrLocked:
			return fmt.Errorf("%w: %v", apperr.ErrTxConflict, err)
		case serr.ExtendedCode == sqlite3.ErrConstraintUnique:
			return apperr.ErrDuplicateTitle
		case serr.Code == sqlite3.ErrCantOpen || serr.Code == sqlite3.ErrNotADB || serr.Code == sqlite3.ErrCorrupt:
			return fmt.Errorf("%w: %v", apperr.ErrStoreUnavailable, err)
		}
	}
	return err
}
