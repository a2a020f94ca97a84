// Package index provides the SQLite deck catalogue: deck rows, diagram
// references, approval snapshots and text search (FTS5 when built with the
// sqlite_fts5 tag).
package index

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS decks (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL DEFAULT '',
	theme       TEXT NOT NULL DEFAULT '',
	slide_count INTEGER NOT NULL DEFAULT 0,
	checksum    TEXT NOT NULL DEFAULT '',
	body        TEXT NOT NULL DEFAULT '',
	updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS diagram_refs (
	deck_id    TEXT NOT NULL,
	slide_id   TEXT NOT NULL,
	diagram_id TEXT NOT NULL,
	resolved   INTEGER NOT NULL DEFAULT 1,
	UNIQUE(deck_id, slide_id, diagram_id)
);

CREATE INDEX IF NOT EXISTS idx_refs_deck ON diagram_refs(deck_id);
CREATE INDEX IF NOT EXISTS idx_refs_diagram ON diagram_refs(deck_id, diagram_id);

CREATE TABLE IF NOT EXISTS snapshots (
	deck_id     TEXT NOT NULL,
	version     INTEGER NOT NULL,
	checksum    TEXT NOT NULL,
	data        TEXT NOT NULL,
	approved_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (deck_id, version)
);
`

// DB wraps a sql.DB with catalogue-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}
