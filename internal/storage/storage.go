// Package storage persists match analyses in SQLite: a summary row per
// analyzed match plus a generic documents table the pipeline writes its
// event, clip, and stat payloads into.
package storage

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// DB is a handle on one match store.
type DB struct {
	conn *sql.DB
}

// Open opens the store at path, creating the file and applying the schema on
// first use. Foreign keys and WAL journaling are always on.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL", path))
	if err != nil {
		return nil, fmt.Errorf("open match store: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply match store schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close releases the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
