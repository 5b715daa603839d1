// Package database wraps the local SQLite database the model queries:
// schema introspection for the tool description and verbatim execution of
// model-written SQL.
package database

import (
	"database/sql"
	"fmt"
	"io"
	"net/url"
	"os"

	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// DB is the single database handle shared by introspection and queries.
type DB struct {
	db    *sql.DB
	path  string
	audit io.Writer
	log   *zap.Logger
}

// Open opens an existing SQLite database read-write. The file is never
// created. Use ":memory:" for an empty in-memory database (useful for testing).
func Open(path string, logger *zap.Logger) (*DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dsn := path
	if path != ":memory:" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		// Escaped so '#', '?' and '%' in the name stay part of the path.
		dsn = (&url.URL{Scheme: "file", OmitHost: true, Path: path, RawQuery: "mode=rw"}).String()
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One statement runs at a time; a single connection also keeps
	// ":memory:" databases from splitting across pool connections.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}

	logger.Debug("database opened", zap.String("path", path))
	return &DB{db: db, path: path, audit: io.Discard, log: logger}, nil
}

// SetAudit sets where the raw SQL of every executed statement is echoed.
func (d *DB) SetAudit(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	d.audit = w
}

// Path returns the path the database was opened with.
func (d *DB) Path() string {
	return d.path
}

func (d *DB) Close() error {
	return d.db.Close()
}
