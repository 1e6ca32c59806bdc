package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps the embedded SQLite store. All repository methods hang off it.
//
// The store follows a single-writer model: the pool is capped at one
// connection so composite operations (cascading writes, migration steps,
// sync reconciliation) serialize instead of interleaving. modernc.org/sqlite
// is pure Go, no CGO required.
type DB struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the SQLite database at path and configures it
// for use: foreign keys on, WAL journaling, busy timeout. It does not run
// migrations; call Migrate before using any repository method.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("configuring database: %w", err)
		}
	}

	return &DB{db: db, path: path}, nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// withTx runs fn inside a transaction, committing on nil and rolling back
// on error. Every multi-table write in the repository layer goes through
// here so cascades and the denormalized ordered-id list never observably
// diverge.
func (d *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
