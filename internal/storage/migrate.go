package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

const metaSchemaVersion = "db_version"

// SchemaVersion reads the recorded schema version from the meta table.
// A read failure from a store that has never been migrated (no meta table
// yet) is version 0, not an error.
func (d *DB) SchemaVersion(ctx context.Context) int {
	var value string
	err := d.db.QueryRowContext(ctx,
		`SELECT value FROM meta WHERE key = ?`, metaSchemaVersion).Scan(&value)
	if err != nil {
		return 0
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return v
}

// Migrate applies every migration newer than the recorded version, in
// ascending order, each as one transaction. The version bump is part of
// that transaction, so a mid-migration failure never records a partially
// applied version. Already current is a no-op.
//
// Migrate must complete before any repository method is used.
func (d *DB) Migrate(ctx context.Context, log *slog.Logger) error {
	current := d.SchemaVersion(ctx)
	latest := LatestVersion()
	if current >= latest {
		log.Debug("schema up to date", "version", current)
		return nil
	}

	log.Info("migrating schema", "from", current, "to", latest)

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		err := d.withTx(ctx, func(tx *sql.Tx) error {
			for _, stmt := range m.Statements {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("applying statement: %w", err)
				}
			}
			_, err := tx.ExecContext(ctx,
				`INSERT OR REPLACE INTO meta (key, value, updated_at) VALUES (?, ?, ?)`,
				metaSchemaVersion, strconv.Itoa(m.Version), time.Now().UnixMilli())
			if err != nil {
				return fmt.Errorf("recording version: %w", err)
			}
			return nil
		})
		if err != nil {
			return &StructuralError{Version: m.Version, Err: err}
		}
		log.Info("applied migration", "version", m.Version, "description", m.Description)
	}

	return nil
}
