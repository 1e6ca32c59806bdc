package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Well-known meta keys. The meta table carries the schema version, the
// seed sentinel, the device-wide last-sync timestamp, and the active
// workout-run snapshot.
const (
	metaSeeded     = "exercises_seeded"
	metaLastSyncAt = "last_sync_at"
	metaActiveRun  = "active_run"
)

// GetMeta returns the value for key, or "" if the key is absent.
func (d *DB) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := d.db.QueryRowContext(ctx,
		`SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading meta %s: %w", key, err)
	}
	return value, nil
}

// SetMeta writes key=value, replacing any previous value.
func (d *DB) SetMeta(ctx context.Context, key, value string) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO meta (key, value, updated_at) VALUES (?, ?, ?)`,
		key, value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("writing meta %s: %w", key, err)
	}
	return nil
}

// LastSyncAt returns the device-wide last successful sync timestamp in
// epoch milliseconds, 0 if the device has never synced.
func (d *DB) LastSyncAt(ctx context.Context) (int64, error) {
	value, err := d.GetMeta(ctx, metaLastSyncAt)
	if err != nil {
		return 0, err
	}
	if value == "" {
		return 0, nil
	}
	ts, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing last_sync_at: %w", err)
	}
	return ts, nil
}

// SetLastSyncAt records the device-wide last successful sync timestamp.
func (d *DB) SetLastSyncAt(ctx context.Context, ts int64) error {
	return d.SetMeta(ctx, metaLastSyncAt, strconv.FormatInt(ts, 10))
}
