package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/FairHead/GymFit/internal/models"
)

// SaveRunSnapshot persists the active workout run as a JSON snapshot under
// a meta key. Runs are session state, not part of the synchronized
// aggregate; the snapshot exists so an in-progress workout survives the
// process being killed.
func (d *DB) SaveRunSnapshot(ctx context.Context, run *models.WorkoutRun) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encoding run snapshot: %w", err)
	}
	return d.SetMeta(ctx, metaActiveRun, string(data))
}

// LoadRunSnapshot returns the saved run, or ErrNotFound if none is stored.
func (d *DB) LoadRunSnapshot(ctx context.Context) (*models.WorkoutRun, error) {
	data, err := d.GetMeta(ctx, metaActiveRun)
	if err != nil {
		return nil, err
	}
	if data == "" {
		return nil, ErrNotFound
	}
	var run models.WorkoutRun
	if err := json.Unmarshal([]byte(data), &run); err != nil {
		return nil, fmt.Errorf("decoding run snapshot: %w", err)
	}
	return &run, nil
}

// ClearRunSnapshot removes the saved run, e.g. after finish or abandon.
func (d *DB) ClearRunSnapshot(ctx context.Context) error {
	return d.SetMeta(ctx, metaActiveRun, "")
}
