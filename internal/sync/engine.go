// Package sync reconciles local routine aggregates with their remote
// copies using last-write-wins on updatedAt. Aggregates are transferred
// wholesale, never field-merged; every resolution between two existing
// copies lands in the conflict log so the user can learn which of their
// edits was discarded.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/FairHead/GymFit/internal/models"
	"github.com/FairHead/GymFit/internal/storage"
)

// DefaultAggregateTimeout bounds one aggregate's pull+push round trip so a
// stalled network call cannot hold the whole batch.
const DefaultAggregateTimeout = 30 * time.Second

// Resolution says which side of a divergence won.
type Resolution string

const (
	LocalWins  Resolution = "local-wins"
	RemoteWins Resolution = "remote-wins"
)

// Conflict records one resolved divergence.
type Conflict struct {
	RoutineID       string     `json:"routineId"`
	LocalUpdatedAt  int64      `json:"localUpdatedAt"`
	RemoteUpdatedAt int64      `json:"remoteUpdatedAt"`
	Resolution      Resolution `json:"resolution"`
}

// TransferError is a per-aggregate failure: the remote was unreachable,
// rejected the transfer, or the resolved copy could not be applied locally
// (e.g. it references an exercise definition this device does not have).
// It never aborts the batch; the aggregate is retried on the next run.
type TransferError struct {
	RoutineID string
	Err       error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("sync transfer for routine %s: %v", e.RoutineID, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// Result summarizes one SyncNow batch.
type Result struct {
	SyncedAt  int64
	Pushed    int
	Pulled    int
	Conflicts []Conflict
	Errors    []TransferError
}

// Engine reconciles the local store with a remote store.
type Engine struct {
	store   *storage.DB
	remote  RemoteStore
	id      Identity
	log     *slog.Logger
	timeout time.Duration

	// now is swappable for tests.
	now func() int64
}

// New creates an Engine. A timeout of 0 means DefaultAggregateTimeout.
func New(store *storage.DB, remote RemoteStore, id Identity, timeout time.Duration, log *slog.Logger) *Engine {
	if timeout <= 0 {
		timeout = DefaultAggregateTimeout
	}
	return &Engine{
		store:   store,
		remote:  remote,
		id:      id,
		log:     log,
		timeout: timeout,
		now:     func() int64 { return time.Now().UnixMilli() },
	}
}

// SyncNow reconciles every aggregate that is flagged pending locally or
// has changed remotely since the device's last sync. Aggregates are
// processed independently: one failing aggregate — remote transfer or
// local application of the resolved copy — is recorded in the result and
// the rest continue, so a single poisoned aggregate can never wedge the
// batch. Cancellation via ctx is honored between aggregates, never
// mid-transfer, so syncStatus stays consistent with the actual remote
// state.
func (e *Engine) SyncNow(ctx context.Context) (*Result, error) {
	if !e.id.Online(ctx) {
		return nil, fmt.Errorf("device is offline")
	}

	lastSync, err := e.store.LastSyncAt(ctx)
	if err != nil {
		return nil, err
	}

	pending, err := e.store.ListPendingRoutines(ctx)
	if err != nil {
		return nil, err
	}
	heads, err := e.remote.ChangedSince(ctx, lastSync)
	if err != nil {
		return nil, fmt.Errorf("listing remote changes: %w", err)
	}

	ids := make(map[string]bool, len(pending)+len(heads))
	for _, r := range pending {
		ids[r.ID] = true
	}
	for _, h := range heads {
		ids[h.RoutineID] = true
	}
	ordered := make([]string, 0, len(ids))
	for id := range ids {
		ordered = append(ordered, id)
	}
	sort.Strings(ordered)

	result := &Result{SyncedAt: e.now()}
	for _, routineID := range ordered {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := e.reconcile(ctx, routineID, result); err != nil {
			var te *TransferError
			if !errors.As(err, &te) {
				te = &TransferError{RoutineID: routineID, Err: err}
			}
			e.log.Warn("aggregate sync failed", "routine", routineID, "error", te.Err)
			result.Errors = append(result.Errors, *te)
			continue
		}
	}

	// The device-wide watermark only advances on a clean batch; a failed
	// pull of a remote-only aggregate would otherwise vanish from the
	// change feed before it was ever materialized.
	if len(result.Errors) == 0 {
		if err := e.store.SetLastSyncAt(ctx, result.SyncedAt); err != nil {
			return result, err
		}
	}

	e.log.Info("sync complete",
		"pushed", result.Pushed,
		"pulled", result.Pulled,
		"conflicts", len(result.Conflicts),
		"errors", len(result.Errors),
	)
	return result, nil
}

func (e *Engine) reconcile(ctx context.Context, routineID string, result *Result) error {
	actx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	remote, err := e.remote.Pull(actx, routineID)
	if errors.Is(err, ErrRemoteAbsent) {
		remote = nil
	} else if err != nil {
		return &TransferError{RoutineID: routineID, Err: err}
	}

	local, err := e.store.GetAggregate(ctx, routineID)
	if errors.Is(err, storage.ErrNotFound) {
		local = nil
	} else if err != nil {
		return err
	}

	now := e.now()
	switch {
	case local == nil && remote == nil:
		return nil

	case remote == nil:
		// Local only: push as a new remote record. Remote absence never
		// means deletion here.
		if err := e.remote.Push(actx, local); err != nil {
			return &TransferError{RoutineID: routineID, Err: err}
		}
		if err := e.store.MarkRoutineSynced(ctx, routineID, now); err != nil {
			return err
		}
		result.Pushed++
		return nil

	case local == nil:
		// Remote only: materialize a full local copy.
		if err := e.store.ReplaceAggregate(ctx, remote, models.SyncSynced, now); err != nil {
			return err
		}
		result.Pulled++
		return nil
	}

	localTS := local.Routine.UpdatedAt
	remoteTS := remote.Routine.UpdatedAt

	switch {
	case localTS == remoteTS:
		// Already consistent, no transfer.
		return e.store.MarkRoutineSynced(ctx, routineID, now)

	case remoteTS > localTS:
		// The remote copy replaces the local one wholesale. If the local
		// copy carried unsynced edits, those edits just lost: the routine
		// is tagged conflict so the user can be told.
		status := models.SyncSynced
		if local.Routine.SyncStatus == models.SyncPending {
			status = models.SyncConflict
		}
		if err := e.store.ReplaceAggregate(ctx, remote, status, now); err != nil {
			return err
		}
		result.Pulled++
		result.Conflicts = append(result.Conflicts, Conflict{
			RoutineID:       routineID,
			LocalUpdatedAt:  localTS,
			RemoteUpdatedAt: remoteTS,
			Resolution:      RemoteWins,
		})
		return nil

	default:
		if err := e.remote.Push(actx, local); err != nil {
			return &TransferError{RoutineID: routineID, Err: err}
		}
		if err := e.store.MarkRoutineSynced(ctx, routineID, now); err != nil {
			return err
		}
		result.Pushed++
		result.Conflicts = append(result.Conflicts, Conflict{
			RoutineID:       routineID,
			LocalUpdatedAt:  localTS,
			RemoteUpdatedAt: remoteTS,
			Resolution:      LocalWins,
		})
		return nil
	}
}
