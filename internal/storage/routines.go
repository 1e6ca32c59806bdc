package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/FairHead/GymFit/internal/models"
	"github.com/google/uuid"
)

const routineColumns = `id, title, description, exercise_ids, created_at, updated_at, sync_status, last_sync_at`

const routineExerciseColumns = `id, routine_id, exercise_definition_id, type,
	rest_between_sets_sec, rest_after_exercise_sec, timer_mode,
	total_duration_sec, interval_set_sec, interval_rest_sec,
	unit, intensity_percent, order_index, created_at, updated_at`

func scanRoutine(s rowScanner) (*models.Routine, error) {
	var (
		r          models.Routine
		desc       sql.NullString
		idsJSON    string
		lastSyncAt sql.NullInt64
	)
	err := s.Scan(&r.ID, &r.Title, &desc, &idsJSON, &r.CreatedAt, &r.UpdatedAt,
		&r.SyncStatus, &lastSyncAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(idsJSON), &r.ExerciseIDs); err != nil {
		return nil, fmt.Errorf("decoding exercise id list: %w", err)
	}
	if desc.Valid {
		r.Description = &desc.String
	}
	if lastSyncAt.Valid {
		r.LastSyncAt = &lastSyncAt.Int64
	}
	return &r, nil
}

func scanRoutineExercise(s rowScanner) (*models.RoutineExercise, error) {
	var (
		re               models.RoutineExercise
		restBetween      sql.NullInt64
		restAfter        sql.NullInt64
		totalDuration    sql.NullInt64
		intervalSet      sql.NullInt64
		intervalRest     sql.NullInt64
		intensityPercent sql.NullInt64
	)
	err := s.Scan(&re.ID, &re.RoutineID, &re.ExerciseDefinitionID, &re.Type,
		&restBetween, &restAfter, &re.TimerMode,
		&totalDuration, &intervalSet, &intervalRest,
		&re.Unit, &intensityPercent, &re.OrderIndex, &re.CreatedAt, &re.UpdatedAt)
	if err != nil {
		return nil, err
	}
	re.RestBetweenSetsSec = intPtr(restBetween)
	re.RestAfterExerciseSec = intPtr(restAfter)
	re.TotalDurationSec = intPtr(totalDuration)
	re.IntervalSetSec = intPtr(intervalSet)
	re.IntervalRestSec = intPtr(intervalRest)
	re.IntensityPercent = intPtr(intensityPercent)
	return &re, nil
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

// GetAllRoutines lists routines, most recently updated first.
func (d *DB) GetAllRoutines(ctx context.Context) ([]models.Routine, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+routineColumns+` FROM routines ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying routines: %w", err)
	}
	defer rows.Close()
	return collectRoutines(rows)
}

func collectRoutines(rows *sql.Rows) ([]models.Routine, error) {
	var out []models.Routine
	for rows.Next() {
		r, err := scanRoutine(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning routine: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// GetRoutineByID fetches one routine.
func (d *DB) GetRoutineByID(ctx context.Context, id string) (*models.Routine, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+routineColumns+` FROM routines WHERE id = ?`, id)
	r, err := scanRoutine(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying routine %s: %w", id, err)
	}
	return r, nil
}

// CreateRoutine inserts a new routine. Timestamps are stamped here and the
// routine starts out pending (never synced). The ordered exercise list must
// start empty: exercises attach through AddExerciseToRoutine, which keeps
// the list and the child rows in lockstep from the first entry.
func (d *DB) CreateRoutine(ctx context.Context, r *models.Routine) error {
	if len(r.ExerciseIDs) > 0 {
		return &IntegrityError{Op: "create routine",
			Err: fmt.Errorf("exercise list must start empty; attach exercises with AddExerciseToRoutine")}
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := nowMilli()
	r.CreatedAt = now
	r.UpdatedAt = now
	r.SyncStatus = models.SyncPending
	r.ExerciseIDs = []string{}
	if err := r.Validate(); err != nil {
		return &IntegrityError{Op: "create routine", Err: err}
	}
	idsJSON, err := json.Marshal(r.ExerciseIDs)
	if err != nil {
		return fmt.Errorf("encoding exercise id list: %w", err)
	}
	_, err = d.db.ExecContext(ctx,
		`INSERT INTO routines (`+routineColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Title, nullStrPtr(r.Description), string(idsJSON),
		r.CreatedAt, r.UpdatedAt, r.SyncStatus, nullInt64Ptr(r.LastSyncAt))
	if err != nil {
		return fmt.Errorf("inserting routine %s: %w", r.ID, err)
	}
	return nil
}

func nullStrPtr(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullInt64Ptr(n *int64) any {
	if n == nil {
		return nil
	}
	return *n
}

// UpdateRoutine rewrites a routine's content fields (title, description)
// and flags it pending. The ordered exercise-id list is not touched here;
// it only changes through AddExerciseToRoutine, RemoveExerciseFromRoutine,
// and ReorderExercises, which keep it in lockstep with the child rows.
func (d *DB) UpdateRoutine(ctx context.Context, r *models.Routine) error {
	if err := r.Validate(); err != nil {
		return &IntegrityError{Op: "update routine", Err: err}
	}
	r.UpdatedAt = nowMilli()
	r.SyncStatus = models.SyncPending
	res, err := d.db.ExecContext(ctx,
		`UPDATE routines SET title = ?, description = ?, updated_at = ?, sync_status = ?
		 WHERE id = ?`,
		r.Title, nullStrPtr(r.Description), r.UpdatedAt, r.SyncStatus, r.ID)
	if err != nil {
		return fmt.Errorf("updating routine %s: %w", r.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("updating routine %s: %w", r.ID, ErrNotFound)
	}
	return nil
}

// DeleteRoutine hard-deletes a routine; its exercises and sets go with it
// via cascade. Deleting a routine that is already gone is a no-op so that
// cleanup stays idempotent.
func (d *DB) DeleteRoutine(ctx context.Context, id string) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM routines WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting routine %s: %w", id, err)
	}
	return nil
}

// GetExercisesForRoutine returns the routine's exercises in order, each
// with its sets in index order.
func (d *DB) GetExercisesForRoutine(ctx context.Context, routineID string) ([]models.RoutineExercise, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+routineExerciseColumns+` FROM routine_exercises
		 WHERE routine_id = ? ORDER BY order_index`, routineID)
	if err != nil {
		return nil, fmt.Errorf("querying routine exercises: %w", err)
	}
	defer rows.Close()

	var out []models.RoutineExercise
	for rows.Next() {
		re, err := scanRoutineExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning routine exercise: %w", err)
		}
		out = append(out, *re)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		sets, err := d.setsForExercise(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Sets = sets
	}
	return out, nil
}

func (d *DB) setsForExercise(ctx context.Context, exerciseID string) ([]models.SetPlan, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT set_index, target_reps, target_time_sec, weight_value, weight_unit
		 FROM routine_sets WHERE routine_exercise_id = ? ORDER BY set_index`, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("querying sets: %w", err)
	}
	defer rows.Close()

	var sets []models.SetPlan
	for rows.Next() {
		var (
			s       models.SetPlan
			reps    sql.NullInt64
			timeSec sql.NullInt64
			weight  sql.NullFloat64
		)
		if err := rows.Scan(&s.Index, &reps, &timeSec, &weight, &s.WeightUnit); err != nil {
			return nil, fmt.Errorf("scanning set: %w", err)
		}
		s.TargetReps = intPtr(reps)
		s.TargetTimeSec = intPtr(timeSec)
		if weight.Valid {
			s.WeightValue = &weight.Float64
		}
		sets = append(sets, s)
	}
	return sets, rows.Err()
}

// AddExerciseToRoutine appends a configured exercise to a routine as one
// atomic unit: the exercise row, its sets, and the parent's ordered id
// list and sync state all change together. The exercise's order index is
// assigned here (end of the list), not taken from the caller.
func (d *DB) AddExerciseToRoutine(ctx context.Context, re *models.RoutineExercise) error {
	if re.ID == "" {
		re.ID = uuid.NewString()
	}
	now := nowMilli()
	re.CreatedAt = now
	re.UpdatedAt = now
	if err := re.Validate(); err != nil {
		return &IntegrityError{Op: "add exercise to routine", Err: err}
	}

	return d.withTx(ctx, func(tx *sql.Tx) error {
		routine, err := routineForUpdate(ctx, tx, re.RoutineID)
		if err != nil {
			return err
		}

		re.OrderIndex = len(routine.ExerciseIDs)
		if err := insertRoutineExercise(ctx, tx, re); err != nil {
			return err
		}
		if err := insertSets(ctx, tx, re.ID, re.Sets, now); err != nil {
			return err
		}

		routine.ExerciseIDs = append(routine.ExerciseIDs, re.ID)
		return writeExerciseIDs(ctx, tx, routine.ID, routine.ExerciseIDs, now)
	})
}

// UpdateRoutineExercise rewrites an exercise's configuration and fully
// replaces its sets (delete then reinsert, never diffed), flagging the
// parent pending — all in one transaction. The stored order index is
// preserved; ordering changes only through ReorderExercises.
func (d *DB) UpdateRoutineExercise(ctx context.Context, re *models.RoutineExercise) error {
	if err := re.Validate(); err != nil {
		return &IntegrityError{Op: "update routine exercise", Err: err}
	}
	now := nowMilli()
	re.UpdatedAt = now

	return d.withTx(ctx, func(tx *sql.Tx) error {
		var orderIndex int
		err := tx.QueryRowContext(ctx,
			`SELECT order_index FROM routine_exercises WHERE id = ?`, re.ID).Scan(&orderIndex)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("updating routine exercise %s: %w", re.ID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("querying routine exercise %s: %w", re.ID, err)
		}
		re.OrderIndex = orderIndex

		_, err = tx.ExecContext(ctx,
			`UPDATE routine_exercises
			 SET exercise_definition_id = ?, type = ?, rest_between_sets_sec = ?,
			     rest_after_exercise_sec = ?, timer_mode = ?, total_duration_sec = ?,
			     interval_set_sec = ?, interval_rest_sec = ?, unit = ?,
			     intensity_percent = ?, updated_at = ?
			 WHERE id = ?`,
			re.ExerciseDefinitionID, re.Type, nullIntPtr(re.RestBetweenSetsSec),
			nullIntPtr(re.RestAfterExerciseSec), re.TimerMode, nullIntPtr(re.TotalDurationSec),
			nullIntPtr(re.IntervalSetSec), nullIntPtr(re.IntervalRestSec), re.Unit,
			nullIntPtr(re.IntensityPercent), now, re.ID)
		if err != nil {
			return fmt.Errorf("updating routine exercise %s: %w", re.ID, err)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM routine_sets WHERE routine_exercise_id = ?`, re.ID); err != nil {
			return fmt.Errorf("clearing sets for %s: %w", re.ID, err)
		}
		if err := insertSets(ctx, tx, re.ID, re.Sets, now); err != nil {
			return err
		}

		return touchRoutine(ctx, tx, re.RoutineID, now)
	})
}

// RemoveExerciseFromRoutine deletes an exercise from its routine (sets
// cascade), removes it from the parent's ordered list, and re-densifies
// the surviving order indexes. Removing an id that no longer exists is a
// no-op, keeping cascading cleanup idempotent.
func (d *DB) RemoveExerciseFromRoutine(ctx context.Context, exerciseID string) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		var routineID string
		err := tx.QueryRowContext(ctx,
			`SELECT routine_id FROM routine_exercises WHERE id = ?`, exerciseID).Scan(&routineID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("querying routine exercise %s: %w", exerciseID, err)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM routine_exercises WHERE id = ?`, exerciseID); err != nil {
			return fmt.Errorf("deleting routine exercise %s: %w", exerciseID, err)
		}

		routine, err := routineForUpdate(ctx, tx, routineID)
		if err != nil {
			return err
		}
		ids := routine.ExerciseIDs[:0]
		for _, id := range routine.ExerciseIDs {
			if id != exerciseID {
				ids = append(ids, id)
			}
		}

		now := nowMilli()
		if err := rewriteOrderIndexes(ctx, tx, ids, now); err != nil {
			return err
		}
		return writeExerciseIDs(ctx, tx, routineID, ids, now)
	})
}

// ReorderExercises rewrites every exercise's order index to its position
// in orderedIDs and stores the same list on the parent, atomically. The
// given list must be a permutation of the routine's current exercises.
func (d *DB) ReorderExercises(ctx context.Context, routineID string, orderedIDs []string) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		routine, err := routineForUpdate(ctx, tx, routineID)
		if err != nil {
			return err
		}
		if err := samePermutation(routine.ExerciseIDs, orderedIDs); err != nil {
			return &IntegrityError{Op: "reorder exercises", Err: err}
		}

		now := nowMilli()
		if err := rewriteOrderIndexes(ctx, tx, orderedIDs, now); err != nil {
			return err
		}
		return writeExerciseIDs(ctx, tx, routineID, orderedIDs, now)
	})
}

func samePermutation(current, proposed []string) error {
	if len(current) != len(proposed) {
		return fmt.Errorf("list has %d ids, routine has %d exercises", len(proposed), len(current))
	}
	have := make(map[string]bool, len(current))
	for _, id := range current {
		have[id] = true
	}
	seen := make(map[string]bool, len(proposed))
	for _, id := range proposed {
		if seen[id] {
			return fmt.Errorf("duplicate id %s", id)
		}
		seen[id] = true
		if !have[id] {
			return fmt.Errorf("id %s is not part of the routine", id)
		}
	}
	return nil
}

// GetRoutinesUpdatedSince returns routines whose updated_at is strictly
// newer than ts.
func (d *DB) GetRoutinesUpdatedSince(ctx context.Context, ts int64) ([]models.Routine, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+routineColumns+` FROM routines WHERE updated_at > ?`, ts)
	if err != nil {
		return nil, fmt.Errorf("querying routines since %d: %w", ts, err)
	}
	defer rows.Close()
	return collectRoutines(rows)
}

// ListPendingRoutines returns routines with unsynced local changes.
func (d *DB) ListPendingRoutines(ctx context.Context) ([]models.Routine, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+routineColumns+` FROM routines WHERE sync_status = ?`, models.SyncPending)
	if err != nil {
		return nil, fmt.Errorf("querying pending routines: %w", err)
	}
	defer rows.Close()
	return collectRoutines(rows)
}

// MarkRoutineSynced records a successful reconciliation without touching
// updated_at (the content did not change from the device's point of view).
func (d *DB) MarkRoutineSynced(ctx context.Context, routineID string, syncedAt int64) error {
	_, err := d.db.ExecContext(ctx,
		`UPDATE routines SET sync_status = ?, last_sync_at = ? WHERE id = ?`,
		models.SyncSynced, syncedAt, routineID)
	if err != nil {
		return fmt.Errorf("marking routine %s synced: %w", routineID, err)
	}
	return nil
}

// GetAggregate loads a routine with its full exercise/set subtree.
func (d *DB) GetAggregate(ctx context.Context, routineID string) (*models.RoutineAggregate, error) {
	r, err := d.GetRoutineByID(ctx, routineID)
	if err != nil {
		return nil, err
	}
	exercises, err := d.GetExercisesForRoutine(ctx, routineID)
	if err != nil {
		return nil, err
	}
	return &models.RoutineAggregate{Routine: *r, Exercises: exercises}, nil
}

// ReplaceAggregate replaces the local copy of an aggregate wholesale (the
// losing side of a reconciliation is never field-merged). The existing
// routine row is deleted (children cascade) and the authoritative copy is
// written in its place with the given sync status, all in one transaction.
func (d *DB) ReplaceAggregate(ctx context.Context, agg *models.RoutineAggregate, status models.SyncStatus, syncedAt int64) error {
	r := agg.Routine
	idsJSON, err := json.Marshal(r.ExerciseIDs)
	if err != nil {
		return fmt.Errorf("encoding exercise id list: %w", err)
	}

	return d.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM routines WHERE id = ?`, r.ID); err != nil {
			return fmt.Errorf("clearing routine %s: %w", r.ID, err)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO routines (`+routineColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.Title, nullStrPtr(r.Description), string(idsJSON),
			r.CreatedAt, r.UpdatedAt, status, syncedAt)
		if err != nil {
			return fmt.Errorf("inserting routine %s: %w", r.ID, err)
		}
		for i := range agg.Exercises {
			re := agg.Exercises[i]
			if err := insertRoutineExercise(ctx, tx, &re); err != nil {
				return err
			}
			if err := insertSets(ctx, tx, re.ID, re.Sets, re.UpdatedAt); err != nil {
				return err
			}
		}
		return nil
	})
}

// --- shared helpers ---

func routineForUpdate(ctx context.Context, tx *sql.Tx, routineID string) (*models.Routine, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+routineColumns+` FROM routines WHERE id = ?`, routineID)
	r, err := scanRoutine(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("routine %s: %w", routineID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying routine %s: %w", routineID, err)
	}
	return r, nil
}

func insertRoutineExercise(ctx context.Context, tx *sql.Tx, re *models.RoutineExercise) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO routine_exercises (`+routineExerciseColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		re.ID, re.RoutineID, re.ExerciseDefinitionID, re.Type,
		nullIntPtr(re.RestBetweenSetsSec), nullIntPtr(re.RestAfterExerciseSec), re.TimerMode,
		nullIntPtr(re.TotalDurationSec), nullIntPtr(re.IntervalSetSec), nullIntPtr(re.IntervalRestSec),
		re.Unit, nullIntPtr(re.IntensityPercent), re.OrderIndex, re.CreatedAt, re.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting routine exercise %s: %w", re.ID, err)
	}
	return nil
}

func insertSets(ctx context.Context, tx *sql.Tx, exerciseID string, sets []models.SetPlan, now int64) error {
	for _, s := range sets {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO routine_sets
			 (routine_exercise_id, set_index, target_reps, target_time_sec, weight_value, weight_unit, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			exerciseID, s.Index, nullIntPtr(s.TargetReps), nullIntPtr(s.TargetTimeSec),
			nullFloatPtr(s.WeightValue), s.WeightUnit, now, now)
		if err != nil {
			return fmt.Errorf("inserting set %d for %s: %w", s.Index, exerciseID, err)
		}
	}
	return nil
}

func rewriteOrderIndexes(ctx context.Context, tx *sql.Tx, orderedIDs []string, now int64) error {
	for i, id := range orderedIDs {
		if _, err := tx.ExecContext(ctx,
			`UPDATE routine_exercises SET order_index = ?, updated_at = ? WHERE id = ?`,
			i, now, id); err != nil {
			return fmt.Errorf("setting order index for %s: %w", id, err)
		}
	}
	return nil
}

func writeExerciseIDs(ctx context.Context, tx *sql.Tx, routineID string, ids []string, now int64) error {
	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encoding exercise id list: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE routines SET exercise_ids = ?, updated_at = ?, sync_status = ? WHERE id = ?`,
		string(idsJSON), now, models.SyncPending, routineID)
	if err != nil {
		return fmt.Errorf("updating routine %s: %w", routineID, err)
	}
	return nil
}

func touchRoutine(ctx context.Context, tx *sql.Tx, routineID string, now int64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE routines SET updated_at = ?, sync_status = ? WHERE id = ?`,
		now, models.SyncPending, routineID)
	if err != nil {
		return fmt.Errorf("updating routine %s: %w", routineID, err)
	}
	return nil
}

func nullIntPtr(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

func nullFloatPtr(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
