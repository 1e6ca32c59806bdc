package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/FairHead/GymFit/internal/models"
	"github.com/google/uuid"
)

const exerciseColumns = `id, name, primary_muscle_group, secondary_muscle_groups,
	default_type, default_unit, description, instructions, tips,
	is_custom, is_active, created_at, updated_at`

func nowMilli() int64 { return time.Now().UnixMilli() }

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanExercise(s rowScanner) (*models.ExerciseDefinition, error) {
	var (
		e         models.ExerciseDefinition
		secondary string
		desc      sql.NullString
		instr     sql.NullString
		tips      sql.NullString
	)
	err := s.Scan(&e.ID, &e.Name, &e.PrimaryMuscleGroup, &secondary,
		&e.DefaultType, &e.DefaultUnit, &desc, &instr, &tips,
		&e.IsCustom, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(secondary), &e.SecondaryMuscleGroups); err != nil {
		return nil, fmt.Errorf("decoding secondary muscle groups: %w", err)
	}
	e.Description = desc.String
	e.Instructions = instr.String
	e.Tips = tips.String
	return &e, nil
}

// SeedExercises inserts the shipped exercise library exactly once. A meta
// sentinel records that seeding happened; later calls are no-ops. Within
// the one seeding pass every row is insert-if-absent: an id collision with
// an existing row is skipped, never overwritten. The whole pass and the
// sentinel update are one transaction.
func (d *DB) SeedExercises(ctx context.Context, exercises []models.ExerciseDefinition) error {
	seeded, err := d.GetMeta(ctx, metaSeeded)
	if err != nil {
		return err
	}
	if seeded == "1" {
		return nil
	}

	now := nowMilli()
	err = d.withTx(ctx, func(tx *sql.Tx) error {
		for i := range exercises {
			e := exercises[i]
			e.IsCustom = false
			e.IsActive = true
			if e.CreatedAt == 0 {
				e.CreatedAt = now
			}
			if e.UpdatedAt == 0 {
				e.UpdatedAt = now
			}
			if err := e.Validate(); err != nil {
				return &IntegrityError{Op: "seed exercises", Err: err}
			}
			if err := insertExercise(ctx, tx, &e, true); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO meta (key, value, updated_at) VALUES (?, '1', ?)`,
			metaSeeded, now)
		if err != nil {
			return fmt.Errorf("setting seed sentinel: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("seeding exercises: %w", err)
	}
	return nil
}

func insertExercise(ctx context.Context, tx *sql.Tx, e *models.ExerciseDefinition, ignoreExisting bool) error {
	secondary, err := json.Marshal(e.SecondaryMuscleGroups)
	if err != nil {
		return fmt.Errorf("encoding secondary muscle groups: %w", err)
	}
	verb := "INSERT"
	if ignoreExisting {
		verb = "INSERT OR IGNORE"
	}
	_, err = tx.ExecContext(ctx, verb+` INTO exercise_definitions
		(`+exerciseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.PrimaryMuscleGroup, string(secondary),
		e.DefaultType, e.DefaultUnit,
		nullIfEmpty(e.Description), nullIfEmpty(e.Instructions), nullIfEmpty(e.Tips),
		e.IsCustom, e.IsActive, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting exercise %s: %w", e.ID, err)
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// CreateCustomExercise inserts a user-created exercise definition. The
// repository stamps timestamps and the custom/active flags; a missing id
// gets a generated one.
func (d *DB) CreateCustomExercise(ctx context.Context, e *models.ExerciseDefinition) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := nowMilli()
	e.IsCustom = true
	e.IsActive = true
	e.CreatedAt = now
	e.UpdatedAt = now
	if err := e.Validate(); err != nil {
		return &IntegrityError{Op: "create exercise", Err: err}
	}
	return d.withTx(ctx, func(tx *sql.Tx) error {
		return insertExercise(ctx, tx, e, false)
	})
}

// UpdateExercise rewrites a definition's mutable fields and refreshes
// updated_at.
func (d *DB) UpdateExercise(ctx context.Context, e *models.ExerciseDefinition) error {
	if err := e.Validate(); err != nil {
		return &IntegrityError{Op: "update exercise", Err: err}
	}
	secondary, err := json.Marshal(e.SecondaryMuscleGroups)
	if err != nil {
		return fmt.Errorf("encoding secondary muscle groups: %w", err)
	}
	e.UpdatedAt = nowMilli()
	res, err := d.db.ExecContext(ctx,
		`UPDATE exercise_definitions
		 SET name = ?, primary_muscle_group = ?, secondary_muscle_groups = ?,
		     default_type = ?, default_unit = ?, description = ?,
		     instructions = ?, tips = ?, updated_at = ?
		 WHERE id = ?`,
		e.Name, e.PrimaryMuscleGroup, string(secondary),
		e.DefaultType, e.DefaultUnit,
		nullIfEmpty(e.Description), nullIfEmpty(e.Instructions), nullIfEmpty(e.Tips),
		e.UpdatedAt, e.ID)
	if err != nil {
		return fmt.Errorf("updating exercise %s: %w", e.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("updating exercise %s: %w", e.ID, ErrNotFound)
	}
	return nil
}

// DeleteExercise soft-deletes a definition: the row stays (routines may
// still reference it) but disappears from list/search results.
func (d *DB) DeleteExercise(ctx context.Context, id string) error {
	res, err := d.db.ExecContext(ctx,
		`UPDATE exercise_definitions SET is_active = 0, updated_at = ? WHERE id = ?`,
		nowMilli(), id)
	if err != nil {
		return fmt.Errorf("deleting exercise %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("deleting exercise %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetExerciseByID fetches a definition regardless of its active flag, for
// internal lookups (a routine may reference a soft-deleted definition).
func (d *DB) GetExerciseByID(ctx context.Context, id string) (*models.ExerciseDefinition, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+exerciseColumns+` FROM exercise_definitions WHERE id = ?`, id)
	e, err := scanExercise(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying exercise %s: %w", id, err)
	}
	return e, nil
}

// GetAllExercises lists active definitions ordered by name.
func (d *DB) GetAllExercises(ctx context.Context) ([]models.ExerciseDefinition, error) {
	return d.queryExercises(ctx,
		`SELECT `+exerciseColumns+` FROM exercise_definitions
		 WHERE is_active = 1 ORDER BY name`)
}

// GetExercisesByMuscleGroup lists active definitions whose primary group
// matches, or whose secondary group list contains the group.
func (d *DB) GetExercisesByMuscleGroup(ctx context.Context, group models.MuscleGroup) ([]models.ExerciseDefinition, error) {
	return d.queryExercises(ctx,
		`SELECT `+exerciseColumns+` FROM exercise_definitions
		 WHERE is_active = 1 AND (
		   primary_muscle_group = ?
		   OR secondary_muscle_groups LIKE ?
		 )
		 ORDER BY name`,
		string(group), `%"`+string(group)+`"%`)
}

// SearchExercises does a case-insensitive substring match against name and
// muscle groups of active definitions.
func (d *DB) SearchExercises(ctx context.Context, query string) ([]models.ExerciseDefinition, error) {
	pattern := "%" + query + "%"
	return d.queryExercises(ctx,
		`SELECT `+exerciseColumns+` FROM exercise_definitions
		 WHERE is_active = 1 AND (
		   name LIKE ?
		   OR primary_muscle_group LIKE ?
		   OR secondary_muscle_groups LIKE ?
		 )
		 ORDER BY name`,
		pattern, pattern, pattern)
}

func (d *DB) queryExercises(ctx context.Context, query string, args ...any) ([]models.ExerciseDefinition, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var out []models.ExerciseDefinition
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}
