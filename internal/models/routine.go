package models

import "fmt"

// SyncStatus tracks a routine's divergence from its remote copy.
type SyncStatus string

const (
	SyncSynced   SyncStatus = "synced"
	SyncPending  SyncStatus = "pending"
	SyncConflict SyncStatus = "conflict"
)

// TimerMode controls how a routine exercise's timer behaves.
//
//   - none: no automatic timer
//   - total: one countdown over the whole exercise (TotalDurationSec)
//   - intervals: repeating work/rest countdowns (IntervalSetSec/IntervalRestSec)
type TimerMode string

const (
	TimerNone      TimerMode = "none"
	TimerTotal     TimerMode = "total"
	TimerIntervals TimerMode = "intervals"
)

// SetPlan is one planned set within a routine exercise. Exactly one of
// TargetReps/TargetTimeSec is set, matching the parent's measurement type.
type SetPlan struct {
	Index         int            `json:"index"`
	TargetReps    *int           `json:"targetReps,omitempty"`
	TargetTimeSec *int           `json:"targetTimeSec,omitempty"`
	WeightValue   *float64       `json:"weightValue,omitempty"`
	WeightUnit    ResistanceUnit `json:"weightUnit"`
}

// RoutineExercise is a configured exercise within a routine: which
// definition, how it is measured, its planned sets, rest and timer setup,
// and its position in the routine.
type RoutineExercise struct {
	ID                   string          `json:"id"`
	RoutineID            string          `json:"routineId"`
	ExerciseDefinitionID string          `json:"exerciseDefinitionId"`
	Type                 MeasurementType `json:"type"`
	Sets                 []SetPlan       `json:"sets"`
	RestBetweenSetsSec   *int            `json:"restBetweenSetsSec,omitempty"`
	RestAfterExerciseSec *int            `json:"restAfterExerciseSec,omitempty"`
	TimerMode            TimerMode       `json:"timerMode"`
	TotalDurationSec     *int            `json:"totalDurationSec,omitempty"`
	IntervalSetSec       *int            `json:"intervalSetSec,omitempty"`
	IntervalRestSec      *int            `json:"intervalRestSec,omitempty"`
	Unit                 ResistanceUnit  `json:"unit"`
	IntensityPercent     *int            `json:"intensityPercent,omitempty"`
	OrderIndex           int             `json:"orderIndex"`
	CreatedAt            int64           `json:"createdAt"`
	UpdatedAt            int64           `json:"updatedAt"`
}

// Validate enforces the exclusivity rules between timer mode and duration
// fields, and between measurement type and per-set target fields. Sets must
// be non-empty with dense zero-based indexes.
func (re *RoutineExercise) Validate() error {
	if !re.Type.Valid() {
		return fmt.Errorf("unknown measurement type %q", re.Type)
	}
	if !re.Unit.Valid() {
		return fmt.Errorf("unknown resistance unit %q", re.Unit)
	}
	if len(re.Sets) == 0 {
		return fmt.Errorf("routine exercise needs at least one set")
	}

	switch re.TimerMode {
	case TimerNone:
		if re.TotalDurationSec != nil || re.IntervalSetSec != nil || re.IntervalRestSec != nil {
			return fmt.Errorf("timer mode none permits no duration fields")
		}
	case TimerTotal:
		if re.TotalDurationSec == nil {
			return fmt.Errorf("timer mode total requires totalDurationSec")
		}
		if re.IntervalSetSec != nil || re.IntervalRestSec != nil {
			return fmt.Errorf("timer mode total permits no interval fields")
		}
	case TimerIntervals:
		if re.IntervalSetSec == nil || re.IntervalRestSec == nil {
			return fmt.Errorf("timer mode intervals requires intervalSetSec and intervalRestSec")
		}
		if re.TotalDurationSec != nil {
			return fmt.Errorf("timer mode intervals permits no totalDurationSec")
		}
	default:
		return fmt.Errorf("unknown timer mode %q", re.TimerMode)
	}

	for i, s := range re.Sets {
		if s.Index != i {
			return fmt.Errorf("set index %d at position %d: indexes must be dense from 0", s.Index, i)
		}
		hasReps := s.TargetReps != nil
		hasTime := s.TargetTimeSec != nil
		if hasReps == hasTime {
			return fmt.Errorf("set %d: exactly one of targetReps/targetTimeSec must be set", i)
		}
		if re.Type == MeasureReps && !hasReps {
			return fmt.Errorf("set %d: reps exercise requires targetReps", i)
		}
		if re.Type == MeasureTime && !hasTime {
			return fmt.Errorf("set %d: time exercise requires targetTimeSec", i)
		}
		if !s.WeightUnit.Valid() {
			return fmt.Errorf("set %d: unknown weight unit %q", i, s.WeightUnit)
		}
	}
	return nil
}

// Routine is a workout template. ExerciseIDs is the authoritative ordering
// of its routine exercises; every mutation keeps it in lockstep with the
// routine_exercises rows.
type Routine struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	ExerciseIDs []string   `json:"exerciseIds"`
	CreatedAt   int64      `json:"createdAt"`
	UpdatedAt   int64      `json:"updatedAt"`
	SyncStatus  SyncStatus `json:"syncStatus"`
	LastSyncAt  *int64     `json:"lastSyncAt,omitempty"`
}

// Validate checks the routine's own fields. Agreement between ExerciseIDs
// and the stored routine_exercises rows is the repository's job.
func (r *Routine) Validate() error {
	if r.Title == "" {
		return fmt.Errorf("routine title is required")
	}
	seen := make(map[string]bool, len(r.ExerciseIDs))
	for _, id := range r.ExerciseIDs {
		if seen[id] {
			return fmt.Errorf("duplicate exercise id %s in ordered list", id)
		}
		seen[id] = true
	}
	return nil
}

// RoutineAggregate is a routine together with its exercises (and their
// sets), the unit of transfer for synchronization.
type RoutineAggregate struct {
	Routine   Routine           `json:"routine"`
	Exercises []RoutineExercise `json:"exercises"`
}
