package models

import "fmt"

// MuscleGroup categorizes an exercise by the muscles it targets.
type MuscleGroup string

const (
	MuscleChest      MuscleGroup = "chest"
	MuscleBack       MuscleGroup = "back"
	MuscleShoulders  MuscleGroup = "shoulders"
	MuscleBiceps     MuscleGroup = "biceps"
	MuscleTriceps    MuscleGroup = "triceps"
	MuscleForearms   MuscleGroup = "forearms"
	MuscleCore       MuscleGroup = "core"
	MuscleQuads      MuscleGroup = "quads"
	MuscleHamstrings MuscleGroup = "hamstrings"
	MuscleGlutes     MuscleGroup = "glutes"
	MuscleCalves     MuscleGroup = "calves"
	MuscleFullBody   MuscleGroup = "full-body"
)

// Valid reports whether m is a known muscle group.
func (m MuscleGroup) Valid() bool {
	switch m {
	case MuscleChest, MuscleBack, MuscleShoulders, MuscleBiceps, MuscleTriceps,
		MuscleForearms, MuscleCore, MuscleQuads, MuscleHamstrings, MuscleGlutes,
		MuscleCalves, MuscleFullBody:
		return true
	}
	return false
}

// MeasurementType determines how an exercise is measured: counted reps
// or elapsed time.
type MeasurementType string

const (
	MeasureReps MeasurementType = "reps"
	MeasureTime MeasurementType = "time"
)

// Valid reports whether t is a known measurement type.
func (t MeasurementType) Valid() bool {
	return t == MeasureReps || t == MeasureTime
}

// ResistanceUnit is the weight/resistance measurement for an exercise.
type ResistanceUnit string

const (
	UnitKg         ResistanceUnit = "kg"
	UnitBodyweight ResistanceUnit = "bodyweight"
	UnitBands      ResistanceUnit = "bands"
)

// Valid reports whether u is a known resistance unit.
func (u ResistanceUnit) Valid() bool {
	return u == UnitKg || u == UnitBodyweight || u == UnitBands
}

// ExerciseDefinition is a library entry describing one exercise. Seed rows
// ship with the app (IsCustom=false); users add their own (IsCustom=true).
// Rows are never physically deleted, only deactivated.
type ExerciseDefinition struct {
	ID                    string          `json:"id" yaml:"id"`
	Name                  string          `json:"name" yaml:"name"`
	PrimaryMuscleGroup    MuscleGroup     `json:"primaryMuscleGroup" yaml:"primary_muscle_group"`
	SecondaryMuscleGroups []MuscleGroup   `json:"secondaryMuscleGroups" yaml:"secondary_muscle_groups"`
	DefaultType           MeasurementType `json:"defaultType" yaml:"default_type"`
	DefaultUnit           ResistanceUnit  `json:"defaultUnit" yaml:"default_unit"`
	Description           string          `json:"description,omitempty" yaml:"description"`
	Instructions          string          `json:"instructions,omitempty" yaml:"instructions"`
	Tips                  string          `json:"tips,omitempty" yaml:"tips"`
	IsCustom              bool            `json:"isCustom" yaml:"-"`
	IsActive              bool            `json:"isActive" yaml:"-"`
	CreatedAt             int64           `json:"createdAt" yaml:"-"`
	UpdatedAt             int64           `json:"updatedAt" yaml:"-"`
}

// Validate checks enum fields. Shape validation (required fields, lengths)
// happens upstream; this is the last line before a row is written.
func (e *ExerciseDefinition) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("exercise name is required")
	}
	if !e.PrimaryMuscleGroup.Valid() {
		return fmt.Errorf("unknown primary muscle group %q", e.PrimaryMuscleGroup)
	}
	for _, m := range e.SecondaryMuscleGroups {
		if !m.Valid() {
			return fmt.Errorf("unknown secondary muscle group %q", m)
		}
	}
	if !e.DefaultType.Valid() {
		return fmt.Errorf("unknown measurement type %q", e.DefaultType)
	}
	if !e.DefaultUnit.Valid() {
		return fmt.Errorf("unknown resistance unit %q", e.DefaultUnit)
	}
	return nil
}
