package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/FairHead/GymFit/internal/models"
)

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exercises.yaml")
	content := `
exercises:
  - id: ex-bench
    name: Bench Press
    primary_muscle_group: chest
    secondary_muscle_groups: [triceps, shoulders]
    default_type: reps
    default_unit: kg
    description: Barbell press on a flat bench.
  - id: ex-plank
    name: Plank
    primary_muscle_group: core
    default_type: time
    default_unit: bodyweight
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	exercises, err := LoadSeedFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(exercises) != 2 {
		t.Fatalf("got %d exercises, want 2", len(exercises))
	}
	bench := exercises[0]
	if bench.ID != "ex-bench" || bench.PrimaryMuscleGroup != models.MuscleChest {
		t.Errorf("bench = %+v", bench)
	}
	if len(bench.SecondaryMuscleGroups) != 2 || bench.SecondaryMuscleGroups[0] != models.MuscleTriceps {
		t.Errorf("secondary = %v", bench.SecondaryMuscleGroups)
	}
	if exercises[1].DefaultType != models.MeasureTime {
		t.Errorf("plank type = %q", exercises[1].DefaultType)
	}
}

func TestLoadSeedFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("exercises: []\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadSeedFile(path); err == nil {
		t.Fatal("expected error for empty seed file")
	}
}

func TestLoadSeedFileMissing(t *testing.T) {
	if _, err := LoadSeedFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
