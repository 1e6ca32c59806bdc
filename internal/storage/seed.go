package storage

import (
	"fmt"
	"os"

	"github.com/FairHead/GymFit/internal/models"
	"gopkg.in/yaml.v3"
)

// seedFile is the on-disk format consumed by `gymfit -seed`. The seed
// content itself ships with the app; only the loading and insert protocol
// live here.
type seedFile struct {
	Exercises []models.ExerciseDefinition `yaml:"exercises"`
}

// LoadSeedFile reads a YAML exercise library for SeedExercises.
func LoadSeedFile(path string) ([]models.ExerciseDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	if len(f.Exercises) == 0 {
		return nil, fmt.Errorf("seed file %s contains no exercises", path)
	}
	return f.Exercises, nil
}
