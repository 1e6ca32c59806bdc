package storage

// Migration is one shipped schema version: an ordered set of statements
// applied as a single atomic unit. Shipped migrations are immutable; new
// schema changes are appended as a new entry, never edited in place.
type Migration struct {
	Version     int
	Description string
	Statements  []string
}

// migrations is the full ordered history of the device schema.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema: meta, exercise definitions, routines, routine exercises, routine sets",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS meta (
				key        TEXT PRIMARY KEY,
				value      TEXT NOT NULL,
				updated_at INTEGER NOT NULL
			)`,

			`CREATE TABLE IF NOT EXISTS exercise_definitions (
				id                      TEXT PRIMARY KEY,
				name                    TEXT NOT NULL,
				primary_muscle_group    TEXT NOT NULL,
				secondary_muscle_groups TEXT NOT NULL DEFAULT '[]',
				default_type            TEXT NOT NULL CHECK (default_type IN ('reps', 'time')),
				default_unit            TEXT NOT NULL CHECK (default_unit IN ('kg', 'bodyweight', 'bands')),
				description             TEXT,
				instructions            TEXT,
				tips                    TEXT,
				is_custom               INTEGER NOT NULL DEFAULT 0,
				is_active               INTEGER NOT NULL DEFAULT 1,
				created_at              INTEGER NOT NULL,
				updated_at              INTEGER NOT NULL
			)`,

			`CREATE TABLE IF NOT EXISTS routines (
				id           TEXT PRIMARY KEY,
				title        TEXT NOT NULL,
				description  TEXT,
				exercise_ids TEXT NOT NULL DEFAULT '[]',
				created_at   INTEGER NOT NULL,
				updated_at   INTEGER NOT NULL,
				sync_status  TEXT NOT NULL DEFAULT 'pending' CHECK (sync_status IN ('synced', 'pending', 'conflict')),
				last_sync_at INTEGER
			)`,

			`CREATE TABLE IF NOT EXISTS routine_exercises (
				id                      TEXT PRIMARY KEY,
				routine_id              TEXT NOT NULL,
				exercise_definition_id  TEXT NOT NULL,
				type                    TEXT NOT NULL CHECK (type IN ('reps', 'time')),
				rest_between_sets_sec   INTEGER,
				rest_after_exercise_sec INTEGER,
				timer_mode              TEXT NOT NULL DEFAULT 'none' CHECK (timer_mode IN ('none', 'total', 'intervals')),
				total_duration_sec      INTEGER,
				interval_set_sec        INTEGER,
				interval_rest_sec       INTEGER,
				unit                    TEXT NOT NULL DEFAULT 'kg' CHECK (unit IN ('kg', 'bodyweight', 'bands')),
				order_index             INTEGER NOT NULL,
				created_at              INTEGER NOT NULL,
				updated_at              INTEGER NOT NULL,
				FOREIGN KEY (routine_id) REFERENCES routines(id) ON DELETE CASCADE,
				FOREIGN KEY (exercise_definition_id) REFERENCES exercise_definitions(id)
			)`,

			`CREATE TABLE IF NOT EXISTS routine_sets (
				id                  INTEGER PRIMARY KEY AUTOINCREMENT,
				routine_exercise_id TEXT NOT NULL,
				set_index           INTEGER NOT NULL,
				target_reps         INTEGER,
				target_time_sec     INTEGER,
				weight_value        REAL,
				weight_unit         TEXT NOT NULL DEFAULT 'kg' CHECK (weight_unit IN ('kg', 'bodyweight', 'bands')),
				created_at          INTEGER NOT NULL,
				updated_at          INTEGER NOT NULL,
				FOREIGN KEY (routine_exercise_id) REFERENCES routine_exercises(id) ON DELETE CASCADE,
				UNIQUE (routine_exercise_id, set_index)
			)`,

			`CREATE INDEX IF NOT EXISTS idx_routine_exercises_routine_id
				ON routine_exercises(routine_id)`,
			`CREATE INDEX IF NOT EXISTS idx_routine_sets_exercise_id
				ON routine_sets(routine_exercise_id)`,
			`CREATE INDEX IF NOT EXISTS idx_routines_updated_at
				ON routines(updated_at DESC)`,
		},
	},
	{
		Version:     2,
		Description: "intensity percent on routine exercises, muscle group index",
		Statements: []string{
			`ALTER TABLE routine_exercises ADD COLUMN intensity_percent INTEGER`,
			`CREATE INDEX IF NOT EXISTS idx_exercise_definitions_muscle
				ON exercise_definitions(primary_muscle_group)`,
		},
	},
}

// LatestVersion is the highest shipped schema version.
func LatestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
