package models

// RunStatus is a workout run's lifecycle state. Finished and abandoned are
// terminal.
type RunStatus string

const (
	RunActive    RunStatus = "active"
	RunPaused    RunStatus = "paused"
	RunFinished  RunStatus = "finished"
	RunAbandoned RunStatus = "abandoned"
)

// TimerKind says what a running countdown is for.
type TimerKind string

const (
	TimerKindNone TimerKind = ""
	TimerKindSet  TimerKind = "set"
	TimerKindRest TimerKind = "rest"
	TimerKindTot  TimerKind = "total"
)

// TimerState is the persisted state of the session countdown. Remaining
// time is always derived from these timestamps, never ticked, so the value
// is correct after the process was suspended and resumed.
//
// StartedAt and PausedAt are epoch milliseconds; zero means unset.
// AccumulatedPausedMS is total completed pause time; the pause currently in
// progress (if any) runs from PausedAt and is folded in on resume.
type TimerState struct {
	StartedAt           int64     `json:"startedAt"`
	DurationSec         int       `json:"durationSec"`
	Kind                TimerKind `json:"kind"`
	IsPaused            bool      `json:"isPaused"`
	PausedAt            int64     `json:"pausedAt"`
	AccumulatedPausedMS int64     `json:"accumulatedPausedMs"`
}

// ActualSet records what actually happened in one completed set.
type ActualSet struct {
	Index         int      `json:"index"`
	ActualReps    *int     `json:"actualReps,omitempty"`
	ActualTimeSec *int     `json:"actualTimeSec,omitempty"`
	ActualWeight  *float64 `json:"actualWeight,omitempty"`
	CompletedAt   int64    `json:"completedAt"`
}

// RunExerciseProgress tracks one exercise within a run. SetsDone is sized
// to the exercise's set count when the run starts and never resized;
// ActualSets is an append-only log of completed sets.
type RunExerciseProgress struct {
	RoutineExerciseID string      `json:"routineExerciseId"`
	SetsDone          []bool      `json:"setsDone"`
	ActualSets        []ActualSet `json:"actualSets,omitempty"`
	Skipped           bool        `json:"skipped"`
	StartedAt         int64       `json:"startedAt,omitempty"`
	CompletedAt       int64       `json:"completedAt,omitempty"`
}

// WorkoutRun is an in-progress (or finished) execution of a routine.
// Runs are session state: they are not part of the synchronized aggregate
// and are persisted only as a snapshot.
type WorkoutRun struct {
	ID                   string                `json:"id"`
	RoutineID            string                `json:"routineId"`
	StartedAt            int64                 `json:"startedAt"`
	FinishedAt           int64                 `json:"finishedAt,omitempty"`
	CurrentExerciseIndex int                   `json:"currentExerciseIndex"`
	CurrentSetIndex      int                   `json:"currentSetIndex"`
	Progress             []RunExerciseProgress `json:"exerciseProgress"`
	Status               RunStatus             `json:"status"`
	Timer                TimerState            `json:"timer"`
	TotalDurationSec     int                   `json:"totalDurationSec,omitempty"`
}

// Terminal reports whether the run can no longer be mutated.
func (r *WorkoutRun) Terminal() bool {
	return r.Status == RunFinished || r.Status == RunAbandoned
}
