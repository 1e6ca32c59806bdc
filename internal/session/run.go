// Package session tracks an in-progress workout: the run state machine and
// the timestamp-based countdown timers. All state lives in the models
// structs; this package only derives and transitions, so a run can be
// snapshotted and restored at any point without losing timer accuracy.
package session

import (
	"errors"
	"fmt"

	"github.com/FairHead/GymFit/internal/models"
	"github.com/google/uuid"
)

// ErrTerminal rejects mutations on a finished or abandoned run.
var ErrTerminal = errors.New("run is finished or abandoned")

// Session drives one WorkoutRun through a routine's exercises. It holds
// the planned exercises alongside the run so set counts and timer setup
// come from the plan, and all progress lands in Run.
type Session struct {
	Run       *models.WorkoutRun
	Exercises []models.RoutineExercise
}

// New starts a run for the given routine aggregate. Each exercise gets a
// completion bitmap sized to its planned set count; the sizing is fixed for
// the life of the run.
func New(agg *models.RoutineAggregate, now int64) (*Session, error) {
	if len(agg.Exercises) == 0 {
		return nil, fmt.Errorf("routine %s has no exercises", agg.Routine.ID)
	}

	progress := make([]models.RunExerciseProgress, len(agg.Exercises))
	for i, re := range agg.Exercises {
		progress[i] = models.RunExerciseProgress{
			RoutineExerciseID: re.ID,
			SetsDone:          make([]bool, len(re.Sets)),
		}
	}
	progress[0].StartedAt = now

	run := &models.WorkoutRun{
		ID:        uuid.NewString(),
		RoutineID: agg.Routine.ID,
		StartedAt: now,
		Status:    models.RunActive,
		Progress:  progress,
	}
	s := &Session{Run: run, Exercises: agg.Exercises}
	s.armExerciseTimer(now)
	return s, nil
}

// Resume rebuilds a session around a restored run snapshot.
func Resume(run *models.WorkoutRun, exercises []models.RoutineExercise) (*Session, error) {
	if len(run.Progress) != len(exercises) {
		return nil, fmt.Errorf("snapshot has %d exercises, routine has %d", len(run.Progress), len(exercises))
	}
	return &Session{Run: run, Exercises: exercises}, nil
}

// Current returns the exercise the cursor points at, or nil when the run
// has advanced past the last one.
func (s *Session) Current() *models.RoutineExercise {
	if s.Run.CurrentExerciseIndex >= len(s.Exercises) {
		return nil
	}
	return &s.Exercises[s.Run.CurrentExerciseIndex]
}

// CompleteSet marks the current set done, logs the actual values, and
// advances the cursor. When the last set of the last exercise completes,
// the run finishes.
func (s *Session) CompleteSet(actual models.ActualSet, now int64) error {
	if s.Run.Terminal() {
		return ErrTerminal
	}
	cur := s.Current()
	if cur == nil {
		return fmt.Errorf("no current exercise")
	}

	setIdx := s.Run.CurrentSetIndex
	if setIdx >= len(cur.Sets) {
		return fmt.Errorf("set index %d out of range for exercise %s", setIdx, cur.ID)
	}

	prog := &s.Run.Progress[s.Run.CurrentExerciseIndex]
	prog.SetsDone[setIdx] = true
	actual.Index = setIdx
	actual.CompletedAt = now
	prog.ActualSets = append(prog.ActualSets, actual)

	if setIdx+1 < len(cur.Sets) {
		s.Run.CurrentSetIndex = setIdx + 1
		switch cur.TimerMode {
		case models.TimerTotal:
			// The exercise-wide countdown keeps running between sets.
		case models.TimerIntervals:
			s.Run.Timer = StartTimer(models.TimerKindRest, *cur.IntervalRestSec, now)
		default:
			StopTimer(&s.Run.Timer)
			if rest := cur.RestBetweenSetsSec; rest != nil && *rest > 0 {
				s.Run.Timer = StartTimer(models.TimerKindRest, *rest, now)
			}
		}
		return nil
	}

	prog.CompletedAt = now
	StopTimer(&s.Run.Timer)
	s.advanceExercise(now)
	return nil
}

// BeginSet arms the work countdown for the current set where the timer
// mode calls for one, typically after a rest countdown ran out. For modes
// without per-set countdowns this is a no-op.
func (s *Session) BeginSet(now int64) error {
	if s.Run.Terminal() {
		return ErrTerminal
	}
	cur := s.Current()
	if cur == nil {
		return fmt.Errorf("no current exercise")
	}
	if cur.TimerMode == models.TimerIntervals {
		s.Run.Timer = StartTimer(models.TimerKindSet, *cur.IntervalSetSec, now)
	}
	return nil
}

// SkipExercise flags the current exercise skipped and moves on.
func (s *Session) SkipExercise(now int64) error {
	if s.Run.Terminal() {
		return ErrTerminal
	}
	if s.Current() == nil {
		return fmt.Errorf("no current exercise")
	}
	prog := &s.Run.Progress[s.Run.CurrentExerciseIndex]
	prog.Skipped = true
	prog.CompletedAt = now

	StopTimer(&s.Run.Timer)
	s.advanceExercise(now)
	return nil
}

func (s *Session) advanceExercise(now int64) {
	s.Run.CurrentExerciseIndex++
	s.Run.CurrentSetIndex = 0
	if s.Run.CurrentExerciseIndex >= len(s.Exercises) {
		s.finish(now)
		return
	}
	s.Run.Progress[s.Run.CurrentExerciseIndex].StartedAt = now
	s.armExerciseTimer(now)
}

// armExerciseTimer starts the countdown the current exercise's timer mode
// calls for when the exercise begins: the exercise-wide countdown for
// total mode, the first work interval for intervals mode, nothing for
// mode none.
func (s *Session) armExerciseTimer(now int64) {
	cur := s.Current()
	if cur == nil {
		return
	}
	switch cur.TimerMode {
	case models.TimerTotal:
		s.Run.Timer = StartTimer(models.TimerKindTot, *cur.TotalDurationSec, now)
	case models.TimerIntervals:
		s.Run.Timer = StartTimer(models.TimerKindSet, *cur.IntervalSetSec, now)
	}
}

// Pause suspends an active run and freezes its timer.
func (s *Session) Pause(now int64) error {
	if s.Run.Terminal() {
		return ErrTerminal
	}
	if s.Run.Status != models.RunActive {
		return fmt.Errorf("cannot pause a %s run", s.Run.Status)
	}
	s.Run.Status = models.RunPaused
	PauseTimer(&s.Run.Timer, now)
	return nil
}

// Continue reactivates a paused run and its timer.
func (s *Session) Continue(now int64) error {
	if s.Run.Terminal() {
		return ErrTerminal
	}
	if s.Run.Status != models.RunPaused {
		return fmt.Errorf("cannot continue a %s run", s.Run.Status)
	}
	s.Run.Status = models.RunActive
	ResumeTimer(&s.Run.Timer, now)
	return nil
}

// Abandon terminates the run without finishing it. Allowed from active or
// paused.
func (s *Session) Abandon(now int64) error {
	if s.Run.Terminal() {
		return ErrTerminal
	}
	s.Run.Status = models.RunAbandoned
	s.Run.FinishedAt = now
	s.Run.TotalDurationSec = int((now - s.Run.StartedAt) / 1000)
	StopTimer(&s.Run.Timer)
	return nil
}

func (s *Session) finish(now int64) {
	s.Run.Status = models.RunFinished
	s.Run.FinishedAt = now
	s.Run.TotalDurationSec = int((now - s.Run.StartedAt) / 1000)
	StopTimer(&s.Run.Timer)
}
