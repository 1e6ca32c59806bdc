package session

import (
	"errors"
	"testing"

	"github.com/FairHead/GymFit/internal/models"
)

func intp(v int) *int { return &v }

// twoExerciseAggregate builds a routine with a 2-set reps exercise (90s rest
// between sets) followed by a 1-set time exercise.
func twoExerciseAggregate() *models.RoutineAggregate {
	return &models.RoutineAggregate{
		Routine: models.Routine{ID: "r-1", Title: "Quick", ExerciseIDs: []string{"re-1", "re-2"}},
		Exercises: []models.RoutineExercise{
			{
				ID: "re-1", RoutineID: "r-1", ExerciseDefinitionID: "ex-bench",
				Type: models.MeasureReps, TimerMode: models.TimerNone,
				Unit: models.UnitKg, RestBetweenSetsSec: intp(90),
				Sets: []models.SetPlan{
					{Index: 0, TargetReps: intp(8), WeightUnit: models.UnitKg},
					{Index: 1, TargetReps: intp(8), WeightUnit: models.UnitKg},
				},
			},
			{
				ID: "re-2", RoutineID: "r-1", ExerciseDefinitionID: "ex-plank",
				Type: models.MeasureTime, TimerMode: models.TimerNone,
				Unit: models.UnitBodyweight,
				Sets: []models.SetPlan{
					{Index: 0, TargetTimeSec: intp(60), WeightUnit: models.UnitBodyweight},
				},
			},
		},
	}
}

func TestNewSession(t *testing.T) {
	s, err := New(twoExerciseAggregate(), 1000)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if s.Run.Status != models.RunActive {
		t.Errorf("status = %q, want active", s.Run.Status)
	}
	if len(s.Run.Progress) != 2 {
		t.Fatalf("got %d progress entries, want 2", len(s.Run.Progress))
	}
	if len(s.Run.Progress[0].SetsDone) != 2 || len(s.Run.Progress[1].SetsDone) != 1 {
		t.Errorf("bitmap sizes = %d/%d, want 2/1",
			len(s.Run.Progress[0].SetsDone), len(s.Run.Progress[1].SetsDone))
	}
	if s.Run.Progress[0].StartedAt != 1000 {
		t.Errorf("first exercise not started")
	}
	if cur := s.Current(); cur == nil || cur.ID != "re-1" {
		t.Errorf("current = %v", cur)
	}
}

func TestNewSessionRejectsEmptyRoutine(t *testing.T) {
	agg := &models.RoutineAggregate{Routine: models.Routine{ID: "r-empty", Title: "Empty"}}
	if _, err := New(agg, 1000); err == nil {
		t.Fatal("expected error for routine with no exercises")
	}
}

func TestCompleteSetFlow(t *testing.T) {
	s, err := New(twoExerciseAggregate(), 1000)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	// First set done: cursor moves to set 1, rest timer armed.
	if err := s.CompleteSet(models.ActualSet{ActualReps: intp(8)}, 60_000); err != nil {
		t.Fatalf("complete set 0: %v", err)
	}
	if s.Run.CurrentSetIndex != 1 {
		t.Errorf("set index = %d, want 1", s.Run.CurrentSetIndex)
	}
	if s.Run.Timer.Kind != models.TimerKindRest || s.Run.Timer.DurationSec != 90 {
		t.Errorf("rest timer = %+v", s.Run.Timer)
	}
	got := s.Run.Progress[0].ActualSets
	if len(got) != 1 || got[0].Index != 0 || got[0].CompletedAt != 60_000 {
		t.Errorf("actual sets = %+v", got)
	}

	// Last set of exercise 0: advance to exercise 1, timer stopped (second
	// exercise has no rest configured).
	if err := s.CompleteSet(models.ActualSet{ActualReps: intp(7)}, 180_000); err != nil {
		t.Fatalf("complete set 1: %v", err)
	}
	if s.Run.CurrentExerciseIndex != 1 || s.Run.CurrentSetIndex != 0 {
		t.Errorf("cursor = %d/%d, want 1/0", s.Run.CurrentExerciseIndex, s.Run.CurrentSetIndex)
	}
	if s.Run.Progress[0].CompletedAt != 180_000 {
		t.Error("exercise 0 not marked completed")
	}
	if s.Run.Progress[1].StartedAt != 180_000 {
		t.Error("exercise 1 not marked started")
	}
	if s.Run.Timer.StartedAt != 0 {
		t.Errorf("timer still armed: %+v", s.Run.Timer)
	}

	// Final set: run finishes.
	if err := s.CompleteSet(models.ActualSet{ActualTimeSec: intp(55)}, 301_000); err != nil {
		t.Fatalf("complete final set: %v", err)
	}
	if s.Run.Status != models.RunFinished {
		t.Errorf("status = %q, want finished", s.Run.Status)
	}
	if s.Run.FinishedAt != 301_000 {
		t.Errorf("finished at = %d", s.Run.FinishedAt)
	}
	if s.Run.TotalDurationSec != 300 {
		t.Errorf("total duration = %d, want 300", s.Run.TotalDurationSec)
	}
	if s.Current() != nil {
		t.Error("current should be nil after finish")
	}

	// Terminal run rejects further mutation.
	if err := s.CompleteSet(models.ActualSet{}, 400_000); !errors.Is(err, ErrTerminal) {
		t.Errorf("got %v, want ErrTerminal", err)
	}
}

func TestSkipExercise(t *testing.T) {
	s, err := New(twoExerciseAggregate(), 1000)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if err := s.SkipExercise(5000); err != nil {
		t.Fatalf("skip: %v", err)
	}
	if !s.Run.Progress[0].Skipped {
		t.Error("exercise 0 not flagged skipped")
	}
	if s.Run.CurrentExerciseIndex != 1 {
		t.Errorf("cursor = %d, want 1", s.Run.CurrentExerciseIndex)
	}

	// Skipping the last exercise finishes the run.
	if err := s.SkipExercise(9000); err != nil {
		t.Fatalf("skip last: %v", err)
	}
	if s.Run.Status != models.RunFinished {
		t.Errorf("status = %q, want finished", s.Run.Status)
	}
	if err := s.SkipExercise(10_000); !errors.Is(err, ErrTerminal) {
		t.Errorf("got %v, want ErrTerminal", err)
	}
}

func TestPauseContinue(t *testing.T) {
	s, err := New(twoExerciseAggregate(), 1000)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := s.CompleteSet(models.ActualSet{ActualReps: intp(8)}, 10_000); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if err := s.Pause(20_000); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if s.Run.Status != models.RunPaused || !s.Run.Timer.IsPaused {
		t.Errorf("pause state: status %q, timer %+v", s.Run.Status, s.Run.Timer)
	}
	if err := s.Pause(21_000); err == nil {
		t.Error("double pause should fail")
	}

	// The rest countdown does not tick while paused.
	frozen := Remaining(s.Run.Timer, 500_000)
	if frozen != 80 {
		t.Errorf("frozen remaining = %d, want 80", frozen)
	}

	if err := s.Continue(50_000); err != nil {
		t.Fatalf("continue: %v", err)
	}
	if s.Run.Status != models.RunActive || s.Run.Timer.IsPaused {
		t.Errorf("continue state: status %q, timer %+v", s.Run.Status, s.Run.Timer)
	}
	if err := s.Continue(51_000); err == nil {
		t.Error("continuing an active run should fail")
	}
	// 10s ran before the 30s pause: still 80s left right after resume.
	if got := Remaining(s.Run.Timer, 50_000); got != 80 {
		t.Errorf("remaining after resume = %d, want 80", got)
	}
}

func TestAbandon(t *testing.T) {
	s, err := New(twoExerciseAggregate(), 1000)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := s.Pause(5000); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if err := s.Abandon(61_000); err != nil {
		t.Fatalf("abandon: %v", err)
	}
	if s.Run.Status != models.RunAbandoned {
		t.Errorf("status = %q, want abandoned", s.Run.Status)
	}
	if s.Run.TotalDurationSec != 60 {
		t.Errorf("total duration = %d, want 60", s.Run.TotalDurationSec)
	}
	if err := s.Abandon(70_000); !errors.Is(err, ErrTerminal) {
		t.Errorf("second abandon: got %v, want ErrTerminal", err)
	}
}

// singleExerciseAggregate builds a routine with one time exercise in the
// given timer mode.
func singleExerciseAggregate(mode models.TimerMode, mutate func(*models.RoutineExercise)) *models.RoutineAggregate {
	re := models.RoutineExercise{
		ID: "re-1", RoutineID: "r-1", ExerciseDefinitionID: "ex-plank",
		Type: models.MeasureTime, TimerMode: mode,
		Unit: models.UnitBodyweight,
		Sets: []models.SetPlan{
			{Index: 0, TargetTimeSec: intp(45), WeightUnit: models.UnitBodyweight},
			{Index: 1, TargetTimeSec: intp(45), WeightUnit: models.UnitBodyweight},
		},
	}
	if mutate != nil {
		mutate(&re)
	}
	return &models.RoutineAggregate{
		Routine:   models.Routine{ID: "r-1", Title: "Timed", ExerciseIDs: []string{"re-1"}},
		Exercises: []models.RoutineExercise{re},
	}
}

func TestTotalTimerSpansExercise(t *testing.T) {
	agg := singleExerciseAggregate(models.TimerTotal, func(re *models.RoutineExercise) {
		re.TotalDurationSec = intp(600)
	})
	s, err := New(agg, 1000)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	// The exercise-wide countdown arms at exercise start and keeps running
	// across set completions.
	if s.Run.Timer.Kind != models.TimerKindTot || s.Run.Timer.DurationSec != 600 {
		t.Fatalf("timer at start = %+v", s.Run.Timer)
	}
	if err := s.CompleteSet(models.ActualSet{ActualTimeSec: intp(45)}, 60_000); err != nil {
		t.Fatalf("complete set 0: %v", err)
	}
	if s.Run.Timer.Kind != models.TimerKindTot || s.Run.Timer.StartedAt != 1000 {
		t.Errorf("set completion disturbed the total countdown: %+v", s.Run.Timer)
	}
	if got := Remaining(s.Run.Timer, 121_000); got != 480 {
		t.Errorf("remaining = %d, want 480", got)
	}

	if err := s.CompleteSet(models.ActualSet{ActualTimeSec: intp(45)}, 120_000); err != nil {
		t.Fatalf("complete set 1: %v", err)
	}
	if s.Run.Status != models.RunFinished {
		t.Errorf("status = %q, want finished", s.Run.Status)
	}
	if s.Run.Timer.StartedAt != 0 {
		t.Errorf("timer still armed after finish: %+v", s.Run.Timer)
	}
}

func TestIntervalTimers(t *testing.T) {
	agg := singleExerciseAggregate(models.TimerIntervals, func(re *models.RoutineExercise) {
		re.IntervalSetSec = intp(40)
		re.IntervalRestSec = intp(20)
	})
	s, err := New(agg, 1000)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	// Work interval arms at exercise start, rest interval after each
	// completed set, work again on BeginSet.
	if s.Run.Timer.Kind != models.TimerKindSet || s.Run.Timer.DurationSec != 40 {
		t.Fatalf("timer at start = %+v", s.Run.Timer)
	}
	if err := s.CompleteSet(models.ActualSet{ActualTimeSec: intp(40)}, 41_000); err != nil {
		t.Fatalf("complete set 0: %v", err)
	}
	if s.Run.Timer.Kind != models.TimerKindRest || s.Run.Timer.DurationSec != 20 {
		t.Errorf("timer after set = %+v, want 20s rest", s.Run.Timer)
	}

	if err := s.BeginSet(61_000); err != nil {
		t.Fatalf("begin set: %v", err)
	}
	if s.Run.Timer.Kind != models.TimerKindSet || s.Run.Timer.StartedAt != 61_000 {
		t.Errorf("timer after begin = %+v, want fresh 40s work interval", s.Run.Timer)
	}

	if err := s.CompleteSet(models.ActualSet{ActualTimeSec: intp(40)}, 101_000); err != nil {
		t.Fatalf("complete set 1: %v", err)
	}
	if s.Run.Status != models.RunFinished {
		t.Errorf("status = %q, want finished", s.Run.Status)
	}
	if err := s.BeginSet(102_000); !errors.Is(err, ErrTerminal) {
		t.Errorf("begin on finished run: got %v, want ErrTerminal", err)
	}
}

func TestBeginSetNoOpWithoutIntervals(t *testing.T) {
	s, err := New(twoExerciseAggregate(), 1000)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := s.BeginSet(2000); err != nil {
		t.Fatalf("begin set: %v", err)
	}
	if s.Run.Timer.StartedAt != 0 {
		t.Errorf("begin set armed a timer in mode none: %+v", s.Run.Timer)
	}
}

func TestResumeSnapshotLengthMismatch(t *testing.T) {
	agg := twoExerciseAggregate()
	s, err := New(agg, 1000)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if _, err := Resume(s.Run, agg.Exercises[:1]); err == nil {
		t.Error("expected mismatch error")
	}
	restored, err := Resume(s.Run, agg.Exercises)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if cur := restored.Current(); cur == nil || cur.ID != "re-1" {
		t.Errorf("current after resume = %v", cur)
	}
}
