package session

import "github.com/FairHead/GymFit/internal/models"

// Remaining returns the whole seconds left on a countdown at now (epoch
// milliseconds). It is a pure function over the timer's stored instants —
// no ticking counter anywhere — so the result is correct immediately after
// the process was suspended and resumed, and it is safe to call from any
// goroutine since nothing is mutated.
//
// While paused the elapsed run time is frozen at PausedAt, so the value
// stays constant for any now. The result is never negative.
func Remaining(t models.TimerState, now int64) int {
	if t.StartedAt == 0 || t.Kind == models.TimerKindNone {
		return 0
	}

	var elapsedMS int64
	if t.IsPaused {
		elapsedMS = t.PausedAt - t.StartedAt - t.AccumulatedPausedMS
	} else {
		elapsedMS = now - t.StartedAt - t.AccumulatedPausedMS
	}

	remaining := t.DurationSec - int(elapsedMS/1000)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// StartTimer arms a fresh countdown of the given kind.
func StartTimer(kind models.TimerKind, durationSec int, now int64) models.TimerState {
	return models.TimerState{
		StartedAt:   now,
		DurationSec: durationSec,
		Kind:        kind,
	}
}

// PauseTimer freezes the countdown. Pausing an unarmed or already paused
// timer is a no-op.
func PauseTimer(t *models.TimerState, now int64) {
	if t.StartedAt == 0 || t.IsPaused {
		return
	}
	t.IsPaused = true
	t.PausedAt = now
}

// ResumeTimer folds the just-finished pause into AccumulatedPausedMS and
// lets the countdown continue.
func ResumeTimer(t *models.TimerState, now int64) {
	if !t.IsPaused {
		return
	}
	t.AccumulatedPausedMS += now - t.PausedAt
	t.PausedAt = 0
	t.IsPaused = false
}

// StopTimer disarms the countdown.
func StopTimer(t *models.TimerState) {
	*t = models.TimerState{}
}
