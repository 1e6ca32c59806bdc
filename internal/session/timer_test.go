package session

import (
	"testing"

	"github.com/FairHead/GymFit/internal/models"
)

func TestRemaining(t *testing.T) {
	base := int64(1_700_000_000_000)

	tests := []struct {
		name  string
		timer models.TimerState
		now   int64
		want  int
	}{
		{
			name:  "unarmed timer",
			timer: models.TimerState{},
			now:   base,
			want:  0,
		},
		{
			name:  "just started",
			timer: models.TimerState{StartedAt: base, DurationSec: 90, Kind: models.TimerKindRest},
			now:   base,
			want:  90,
		},
		{
			name:  "mid countdown",
			timer: models.TimerState{StartedAt: base, DurationSec: 90, Kind: models.TimerKindRest},
			now:   base + 30_000,
			want:  60,
		},
		{
			name:  "sub-second elapsed rounds down",
			timer: models.TimerState{StartedAt: base, DurationSec: 90, Kind: models.TimerKindRest},
			now:   base + 999,
			want:  90,
		},
		{
			name:  "expired clamps to zero",
			timer: models.TimerState{StartedAt: base, DurationSec: 90, Kind: models.TimerKindRest},
			now:   base + 400_000,
			want:  0,
		},
		{
			name: "paused value frozen regardless of now",
			timer: models.TimerState{
				StartedAt: base, DurationSec: 90, Kind: models.TimerKindSet,
				IsPaused: true, PausedAt: base + 10_000,
			},
			now:  base + 500_000,
			want: 80,
		},
		{
			name: "completed pauses excluded from elapsed",
			timer: models.TimerState{
				StartedAt: base, DurationSec: 90, Kind: models.TimerKindSet,
				AccumulatedPausedMS: 20_000,
			},
			now:  base + 50_000,
			want: 60,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Remaining(tt.timer, tt.now); got != tt.want {
				t.Errorf("Remaining() = %d, want %d", got, tt.want)
			}
		})
	}
}

// The derived value must not depend on how often it is sampled, only on the
// instants stored in the state.
func TestRemainingPureOverRepeatedSampling(t *testing.T) {
	base := int64(1_700_000_000_000)
	timer := StartTimer(models.TimerKindTot, 600, base)

	at := base + 120_000
	first := Remaining(timer, at)
	for i := 0; i < 10; i++ {
		if got := Remaining(timer, at); got != first {
			t.Fatalf("sample %d: got %d, want %d", i, got, first)
		}
	}
	if first != 480 {
		t.Errorf("Remaining = %d, want 480", first)
	}
}

func TestPauseResumeCycle(t *testing.T) {
	base := int64(1_700_000_000_000)
	timer := StartTimer(models.TimerKindRest, 120, base)

	// Run 30s, pause for 60s, run 10s more: 40s elapsed, 80s left.
	PauseTimer(&timer, base+30_000)
	if got := Remaining(timer, base+45_000); got != 90 {
		t.Errorf("while paused: %d, want 90", got)
	}
	ResumeTimer(&timer, base+90_000)
	if got := Remaining(timer, base+100_000); got != 80 {
		t.Errorf("after resume: %d, want 80", got)
	}

	// Second pause accumulates on top of the first.
	PauseTimer(&timer, base+100_000)
	ResumeTimer(&timer, base+130_000)
	if got := Remaining(timer, base+130_000); got != 80 {
		t.Errorf("after second pause: %d, want 80", got)
	}
}

func TestPauseTimerNoOps(t *testing.T) {
	base := int64(1_700_000_000_000)

	var unarmed models.TimerState
	PauseTimer(&unarmed, base)
	if unarmed.IsPaused {
		t.Error("pausing an unarmed timer armed it")
	}

	timer := StartTimer(models.TimerKindSet, 60, base)
	PauseTimer(&timer, base+10_000)
	PauseTimer(&timer, base+20_000)
	if timer.PausedAt != base+10_000 {
		t.Errorf("double pause moved PausedAt to %d", timer.PausedAt)
	}

	ResumeTimer(&timer, base+30_000)
	ResumeTimer(&timer, base+40_000)
	if timer.AccumulatedPausedMS != 20_000 {
		t.Errorf("double resume accumulated %d ms, want 20000", timer.AccumulatedPausedMS)
	}
}

func TestStopTimer(t *testing.T) {
	timer := StartTimer(models.TimerKindRest, 60, 1000)
	StopTimer(&timer)
	if timer.StartedAt != 0 || timer.Kind != models.TimerKindNone {
		t.Errorf("stop left state %+v", timer)
	}
	if got := Remaining(timer, 2000); got != 0 {
		t.Errorf("stopped timer remaining = %d", got)
	}
}
