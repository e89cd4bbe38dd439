package power

import (
	"testing"
	"time"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func TestEscalationTimeline(t *testing.T) {
	s := NewScheduler(DefaultConfig(), t0)

	steps := []struct {
		at   time.Duration
		want Mode
	}{
		{0, Active},
		{4 * time.Second, Active},
		{5 * time.Second, Normal},
		{19 * time.Second, Normal},
		{20 * time.Second, Efficient},
		{89 * time.Second, Efficient},
		{90 * time.Second, Deep},
		{300 * time.Second, Deep},
	}
	for _, step := range steps {
		if got := s.Evaluate(t0.Add(step.at)); got != step.want {
			t.Errorf("mode at idle %s = %s, want %s", step.at, got, step.want)
		}
	}
}

func TestActivityForcesActiveImmediately(t *testing.T) {
	s := NewScheduler(DefaultConfig(), t0)

	s.Evaluate(t0.Add(2 * time.Minute))
	if got := s.Mode(); got != Deep {
		t.Fatalf("mode after long idle = %s, want deep", got)
	}

	at := t0.Add(2*time.Minute + time.Second)
	s.NotifyActivity(at)
	if got := s.Mode(); got != Active {
		t.Fatalf("mode after activity = %s, want active", got)
	}
	if got := s.ScanInterval(); got != time.Millisecond {
		t.Errorf("scan interval after activity = %s, want 1ms", got)
	}
	if got := s.Evaluate(at.Add(time.Millisecond)); got != Active {
		t.Errorf("mode on next tick = %s, want active", got)
	}
}

func TestIntervalsFollowMode(t *testing.T) {
	s := NewScheduler(DefaultConfig(), t0)

	steps := []struct {
		idle      time.Duration
		scan      time.Duration
		heartbeat time.Duration
	}{
		{0, time.Millisecond, 5 * time.Second},
		{6 * time.Second, 5 * time.Millisecond, 5 * time.Second},
		{30 * time.Second, 25 * time.Millisecond, 10 * time.Second},
		{2 * time.Minute, 100 * time.Millisecond, 15 * time.Second},
	}
	for _, step := range steps {
		s.Evaluate(t0.Add(step.idle))
		if got := s.ScanInterval(); got != step.scan {
			t.Errorf("scan interval at idle %s = %s, want %s", step.idle, got, step.scan)
		}
		if got := s.HeartbeatInterval(); got != step.heartbeat {
			t.Errorf("heartbeat interval at idle %s = %s, want %s", step.idle, got, step.heartbeat)
		}
		s.NotifyActivity(t0)
	}
}

func TestSnapshotCountsTransitions(t *testing.T) {
	s := NewScheduler(DefaultConfig(), t0)

	// Walk active -> normal, then activity bounces it straight back.
	s.Evaluate(t0.Add(6 * time.Second))
	s.NotifyActivity(t0.Add(7 * time.Second))

	got := s.Snapshot(t0.Add(8 * time.Second))
	if got.Transitions != 2 {
		t.Errorf("transitions = %d, want 2", got.Transitions)
	}
	if got.Mode != Active {
		t.Errorf("mode = %s, want active", got.Mode)
	}
	if got.Idle != time.Second {
		t.Errorf("idle = %s, want 1s", got.Idle)
	}
}

func TestZeroConfigFallsBackToDefaults(t *testing.T) {
	s := NewScheduler(Config{}, t0)

	if got := s.Evaluate(t0.Add(6 * time.Second)); got != Normal {
		t.Errorf("mode at 6s idle = %s, want normal", got)
	}
	if got := s.ScanInterval(); got != 5*time.Millisecond {
		t.Errorf("scan interval = %s, want 5ms", got)
	}
}

func TestModeStrings(t *testing.T) {
	names := map[Mode]string{
		Active:    "active",
		Normal:    "normal",
		Efficient: "efficient",
		Deep:      "deep",
		Mode(9):   "unknown",
	}
	for mode, want := range names {
		if got := mode.String(); got != want {
			t.Errorf("Mode(%d).String() = %q, want %q", mode, got, want)
		}
	}
}
