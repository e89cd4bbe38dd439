// Package power scales scan and heartbeat cadence with recent input
// activity. The scheduler walks Active -> Normal -> Efficient -> Deep
// as idle time grows and hands out the per-mode intervals the scan and
// heartbeat loops sleep on. Any key event forces Active with no delay;
// the next tick already runs at full speed.
package power

import (
	"log"
	"sync"
	"time"
)

// Mode is a power mode, ordered from most to least responsive.
type Mode uint8

const (
	Active Mode = iota
	Normal
	Efficient
	Deep
)

func (m Mode) String() string {
	switch m {
	case Active:
		return "active"
	case Normal:
		return "normal"
	case Efficient:
		return "efficient"
	case Deep:
		return "deep"
	default:
		return "unknown"
	}
}

// Config holds the idle thresholds and per-mode intervals. The
// thresholds are absolute idle durations: idle below ActiveIdle keeps
// Active, below NormalIdle keeps Normal, below EfficientIdle keeps
// Efficient, anything longer is Deep.
type Config struct {
	ActiveIdle    time.Duration
	NormalIdle    time.Duration
	EfficientIdle time.Duration

	// Indexed by Mode.
	ScanIntervals      [4]time.Duration
	HeartbeatIntervals [4]time.Duration
}

// DefaultConfig returns the stock cadence: millisecond scanning while
// typing, backing off to 100ms after a minute and a half idle.
func DefaultConfig() Config {
	return Config{
		ActiveIdle:    5 * time.Second,
		NormalIdle:    20 * time.Second,
		EfficientIdle: 90 * time.Second,
		ScanIntervals: [4]time.Duration{
			time.Millisecond,
			5 * time.Millisecond,
			25 * time.Millisecond,
			100 * time.Millisecond,
		},
		HeartbeatIntervals: [4]time.Duration{
			5 * time.Second,
			5 * time.Second,
			10 * time.Second,
			15 * time.Second,
		},
	}
}

// Snapshot is a point-in-time copy of scheduler state for status
// reporting.
type Snapshot struct {
	Mode        Mode
	Idle        time.Duration
	Transitions int
}

// Scheduler tracks idle time and the resulting power mode.
type Scheduler struct {
	cfg Config

	mu           sync.Mutex
	mode         Mode
	lastActivity time.Time
	transitions  int
}

// NewScheduler starts in Active mode with the activity clock seeded at
// now. Zero config fields fall back to DefaultConfig values.
func NewScheduler(cfg Config, now time.Time) *Scheduler {
	def := DefaultConfig()
	if cfg.ActiveIdle <= 0 {
		cfg.ActiveIdle = def.ActiveIdle
	}
	if cfg.NormalIdle <= 0 {
		cfg.NormalIdle = def.NormalIdle
	}
	if cfg.EfficientIdle <= 0 {
		cfg.EfficientIdle = def.EfficientIdle
	}
	for i := range cfg.ScanIntervals {
		if cfg.ScanIntervals[i] <= 0 {
			cfg.ScanIntervals[i] = def.ScanIntervals[i]
		}
		if cfg.HeartbeatIntervals[i] <= 0 {
			cfg.HeartbeatIntervals[i] = def.HeartbeatIntervals[i]
		}
	}
	return &Scheduler{cfg: cfg, mode: Active, lastActivity: now}
}

// NotifyActivity records input activity and forces Active mode
// immediately, whatever the current mode.
func (s *Scheduler) NotifyActivity(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = now
	s.setMode(Active)
}

// Evaluate recomputes the mode from the idle duration. It runs once
// per scheduler tick; idle time walks the modes forward one band at a
// time because it only ever grows between activity.
func (s *Scheduler) Evaluate(now time.Time) Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setMode(s.modeFor(now.Sub(s.lastActivity)))
	return s.mode
}

// Mode returns the current power mode.
func (s *Scheduler) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// ScanInterval returns the matrix scan cadence for the current mode.
func (s *Scheduler) ScanInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.ScanIntervals[s.mode]
}

// HeartbeatInterval returns the heartbeat poll cadence for the current
// mode.
func (s *Scheduler) HeartbeatInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.HeartbeatIntervals[s.mode]
}

// Snapshot copies the current scheduler state.
func (s *Scheduler) Snapshot(now time.Time) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Mode:        s.mode,
		Idle:        now.Sub(s.lastActivity),
		Transitions: s.transitions,
	}
}

func (s *Scheduler) modeFor(idle time.Duration) Mode {
	switch {
	case idle < s.cfg.ActiveIdle:
		return Active
	case idle < s.cfg.NormalIdle:
		return Normal
	case idle < s.cfg.EfficientIdle:
		return Efficient
	default:
		return Deep
	}
}

func (s *Scheduler) setMode(m Mode) {
	if m == s.mode {
		return
	}
	log.Printf("power: mode %s -> %s", s.mode, m)
	s.mode = m
	s.transitions++
}
