// Package status provides a thread-safe status tracker for the keyboard
// half daemon. It is designed to be read by HTTP handlers and the web
// status page.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/splitkbd/internal/battery"
	"github.com/sweeney/splitkbd/internal/heartbeat"
	"github.com/sweeney/splitkbd/internal/link"
	"github.com/sweeney/splitkbd/internal/matrix"
	"github.com/sweeney/splitkbd/internal/power"
	"github.com/sweeney/splitkbd/internal/resolver"
)

// Config contains daemon configuration for display.
type Config struct {
	Role      string
	Layout    string
	Broker    string
	HTTPPort  string
	TapHoldMs int64
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Power         power.Mode
	Conn          heartbeat.State
	Scanning      bool
	Keys          resolver.Snapshot
	Scan          matrix.Counts
	Link          link.Stats
	LinkConnected bool
	Battery       *battery.Snapshot
	StartTime     time.Time
	Now           time.Time
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the key-state view and scan counters.
// Called from the scan loop on every sweep.
func (t *Tracker) Update(keys resolver.Snapshot, scan matrix.Counts) {
	t.mu.Lock()
	t.snap.Keys = keys
	t.snap.Scan = scan
	t.mu.Unlock()
}

// SetPower records a power mode change.
func (t *Tracker) SetPower(m power.Mode) {
	t.mu.Lock()
	t.snap.Power = m
	t.mu.Unlock()
}

// SetConn records a connectivity state change.
func (t *Tracker) SetConn(s heartbeat.State) {
	t.mu.Lock()
	t.snap.Conn = s
	t.mu.Unlock()
}

// SetScanning records whether the matrix is being swept.
func (t *Tracker) SetScanning(on bool) {
	t.mu.Lock()
	t.snap.Scanning = on
	t.mu.Unlock()
}

// SetLink sets the link activity counters and transport connection state.
func (t *Tracker) SetLink(stats link.Stats, connected bool) {
	t.mu.Lock()
	t.snap.Link = stats
	t.snap.LinkConnected = connected
	t.mu.Unlock()
}

// SetBattery sets the latest battery reading. Halves without a battery
// sensor never call this and the field stays nil.
func (t *Tracker) SetBattery(snap battery.Snapshot) {
	t.mu.Lock()
	t.snap.Battery = &snap
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
