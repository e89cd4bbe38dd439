package half

import (
	"sync"

	"github.com/sweeney/splitkbd/internal/battery"
	"github.com/sweeney/splitkbd/internal/heartbeat"
)

// FakeIndicator records every state push for tests.
type FakeIndicator struct {
	mu   sync.Mutex
	conn []heartbeat.State
	batt []battery.Level
}

func (f *FakeIndicator) SetConnectivity(s heartbeat.State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conn = append(f.conn, s)
}

func (f *FakeIndicator) SetBattery(l battery.Level) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batt = append(f.batt, l)
}

// Conn returns the connectivity states pushed so far.
func (f *FakeIndicator) Conn() []heartbeat.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]heartbeat.State(nil), f.conn...)
}

// Batt returns the battery levels pushed so far.
func (f *FakeIndicator) Batt() []battery.Level {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]battery.Level(nil), f.batt...)
}

// LastConn returns the most recent connectivity state and whether any
// was pushed at all.
func (f *FakeIndicator) LastConn() (heartbeat.State, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.conn) == 0 {
		return 0, false
	}
	return f.conn[len(f.conn)-1], true
}
