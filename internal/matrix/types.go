// Package matrix sweeps the key switch grid and debounces transitions.
// The debounce state machine is pure logic with NO hardware dependencies;
// time is always injectable via time.Time parameters. Only the Scanner
// touches GPIO.
package matrix

import "time"

// Event represents one settled key transition to be resolved.
type Event struct {
	Row       int
	Col       int
	Pressed   bool
	Timestamp time.Time
}

// Cell tracks debounce state for a single switch.
type Cell struct {
	// Raw is the last instantaneous reading
	Raw bool
	// Current is the settled (debounced) state
	Current bool
	// Previous is the settled state before the last transition
	Previous bool
	// RawChangedAt is when Raw last flipped
	RawChangedAt time.Time
}

// Counts tracks the number of settled transitions since startup.
type Counts struct {
	Presses  int
	Releases int
}
