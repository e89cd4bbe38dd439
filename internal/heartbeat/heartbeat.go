// Package heartbeat tracks whether the other half is still answering.
// The secondary runs the Monitor: it asks for a heartbeat on a fixed
// cadence and walks Connected -> Waiting -> Sleeping as the silence
// grows. The primary never monitors; it just answers requests.
//
// The monitor decides, the caller acts: Check reports when a request
// should go out and which transition fired, and never touches the link
// itself, so the state machine tests without any transport.
package heartbeat

import (
	"sync"
	"time"
)

// State is the connectivity state of a half, shared with the indicator.
type State uint8

const (
	// Connected means the peer (or the host, on the primary) is
	// responding.
	Connected State = iota
	// Waiting means a response is overdue but recently so.
	Waiting
	// Sleeping means the peer has been silent long enough to give up
	// until it speaks again.
	Sleeping
)

func (s State) String() string {
	switch s {
	case Connected:
		return "connected"
	case Waiting:
		return "waiting"
	case Sleeping:
		return "sleeping"
	default:
		return "unknown"
	}
}

const (
	DefaultInterval = 30 * time.Second
	DefaultStable   = time.Second
	DefaultTimeout  = 10 * time.Second
)

// Options configures a Monitor. Zero durations use the defaults above.
type Options struct {
	// Interval is the request cadence.
	Interval time.Duration
	// Stable is the grace period after a request before an unanswered
	// Connected state degrades to Waiting.
	Stable time.Duration
	// Timeout is the additional silence after Stable before Waiting
	// degrades to Sleeping.
	Timeout time.Duration
}

// Transition records a connectivity state change.
type Transition struct {
	From State
	To   State
}

// Snapshot is a point-in-time copy of monitor state for status
// reporting.
type Snapshot struct {
	State     State
	Awaiting  bool
	Requests  int
	Responses int
}

// Monitor is the secondary-side heartbeat state machine.
type Monitor struct {
	interval time.Duration
	stable   time.Duration
	timeout  time.Duration

	mu        sync.Mutex
	state     State
	lastReq   time.Time
	received  bool
	requests  int
	responses int
}

func NewMonitor(opts Options) *Monitor {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Stable <= 0 {
		opts.Stable = DefaultStable
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Monitor{
		interval: opts.Interval,
		stable:   opts.Stable,
		timeout:  opts.Timeout,
		state:    Waiting,
	}
}

// Check advances one poll tick. It reports whether a HeartbeatRequest
// is due, and the transition if the silence since the last request
// crossed a threshold. Escalation is strictly one step per call.
func (m *Monitor) Check(now time.Time) (sendRequest bool, tr *Transition) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(m.lastReq) >= m.interval {
		m.received = false
		m.lastReq = now
		m.requests++
		sendRequest = true
	}
	if m.received {
		return sendRequest, nil
	}

	elapsed := now.Sub(m.lastReq)
	switch {
	case m.state == Connected && elapsed >= m.stable:
		m.state = Waiting
		tr = &Transition{From: Connected, To: Waiting}
	case m.state == Waiting && elapsed >= m.timeout+m.stable:
		m.state = Sleeping
		tr = &Transition{From: Waiting, To: Sleeping}
	}
	return sendRequest, tr
}

// NoteResponse records a heartbeat reply. Any response snaps the state
// straight back to Connected, whatever it was, and pushes the next
// request out a full interval.
func (m *Monitor) NoteResponse(now time.Time) *Transition {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.received = true
	m.lastReq = now
	m.responses++
	if m.state == Connected {
		return nil
	}
	tr := &Transition{From: m.state, To: Connected}
	m.state = Connected
	return tr
}

// State returns the current connectivity state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Snapshot copies the current monitor state.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		State:     m.state,
		Awaiting:  !m.received && !m.lastReq.IsZero(),
		Requests:  m.requests,
		Responses: m.responses,
	}
}
