// Package resolver turns debounced matrix events into HID reports and
// layer state. It is the one place where key definitions take effect:
// presses and releases mutate the key report, tap-hold keys run their
// timers here, and layer changes are mirrored to the other half over
// the link.
//
// All state lives behind a single mutex. Press, release, remote sync
// and finalize acquire it unconditionally; the periodic timeout sweep
// uses a non-blocking acquire and skips the tick when the state is
// busy, so the scan loop never stalls behind a slow caller.
package resolver

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sweeney/splitkbd/internal/hid"
	"github.com/sweeney/splitkbd/internal/keymap"
	"github.com/sweeney/splitkbd/internal/link"
	"github.com/sweeney/splitkbd/internal/matrix"
)

// DefaultTapHoldTimeout applies to tap-hold keys without a per-key
// timeout override.
const DefaultTapHoldTimeout = 150 * time.Millisecond

// DefaultBaseLayer is the layer a toggle falls back to when it toggles
// its own target off.
const DefaultBaseLayer = 0

// pendingKey records one physically held key. The definition is the one
// that was looked up at press time, so a layer change mid-hold cannot
// reroute the release.
type pendingKey struct {
	def      keymap.Key
	start    time.Time
	timeout  time.Duration
	resolved bool
}

// Options configures a Resolver.
type Options struct {
	Role   link.Role
	Keymap *keymap.Map
	Output Output
	Peer   Peer

	// TapHoldTimeout is the default tap-hold decision window. Zero
	// means DefaultTapHoldTimeout.
	TapHoldTimeout time.Duration
}

// Resolver owns the key report and layer state for one half.
type Resolver struct {
	mu sync.Mutex

	role link.Role
	km   *keymap.Map
	out  Output
	peer Peer

	tapHold time.Duration

	base      int
	momentary []bool
	pending   [][]*pendingKey

	report   hid.Report
	consumer hid.ConsumerReport

	skippedSweeps atomic.Int64
}

// Snapshot is a point-in-time copy of resolver state for status
// reporting.
type Snapshot struct {
	BaseLayer      int
	EffectiveLayer int
	Momentary      []bool
	Report         hid.Report
	ConsumerUsage  uint16
	HeldKeys       int
	SkippedSweeps  int64
}

func New(opts Options) *Resolver {
	if opts.TapHoldTimeout <= 0 {
		opts.TapHoldTimeout = DefaultTapHoldTimeout
	}
	r := &Resolver{
		role:      opts.Role,
		km:        opts.Keymap,
		out:       opts.Output,
		peer:      opts.Peer,
		tapHold:   opts.TapHoldTimeout,
		base:      DefaultBaseLayer,
		momentary: make([]bool, opts.Keymap.Layers()),
		pending:   make([][]*pendingKey, opts.Keymap.Rows()),
	}
	for i := range r.pending {
		r.pending[i] = make([]*pendingKey, opts.Keymap.Cols())
	}
	return r
}

// ProcessEvents applies one batch of matrix events. Overdue tap-holds
// are resolved first so a hold that expired between scans takes effect
// before the new events, then each event is dispatched at the effective
// layer current at that point, and the key report is transmitted once
// at the end.
func (r *Resolver) ProcessEvents(events []matrix.Event, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.checkTapTimeouts(now)
	for _, ev := range events {
		if ev.Pressed {
			r.handlePress(ev.Row, ev.Col, ev.Timestamp)
		} else {
			r.handleRelease(ev.Row, ev.Col, ev.Timestamp)
		}
	}
	r.finalize()
}

// Sweep resolves pending tap-holds whose decision window has passed. It
// runs on every scan tick independent of key activity. The acquire is
// non-blocking: a busy state means a press or remote sync is already in
// flight, and the next tick will catch anything it would have resolved.
func (r *Resolver) Sweep(now time.Time) {
	if !r.mu.TryLock() {
		r.skippedSweeps.Add(1)
		log.Printf("resolver: state busy, skipping timeout sweep")
		return
	}
	defer r.mu.Unlock()
	r.checkTapTimeouts(now)
}

// ApplyLayerSync activates a momentary layer at the peer's request.
func (r *Resolver) ApplyLayerSync(layer uint8) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activateMomentary(int(layer))
}

// ApplyLayerDesync deactivates a momentary layer at the peer's request.
func (r *Resolver) ApplyLayerDesync(layer uint8) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deactivateMomentary(int(layer))
}

// ApplyModSync sets modifier bits held down on the other half.
func (r *Resolver) ApplyModSync(mask uint8) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.report.SetModifier(mask)
}

// ApplyModDesync clears modifier bits released on the other half.
func (r *Resolver) ApplyModDesync(mask uint8) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.report.ClearModifier(mask)
}

// ApplyRemoteReport replaces the current key report with one forwarded
// by the secondary and transmits it. Both halves share one report as
// far as the host can tell; last writer wins.
func (r *Resolver) ApplyRemoteReport(rep hid.Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.report = rep
	r.finalize()
}

// ApplyRemoteBriefTap transmits a forwarded report and immediately
// follows it with an empty one, completing the press-release pulse the
// secondary started.
func (r *Resolver) ApplyRemoteBriefTap(rep hid.Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.report = rep
	r.finalize()
	r.report.Clear()
	r.finalize()
}

// ApplyRemoteConsumer transmits a consumer usage forwarded by the
// secondary. Usage zero releases.
func (r *Resolver) ApplyRemoteConsumer(usage uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.consumer.Usage = usage
	r.sendConsumer()
}

// Snapshot copies the current state for status reporting.
func (r *Resolver) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Snapshot{
		BaseLayer:      r.base,
		EffectiveLayer: r.effectiveLayer(),
		Momentary:      make([]bool, len(r.momentary)),
		Report:         r.report,
		ConsumerUsage:  r.consumer.Usage,
		SkippedSweeps:  r.skippedSweeps.Load(),
	}
	copy(s.Momentary, r.momentary)
	for row := range r.pending {
		for col := range r.pending[row] {
			if r.pending[row][col] != nil {
				s.HeldKeys++
			}
		}
	}
	return s
}

// handlePress resolves interruptions, looks the key up at the current
// effective layer and dispatches its press action. Callers hold mu.
func (r *Resolver) handlePress(row, col int, t time.Time) {
	r.resolveInterruptions(row, col, t)
	def := r.km.Lookup(r.effectiveLayer(), row, col)
	r.press(def, row, col, t)
}

func (r *Resolver) press(def keymap.Key, row, col int, t time.Time) {
	// A transparent key acts as whatever sits below it, and that
	// resolved definition is what gets stored for the release.
	if _, ok := def.(keymap.Transparent); ok {
		if lower, found := r.lowerDefinition(row, col); found {
			def = lower
		}
	}

	switch k := def.(type) {
	case keymap.Normal:
		r.addKey(k.Code)
	case keymap.Modifier:
		r.report.SetModifier(k.Mask)
	case keymap.Shifted:
		r.report.SetModifier(hid.ModLeftShift)
		r.addKey(k.Code)
	case keymap.Consumer:
		r.consumer.Usage = k.Usage
		r.sendConsumer()
	case keymap.LayerTap, keymap.ModTap:
		// Undecided until the timeout sweep, a release, or an
		// interrupting press settles it.
	case keymap.LayerMomentary:
		r.activateMomentary(k.Layer)
	case keymap.LayerToggle:
		r.toggleBase(k.Layer)
	case keymap.Transparent:
		// Every layer below is transparent too; press does nothing
		// and the release will find nothing either.
	default:
		log.Printf("resolver: unsupported key %s at [%d:%d], ignoring", def, row, col)
	}

	r.store(row, col, def, t)
}

// handleRelease dispatches the release action of the definition stored
// at press time, then clears the cell. Callers hold mu.
func (r *Resolver) handleRelease(row, col int, t time.Time) {
	if !r.inBounds(row, col) || r.pending[row][col] == nil {
		log.Printf("resolver: release at [%d:%d] with no stored key, ignoring", row, col)
		return
	}
	p := r.pending[row][col]
	r.release(p, p.def, row, col, t)
	r.pending[row][col] = nil
}

func (r *Resolver) release(p *pendingKey, def keymap.Key, row, col int, t time.Time) {
	// A stored transparent means the press found nothing below; try
	// again at release time and apply that definition's release.
	if _, ok := def.(keymap.Transparent); ok {
		lower, found := r.lowerDefinition(row, col)
		if !found {
			return
		}
		def = lower
	}

	switch k := def.(type) {
	case keymap.Normal:
		r.report.RemoveKey(k.Code)
	case keymap.Modifier:
		r.report.ClearModifier(k.Mask)
	case keymap.Shifted:
		r.report.ClearModifier(hid.ModLeftShift)
		r.report.RemoveKey(k.Code)
	case keymap.Consumer:
		r.consumer.Usage = 0
		r.sendConsumer()
	case keymap.LayerTap:
		if !p.resolved && t.Sub(p.start) < p.timeout {
			r.briefTap(k.Tap)
		} else {
			r.deactivateMomentary(k.Layer)
			r.peer.SendLayerDesync(uint8(k.Layer))
		}
	case keymap.ModTap:
		if !p.resolved && t.Sub(p.start) < p.timeout {
			r.briefTap(k.Tap)
		} else {
			r.report.ClearModifier(k.Mask)
			r.peer.SendModDesync(k.Mask)
		}
	case keymap.LayerMomentary:
		r.deactivateMomentary(k.Layer)
	case keymap.LayerToggle:
		// Toggling happens on press only.
	default:
		// Press already warned.
	}
}

// checkTapTimeouts resolves every undecided tap-hold whose decision
// window has elapsed: the hold side takes effect and the peer is told.
// Callers hold mu.
func (r *Resolver) checkTapTimeouts(now time.Time) {
	for row := range r.pending {
		for col := range r.pending[row] {
			p := r.pending[row][col]
			if p == nil || p.resolved {
				continue
			}
			switch k := p.def.(type) {
			case keymap.LayerTap:
				if now.Sub(p.start) >= p.timeout {
					p.resolved = true
					r.activateMomentary(k.Layer)
					r.peer.SendLayerSync(uint8(k.Layer))
				}
			case keymap.ModTap:
				if now.Sub(p.start) >= p.timeout {
					p.resolved = true
					r.report.SetModifier(k.Mask)
					r.peer.SendModSync(k.Mask)
				}
			}
		}
	}
}

// resolveInterruptions forces every other still-undecided tap-hold to
// resolve as a quick tap before the new press lands. Rolling keystrokes
// beat hold detection.
func (r *Resolver) resolveInterruptions(row, col int, t time.Time) {
	for pr := range r.pending {
		for pc := range r.pending[pr] {
			if pr == row && pc == col {
				continue
			}
			p := r.pending[pr][pc]
			if p == nil || p.resolved {
				continue
			}
			var tap uint8
			switch k := p.def.(type) {
			case keymap.LayerTap:
				tap = k.Tap
			case keymap.ModTap:
				tap = k.Tap
			default:
				continue
			}
			if t.Sub(p.start) < p.timeout {
				p.resolved = true
				r.briefTap(tap)
			}
		}
	}
}

// briefTap pulses one keycode as a back-to-back press and release. The
// primary transmits both edges itself; the secondary forwards the
// pressed report in a single message and trims its local copy, leaving
// the release edge to the primary.
func (r *Resolver) briefTap(code uint8) {
	r.addKey(code)
	if r.role == link.Primary {
		r.emitReport()
		r.report.RemoveKey(code)
		r.emitReport()
		return
	}
	r.peer.SendBriefTap(r.report)
	r.report.RemoveKey(code)
}

// finalize transmits the current key report. Unchanged reports are
// retransmitted as-is; a duplicate report is harmless to the host.
func (r *Resolver) finalize() {
	if r.role == link.Primary {
		r.emitReport()
		return
	}
	r.peer.SendTap(r.report)
}

func (r *Resolver) emitReport() {
	if err := r.out.EmitKeyReport(r.report); err != nil {
		log.Printf("resolver: emit key report: %v", err)
	}
}

func (r *Resolver) sendConsumer() {
	if r.role == link.Primary {
		if err := r.out.EmitConsumerReport(r.consumer); err != nil {
			log.Printf("resolver: emit consumer report: %v", err)
		}
		return
	}
	r.peer.SendConsumer(r.consumer.Usage)
}

func (r *Resolver) addKey(code uint8) {
	if err := r.report.AddKey(code); err != nil {
		log.Printf("resolver: report full, dropping key 0x%02x", code)
	}
}

// effectiveLayer returns the highest active momentary layer, or the
// base layer when none is active. Index 0 never acts as a momentary
// layer; it can only be reached as the base.
func (r *Resolver) effectiveLayer() int {
	for i := len(r.momentary) - 1; i > 0; i-- {
		if r.momentary[i] {
			return i
		}
	}
	return r.base
}

// lowerDefinition walks the layers below the current effective layer
// and returns the first non-transparent definition at the cell.
func (r *Resolver) lowerDefinition(row, col int) (keymap.Key, bool) {
	for layer := r.effectiveLayer() - 1; layer >= 0; layer-- {
		def := r.km.Lookup(layer, row, col)
		if _, ok := def.(keymap.Transparent); !ok {
			return def, true
		}
	}
	return nil, false
}

func (r *Resolver) toggleBase(layer int) {
	if layer < 0 || layer >= len(r.momentary) {
		return
	}
	if r.base == layer {
		r.base = DefaultBaseLayer
	} else {
		r.base = layer
	}
	// The secondary carries the toggle over so both halves resolve
	// from the same table.
	if r.role == link.Secondary {
		r.peer.SendLayerSync(uint8(r.base))
	}
	log.Printf("resolver: base layer toggled to %d", r.base)
}

func (r *Resolver) activateMomentary(layer int) {
	if layer >= 0 && layer < len(r.momentary) {
		r.momentary[layer] = true
	}
}

func (r *Resolver) deactivateMomentary(layer int) {
	if layer >= 0 && layer < len(r.momentary) {
		r.momentary[layer] = false
	}
}

func (r *Resolver) store(row, col int, def keymap.Key, t time.Time) {
	if !r.inBounds(row, col) {
		return
	}
	p := &pendingKey{def: def, start: t}
	switch k := def.(type) {
	case keymap.LayerTap:
		p.timeout = r.effectiveTimeout(k.Timeout)
	case keymap.ModTap:
		p.timeout = r.effectiveTimeout(k.Timeout)
	}
	r.pending[row][col] = p
}

func (r *Resolver) effectiveTimeout(override time.Duration) time.Duration {
	if override > 0 {
		return override
	}
	return r.tapHold
}

func (r *Resolver) inBounds(row, col int) bool {
	return row >= 0 && row < len(r.pending) && col >= 0 && col < len(r.pending[row])
}
