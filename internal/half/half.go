// Package half composes one side of the keyboard: the matrix scanner
// feeding the key resolver, the link endpoint, the heartbeat monitor,
// the power scheduler and the battery poll. The run loops are thin
// wrappers over step methods so tests can drive a half tick by tick.
package half

import (
	"log"
	"sync"
	"time"

	"github.com/sweeney/splitkbd/internal/battery"
	"github.com/sweeney/splitkbd/internal/heartbeat"
	"github.com/sweeney/splitkbd/internal/link"
	"github.com/sweeney/splitkbd/internal/matrix"
	"github.com/sweeney/splitkbd/internal/power"
	"github.com/sweeney/splitkbd/internal/resolver"
	"github.com/sweeney/splitkbd/internal/status"
)

// idlePoll is how often a gated scan loop rechecks its gate.
const idlePoll = 50 * time.Millisecond

// Indicator receives connectivity and battery state changes.
type Indicator interface {
	SetConnectivity(heartbeat.State)
	SetBattery(battery.Level)
}

// Options wires a Half. Scanner, Resolver, Endpoint, Scheduler and
// Tracker are required; Monitor is required on the secondary; Battery
// and Indicator are optional.
type Options struct {
	Role      link.Role
	Scanner   *matrix.Scanner
	Resolver  *resolver.Resolver
	Endpoint  *link.Endpoint
	Monitor   *heartbeat.Monitor
	Scheduler *power.Scheduler
	Battery   *battery.Monitor
	Indicator Indicator
	Tracker   *status.Tracker

	// BatteryInterval is the battery sample cadence. Zero means
	// battery.DefaultReadInterval.
	BatteryInterval time.Duration

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// Half runs one side of the keyboard.
type Half struct {
	role      link.Role
	scanner   *matrix.Scanner
	res       *resolver.Resolver
	ep        *link.Endpoint
	mon       *heartbeat.Monitor
	sched     *power.Scheduler
	batt      *battery.Monitor
	ind       Indicator
	tracker   *status.Tracker
	battEvery time.Duration
	now       func() time.Time

	mu     sync.Mutex
	active bool

	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// New wires the half and registers its link handlers for the role.
func New(opts Options) *Half {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.BatteryInterval <= 0 {
		opts.BatteryInterval = battery.DefaultReadInterval
	}
	h := &Half{
		role:      opts.Role,
		scanner:   opts.Scanner,
		res:       opts.Resolver,
		ep:        opts.Endpoint,
		mon:       opts.Monitor,
		sched:     opts.Scheduler,
		batt:      opts.Battery,
		ind:       opts.Indicator,
		tracker:   opts.Tracker,
		battEvery: opts.BatteryInterval,
		now:       opts.Now,
		stop:      make(chan struct{}),
	}
	h.registerHandlers()
	return h
}

func (h *Half) registerHandlers() {
	// Layer and modifier sync flow in both directions.
	h.ep.Handle(link.KindLayerSync, func(m link.Message) { h.res.ApplyLayerSync(m.Layer) })
	h.ep.Handle(link.KindLayerDesync, func(m link.Message) { h.res.ApplyLayerDesync(m.Layer) })
	h.ep.Handle(link.KindModSync, func(m link.Message) { h.res.ApplyModSync(m.Mask) })
	h.ep.Handle(link.KindModDesync, func(m link.Message) { h.res.ApplyModDesync(m.Mask) })

	switch h.role {
	case link.Primary:
		h.ep.Handle(link.KindTap, func(m link.Message) { h.res.ApplyRemoteReport(m.Report) })
		h.ep.Handle(link.KindBriefTap, func(m link.Message) { h.res.ApplyRemoteBriefTap(m.Report) })
		h.ep.Handle(link.KindConsumer, func(m link.Message) { h.res.ApplyRemoteConsumer(m.Usage) })
		h.ep.Handle(link.KindHeartbeatRequest, func(link.Message) { h.ep.SendHeartbeatResponse() })
	case link.Secondary:
		h.ep.Handle(link.KindConn, func(m link.Message) { h.setActive(m.Conn) })
		h.ep.Handle(link.KindHeartbeatResponse, func(link.Message) {
			if tr := h.mon.NoteResponse(h.now()); tr != nil {
				h.applyConn(tr.To)
			}
		})
	}
}

// Start launches the link worker and the half's loops. The scan loop
// stays gated until SetHostConnected (primary) or a Conn message
// (secondary) opens it.
func (h *Half) Start() {
	h.ep.Start()
	h.applyConn(heartbeat.Waiting)

	h.wg.Add(2)
	go h.scanLoop()
	go h.powerLoop()
	if h.role == link.Secondary && h.mon != nil {
		h.wg.Add(1)
		go h.heartbeatLoop()
	}
	if h.batt != nil {
		h.wg.Add(1)
		go h.batteryLoop()
	}
}

// Close stops the loops, then closes the endpoint and its transport.
func (h *Half) Close() error {
	h.once.Do(func() { close(h.stop) })
	h.wg.Wait()
	return h.ep.Close()
}

// SetHostConnected tells the primary whether the host link is up. It
// gates the local scan loop, forwards the change to the secondary as a
// Conn message, and updates the indicator.
func (h *Half) SetHostConnected(up bool) {
	if h.role != link.Primary {
		log.Printf("half: SetHostConnected on %s, ignoring", h.role)
		return
	}
	if up {
		log.Printf("half: host connected")
	} else {
		log.Printf("half: host disconnected")
	}
	h.setActive(up)
	h.ep.SendConn(up)
	if up {
		h.applyConn(heartbeat.Connected)
	} else {
		h.applyConn(heartbeat.Waiting)
	}
}

// ScanTick runs one matrix sweep and feeds the resolver. It returns the
// number of settled events.
func (h *Half) ScanTick(now time.Time) int {
	events, err := h.scanner.Scan(now)
	if err != nil {
		log.Printf("half: scan: %v", err)
		return 0
	}
	if len(events) > 0 {
		h.sched.NotifyActivity(now)
		h.res.ProcessEvents(events, now)
	} else {
		h.res.Sweep(now)
	}
	h.tracker.Update(h.res.Snapshot(), h.scanner.Counts())
	return len(events)
}

// HeartbeatTick runs one liveness poll on the secondary.
func (h *Half) HeartbeatTick(now time.Time) {
	send, tr := h.mon.Check(now)
	if send {
		h.ep.SendHeartbeatRequest()
	}
	if tr != nil {
		h.applyConn(tr.To)
	}
}

// PowerTick re-evaluates the power mode and refreshes link state.
func (h *Half) PowerTick(now time.Time) {
	h.tracker.SetPower(h.sched.Evaluate(now))
	h.tracker.SetLink(h.ep.Stats(), h.ep.Connected())
}

// BatteryTick samples the battery, driving the indicator on changes.
func (h *Half) BatteryTick() {
	level, changed, err := h.batt.Sample()
	if err != nil {
		log.Printf("half: battery: %v", err)
		return
	}
	if changed && h.ind != nil {
		h.ind.SetBattery(level)
	}
	h.tracker.SetBattery(h.batt.Snapshot())
}

// setActive flips the scan gate. Repeating the current state is a no-op.
func (h *Half) setActive(on bool) {
	h.mu.Lock()
	if h.active == on {
		h.mu.Unlock()
		return
	}
	h.active = on
	h.mu.Unlock()

	if on {
		log.Printf("half: matrix scanning started")
	} else {
		log.Printf("half: matrix scanning stopped")
	}
	h.tracker.SetScanning(on)
}

func (h *Half) isActive() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active
}

func (h *Half) applyConn(s heartbeat.State) {
	if h.ind != nil {
		h.ind.SetConnectivity(s)
	}
	h.tracker.SetConn(s)
}

// scanLoop sweeps the matrix at the scheduler's current cadence while
// the gate is open.
func (h *Half) scanLoop() {
	defer h.wg.Done()
	for {
		wait := idlePoll
		if h.isActive() {
			h.ScanTick(h.now())
			wait = h.sched.ScanInterval()
		}
		select {
		case <-h.stop:
			return
		case <-time.After(wait):
		}
	}
}

// heartbeatLoop polls link liveness at the scheduler's current cadence.
// It is not gated: liveness must stay visible while the host is away.
func (h *Half) heartbeatLoop() {
	defer h.wg.Done()
	for {
		h.HeartbeatTick(h.now())
		select {
		case <-h.stop:
			return
		case <-time.After(h.sched.HeartbeatInterval()):
		}
	}
}

func (h *Half) powerLoop() {
	defer h.wg.Done()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
			h.PowerTick(h.now())
		}
	}
}

func (h *Half) batteryLoop() {
	defer h.wg.Done()
	for {
		h.BatteryTick()
		select {
		case <-h.stop:
			return
		case <-time.After(h.battEvery):
		}
	}
}
