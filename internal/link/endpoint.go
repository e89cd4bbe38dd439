package link

import (
	"log"
	"sync"

	"github.com/sweeney/splitkbd/internal/hid"
)

// QueueSize is the receive queue depth. The transport callback must
// never block, so a full queue drops the new frame instead.
const QueueSize = 6

// Handler processes one decoded message. Handlers run sequentially on
// the endpoint worker.
type Handler func(Message)

// Stats counts link activity since startup.
type Stats struct {
	Sent         int
	SendErrors   int
	Received     int
	Dropped      int
	DecodeErrors int
}

// Endpoint is one half's view of the link. It frames outgoing messages,
// stamping its own role as origin, and feeds incoming frames through a
// bounded queue to a single dispatch worker.
type Endpoint struct {
	role      Role
	transport Transport

	mu       sync.Mutex
	handlers map[Kind]Handler
	stats    Stats

	queue chan Message
	done  chan struct{}
	once  sync.Once
}

// NewEndpoint wires an Endpoint over the given transport. Call Start to
// begin dispatching received messages.
func NewEndpoint(role Role, tr Transport) *Endpoint {
	e := &Endpoint{
		role:      role,
		transport: tr,
		handlers:  make(map[Kind]Handler),
		queue:     make(chan Message, QueueSize),
		done:      make(chan struct{}),
	}
	tr.SetReceiver(e.receive)
	return e
}

// Role returns the role this endpoint stamps on outgoing messages.
func (e *Endpoint) Role() Role {
	return e.role
}

// Handle registers fn for one message kind. Messages of unregistered
// kinds are ignored with a log line.
func (e *Endpoint) Handle(kind Kind, fn Handler) {
	e.mu.Lock()
	e.handlers[kind] = fn
	e.mu.Unlock()
}

// Start launches the dispatch worker.
func (e *Endpoint) Start() {
	go e.loop()
}

// Close stops the worker and closes the transport.
func (e *Endpoint) Close() error {
	e.once.Do(func() { close(e.done) })
	return e.transport.Close()
}

// receive runs on the transport callback and must not block: decode,
// then enqueue or drop.
func (e *Endpoint) receive(data []byte) {
	m, err := Decode(data)
	if err != nil {
		e.mu.Lock()
		e.stats.DecodeErrors++
		e.mu.Unlock()
		log.Printf("link: dropping frame: %v", err)
		return
	}

	select {
	case e.queue <- m:
	default:
		e.mu.Lock()
		e.stats.Dropped++
		e.mu.Unlock()
		log.Printf("link: receive queue full, dropping %s", m.Kind)
	}
}

func (e *Endpoint) loop() {
	for {
		select {
		case m := <-e.queue:
			e.dispatch(m)
		case <-e.done:
			return
		}
	}
}

func (e *Endpoint) dispatch(m Message) {
	e.mu.Lock()
	fn := e.handlers[m.Kind]
	e.stats.Received++
	e.mu.Unlock()

	if fn == nil {
		log.Printf("link: no handler for %s from %s, ignoring", m.Kind, m.Origin)
		return
	}
	fn(m)
}

// Send frames and transmits m with this endpoint's role as origin.
// At-most-once: a failed transmission is logged and dropped.
func (e *Endpoint) Send(m Message) {
	m.Origin = e.role
	if err := e.transport.Send(Encode(m)); err != nil {
		e.mu.Lock()
		e.stats.SendErrors++
		e.mu.Unlock()
		log.Printf("link: send %s: %v", m.Kind, err)
		return
	}
	e.mu.Lock()
	e.stats.Sent++
	e.mu.Unlock()
}

// SendConn tells the peer whether the host connection is up.
func (e *Endpoint) SendConn(connected bool) {
	e.Send(Message{Kind: KindConn, Conn: connected})
}

// SendTap forwards a key report for the primary to emit as-is.
func (e *Endpoint) SendTap(r hid.Report) {
	e.Send(Message{Kind: KindTap, Report: r})
}

// SendBriefTap forwards a key report the primary emits, clears and
// re-emits.
func (e *Endpoint) SendBriefTap(r hid.Report) {
	e.Send(Message{Kind: KindBriefTap, Report: r})
}

// SendConsumer forwards a consumer usage for the primary to emit.
func (e *Endpoint) SendConsumer(usage uint16) {
	e.Send(Message{Kind: KindConsumer, Usage: usage})
}

// SendLayerSync activates a momentary layer on the peer.
func (e *Endpoint) SendLayerSync(layer uint8) {
	e.Send(Message{Kind: KindLayerSync, Layer: layer})
}

// SendLayerDesync deactivates a momentary layer on the peer.
func (e *Endpoint) SendLayerDesync(layer uint8) {
	e.Send(Message{Kind: KindLayerDesync, Layer: layer})
}

// SendModSync sets a modifier bit on the peer.
func (e *Endpoint) SendModSync(mask uint8) {
	e.Send(Message{Kind: KindModSync, Mask: mask})
}

// SendModDesync clears a modifier bit on the peer.
func (e *Endpoint) SendModDesync(mask uint8) {
	e.Send(Message{Kind: KindModDesync, Mask: mask})
}

// SendHeartbeatRequest asks the primary for an immediate response.
func (e *Endpoint) SendHeartbeatRequest() {
	e.Send(Message{Kind: KindHeartbeatRequest})
}

// SendHeartbeatResponse answers a heartbeat request.
func (e *Endpoint) SendHeartbeatResponse() {
	e.Send(Message{Kind: KindHeartbeatResponse})
}

// Stats returns a copy of the activity counters.
func (e *Endpoint) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Connected reports whether the underlying transport has a path to the
// peer.
func (e *Endpoint) Connected() bool {
	return e.transport.Connected()
}
