package link

import "sync"

// FakeTransport is an in-memory Transport for tests. Sent frames are
// recorded and, when linked to a peer, delivered to it synchronously.
type FakeTransport struct {
	mu   sync.Mutex
	peer *FakeTransport
	fn   func([]byte)

	// Sent contains copies of every frame passed to Send.
	Sent [][]byte

	// SendError, if set, will be returned by Send.
	SendError error

	// Drop, when set, records sent frames without delivering them.
	Drop bool

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakePair returns two linked transports, one per half.
func NewFakePair() (*FakeTransport, *FakeTransport) {
	a := &FakeTransport{}
	b := &FakeTransport{}
	a.peer = b
	b.peer = a
	return a, b
}

// NewFakeTransport returns an unlinked transport that only records.
func NewFakeTransport() *FakeTransport {
	return &FakeTransport{}
}

// Send records a copy of the frame and delivers it to the linked peer.
func (f *FakeTransport) Send(data []byte) error {
	f.mu.Lock()
	if f.SendError != nil {
		err := f.SendError
		f.mu.Unlock()
		return err
	}
	frame := make([]byte, len(data))
	copy(frame, data)
	f.Sent = append(f.Sent, frame)
	peer := f.peer
	drop := f.Drop
	f.mu.Unlock()

	if peer != nil && !drop {
		peer.deliver(frame)
	}
	return nil
}

// Inject delivers a frame to this transport's receiver as if the peer
// had sent it.
func (f *FakeTransport) Inject(data []byte) {
	f.deliver(data)
}

func (f *FakeTransport) deliver(data []byte) {
	f.mu.Lock()
	fn := f.fn
	f.mu.Unlock()
	if fn != nil {
		fn(data)
	}
}

// SetReceiver installs the frame callback.
func (f *FakeTransport) SetReceiver(fn func([]byte)) {
	f.mu.Lock()
	f.fn = fn
	f.mu.Unlock()
}

// Connected reports true until the transport is closed.
func (f *FakeTransport) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.Closed
}

// Close marks the transport as closed.
func (f *FakeTransport) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// SentCount returns how many frames were sent.
func (f *FakeTransport) SentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Sent)
}

// LastSent returns a copy of the most recently sent frame, or nil.
func (f *FakeTransport) LastSent() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Sent) == 0 {
		return nil
	}
	frame := make([]byte, len(f.Sent[len(f.Sent)-1]))
	copy(frame, f.Sent[len(f.Sent)-1])
	return frame
}
