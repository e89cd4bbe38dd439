package link

// Transport moves encoded frames between the two halves. Each half holds
// exactly one peer.
type Transport interface {
	// Send transmits one encoded frame to the peer at most once. The
	// frame is copied before Send returns, so the caller may reuse the
	// slice.
	Send(data []byte) error

	// SetReceiver installs the function invoked for every frame arriving
	// from the peer. The callback must not block.
	SetReceiver(fn func(data []byte))

	// Connected reports whether the transport currently has a path to
	// the peer.
	Connected() bool

	// Close releases the transport.
	Close() error
}
