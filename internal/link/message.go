// Package link implements the fixed-size inter-half message protocol:
// the message model, the wire frame codec, and the endpoint that feeds
// received frames through a bounded queue to a single worker.
//
// Delivery is at-most-once. A failed transmission is logged and
// dropped, never retried: retry latency is worse for typing feel than
// an occasional lost keystroke.
package link

import "github.com/sweeney/splitkbd/internal/hid"

// Role identifies which half originated a message.
type Role uint8

const (
	// Primary is the half that talks to the host.
	Primary Role = iota
	// Secondary forwards its input to the primary over the link.
	Secondary
)

// String returns "primary" or "secondary".
func (r Role) String() string {
	if r == Primary {
		return "primary"
	}
	return "secondary"
}

// Peer returns the opposite role.
func (r Role) Peer() Role {
	if r == Primary {
		return Secondary
	}
	return Primary
}

// Kind discriminates link messages.
type Kind uint8

const (
	// KindConn tells the peer whether the host connection is up; the
	// receiver starts or stops scanning and heartbeat monitoring.
	KindConn Kind = iota
	// KindTap carries a key report for the primary to emit as-is.
	KindTap
	// KindBriefTap carries a key report the primary emits, then clears
	// and re-emits.
	KindBriefTap
	// KindConsumer carries a consumer usage for the primary to emit.
	KindConsumer
	// KindLayerSync activates a momentary layer on the receiver.
	KindLayerSync
	// KindLayerDesync deactivates a momentary layer on the receiver.
	KindLayerDesync
	// KindModSync sets a modifier bit on the receiver.
	KindModSync
	// KindModDesync clears a modifier bit on the receiver.
	KindModDesync
	// KindHeartbeatRequest asks the primary for an immediate response.
	KindHeartbeatRequest
	// KindHeartbeatResponse marks the heartbeat received on the secondary.
	KindHeartbeatResponse
)

var kindNames = map[Kind]string{
	KindConn:              "conn",
	KindTap:               "tap",
	KindBriefTap:          "brief-tap",
	KindConsumer:          "consumer",
	KindLayerSync:         "layer-sync",
	KindLayerDesync:       "layer-desync",
	KindModSync:           "mod-sync",
	KindModDesync:         "mod-desync",
	KindHeartbeatRequest:  "heartbeat-request",
	KindHeartbeatResponse: "heartbeat-response",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Message is one link datagram. Exactly one payload field is meaningful,
// selected by Kind; the rest stay zero. Messages are copied by value
// across the link.
type Message struct {
	Origin Role
	Kind   Kind

	Report hid.Report // Tap, BriefTap
	Usage  uint16     // Consumer
	Layer  uint8      // LayerSync, LayerDesync
	Mask   uint8      // ModSync, ModDesync
	Conn   bool       // Conn
}
