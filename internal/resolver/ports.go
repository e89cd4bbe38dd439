package resolver

import "github.com/sweeney/splitkbd/internal/hid"

// Output delivers finished reports to the host. Only the primary half
// carries one; the secondary forwards its reports over the link instead
// and never touches this interface.
type Output interface {
	EmitKeyReport(r hid.Report) error
	EmitConsumerReport(r hid.ConsumerReport) error
}

// Peer sends link messages to the other half. Sends are fire and
// forget; a failed send is logged and dropped by the implementation,
// never surfaced here.
type Peer interface {
	SendTap(r hid.Report)
	SendBriefTap(r hid.Report)
	SendConsumer(usage uint16)
	SendLayerSync(layer uint8)
	SendLayerDesync(layer uint8)
	SendModSync(mask uint8)
	SendModDesync(mask uint8)
}
