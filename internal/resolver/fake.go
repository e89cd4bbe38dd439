package resolver

import (
	"sync"

	"github.com/sweeney/splitkbd/internal/hid"
	"github.com/sweeney/splitkbd/internal/link"
)

// FakeOutput records emitted reports for tests.
type FakeOutput struct {
	mu        sync.Mutex
	keys      []hid.Report
	consumers []hid.ConsumerReport

	// KeyReportError, when set, is returned by every EmitKeyReport
	// call. The report is not recorded.
	KeyReportError error
}

func (f *FakeOutput) EmitKeyReport(r hid.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.KeyReportError != nil {
		return f.KeyReportError
	}
	f.keys = append(f.keys, r)
	return nil
}

func (f *FakeOutput) EmitConsumerReport(r hid.ConsumerReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.consumers = append(f.consumers, r)
	return nil
}

// KeyReports returns a copy of every key report emitted so far.
func (f *FakeOutput) KeyReports() []hid.Report {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]hid.Report, len(f.keys))
	copy(out, f.keys)
	return out
}

// ConsumerReports returns a copy of every consumer report emitted so
// far.
func (f *FakeOutput) ConsumerReports() []hid.ConsumerReport {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]hid.ConsumerReport, len(f.consumers))
	copy(out, f.consumers)
	return out
}

// Reset forgets everything recorded so far.
func (f *FakeOutput) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = nil
	f.consumers = nil
}

// FakePeer records link sends as messages for tests.
type FakePeer struct {
	mu   sync.Mutex
	sent []link.Message
}

func (f *FakePeer) SendTap(r hid.Report) {
	f.record(link.Message{Kind: link.KindTap, Report: r})
}

func (f *FakePeer) SendBriefTap(r hid.Report) {
	f.record(link.Message{Kind: link.KindBriefTap, Report: r})
}

func (f *FakePeer) SendConsumer(usage uint16) {
	f.record(link.Message{Kind: link.KindConsumer, Usage: usage})
}

func (f *FakePeer) SendLayerSync(layer uint8) {
	f.record(link.Message{Kind: link.KindLayerSync, Layer: layer})
}

func (f *FakePeer) SendLayerDesync(layer uint8) {
	f.record(link.Message{Kind: link.KindLayerDesync, Layer: layer})
}

func (f *FakePeer) SendModSync(mask uint8) {
	f.record(link.Message{Kind: link.KindModSync, Mask: mask})
}

func (f *FakePeer) SendModDesync(mask uint8) {
	f.record(link.Message{Kind: link.KindModDesync, Mask: mask})
}

func (f *FakePeer) record(m link.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, m)
}

// Sent returns a copy of every message recorded so far.
func (f *FakePeer) Sent() []link.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]link.Message, len(f.sent))
	copy(out, f.sent)
	return out
}

// Kinds returns the kinds of all recorded messages in send order.
func (f *FakePeer) Kinds() []link.Kind {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]link.Kind, len(f.sent))
	for i, m := range f.sent {
		out[i] = m.Kind
	}
	return out
}

// Reset forgets everything recorded so far.
func (f *FakePeer) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
}
