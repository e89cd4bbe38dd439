package internal

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sweeney/splitkbd/internal/battery"
	"github.com/sweeney/splitkbd/internal/gpio"
	"github.com/sweeney/splitkbd/internal/half"
	"github.com/sweeney/splitkbd/internal/heartbeat"
	"github.com/sweeney/splitkbd/internal/hid"
	"github.com/sweeney/splitkbd/internal/keymap"
	"github.com/sweeney/splitkbd/internal/link"
	"github.com/sweeney/splitkbd/internal/matrix"
	"github.com/sweeney/splitkbd/internal/power"
	"github.com/sweeney/splitkbd/internal/resolver"
	"github.com/sweeney/splitkbd/internal/status"
)

// These tests run two fully composed halves against each other over the
// in-memory link, with the stock left/right layouts and scripted matrix
// frames, and assert the report stream the host would see.

var t0 = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

// frame returns one 5x6 matrix frame with the given [row, col] keys down.
func frame(pressed ...[2]int) gpio.Frame {
	f := make(gpio.Frame, 5)
	for r := range f {
		f[r] = make([]bool, 6)
	}
	for _, p := range pressed {
		f[p[0]][p[1]] = true
	}
	return f
}

// waitFor polls cond until it holds. Link dispatch runs on the endpoint
// workers, so cross-half effects land asynchronously.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}

// pair is a left primary and a right secondary sharing a fake link. The
// run loops are not started; tests drive the tick methods by hand and
// only the link dispatch workers run.
type pair struct {
	primary   *half.Half
	secondary *half.Half

	priRes *resolver.Resolver
	secRes *resolver.Resolver

	out    *resolver.FakeOutput
	priInd *half.FakeIndicator
	secInd *half.FakeIndicator

	priTracker *status.Tracker
	secTracker *status.Tracker
}

func newPair(t *testing.T, leftFrames, rightFrames []gpio.Frame) *pair {
	t.Helper()
	if len(leftFrames) == 0 {
		leftFrames = []gpio.Frame{frame()}
	}
	if len(rightFrames) == 0 {
		rightFrames = []gpio.Frame{frame()}
	}

	priTrans, secTrans := link.NewFakePair()
	priEP := link.NewEndpoint(link.Primary, priTrans)
	secEP := link.NewEndpoint(link.Secondary, secTrans)

	p := &pair{
		out:        &resolver.FakeOutput{},
		priInd:     &half.FakeIndicator{},
		secInd:     &half.FakeIndicator{},
		priTracker: status.NewTracker(t0, status.Config{Role: "primary", Layout: "left", Broker: "fake://pair", TapHoldMs: 150}),
		secTracker: status.NewTracker(t0, status.Config{Role: "secondary", Layout: "right", Broker: "fake://pair", TapHoldMs: 150}),
	}

	p.priRes = resolver.New(resolver.Options{
		Role:   link.Primary,
		Keymap: keymap.ForSide("left"),
		Output: p.out,
		Peer:   priEP,
	})
	p.secRes = resolver.New(resolver.Options{
		Role:   link.Secondary,
		Keymap: keymap.ForSide("right"),
		Peer:   secEP,
	})

	// Zero debounce settles transitions on the first scan.
	opts := matrix.Options{Rows: 5, Cols: 6}

	p.primary = half.New(half.Options{
		Role:      link.Primary,
		Scanner:   matrix.NewScanner(gpio.NewFakePort(leftFrames), opts),
		Resolver:  p.priRes,
		Endpoint:  priEP,
		Scheduler: power.NewScheduler(power.DefaultConfig(), t0),
		Indicator: p.priInd,
		Tracker:   p.priTracker,
	})
	p.secondary = half.New(half.Options{
		Role:      link.Secondary,
		Scanner:   matrix.NewScanner(gpio.NewFakePort(rightFrames), opts),
		Resolver:  p.secRes,
		Endpoint:  secEP,
		Monitor:   heartbeat.NewMonitor(heartbeat.Options{}),
		Scheduler: power.NewScheduler(power.DefaultConfig(), t0),
		Battery:   battery.NewMonitor(&battery.FakeSource{Readings: []battery.Reading{{VoltageMV: 3700}}}, battery.Thresholds{}),
		Indicator: p.secInd,
		Tracker:   p.secTracker,
	})

	priEP.Start()
	secEP.Start()
	t.Cleanup(func() {
		p.primary.Close()
		p.secondary.Close()
	})
	return p
}

func (p *pair) reports() []hid.Report { return p.out.KeyReports() }

// TestTypeAcrossHalves types "hello" with the letters split over both
// halves and checks the host sees the exact press/release stream.
func TestTypeAcrossHalves(t *testing.T) {
	left := []gpio.Frame{
		frame([2]int{1, 3}), // E down
		frame(),             // E up
	}
	right := []gpio.Frame{
		frame([2]int{2, 0}), // H down
		frame(),
		frame([2]int{2, 3}), // L down
		frame(),
		frame([2]int{2, 3}), // L again
		frame(),
		frame([2]int{1, 3}), // O down
		frame(),
	}
	p := newPair(t, left, right)

	now := t0
	step := func(h *half.Half, wantReports int) {
		t.Helper()
		h.ScanTick(now)
		now = now.Add(10 * time.Millisecond)
		waitFor(t, func() bool { return len(p.reports()) == wantReports },
			"report did not reach the host output")
	}

	step(p.secondary, 1) // h
	step(p.secondary, 2)
	step(p.primary, 3) // e
	step(p.primary, 4)
	step(p.secondary, 5) // l
	step(p.secondary, 6)
	step(p.secondary, 7) // l
	step(p.secondary, 8)
	step(p.secondary, 9) // o
	step(p.secondary, 10)

	want := []hid.Report{
		{Keys: [6]uint8{hid.KeyH}},
		{},
		{Keys: [6]uint8{hid.KeyE}},
		{},
		{Keys: [6]uint8{hid.KeyL}},
		{},
		{Keys: [6]uint8{hid.KeyL}},
		{},
		{Keys: [6]uint8{hid.KeyO}},
		{},
	}
	got := p.reports()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("report %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

// TestLayerTapAcrossHalves taps the left layer thumb for its key, then
// holds it to raise the symbol layer on both halves and types a shifted
// symbol from the right half.
func TestLayerTapAcrossHalves(t *testing.T) {
	left := []gpio.Frame{
		frame([2]int{4, 4}), // thumb down (tap)
		frame(),             // thumb up
		frame([2]int{4, 4}), // thumb down (hold)
		frame([2]int{4, 4}), // still held over the timeout
		frame(),             // thumb up
	}
	right := []gpio.Frame{
		frame([2]int{2, 4}), // "@" on the symbol layer
		frame(),
	}
	p := newPair(t, left, right)

	// Quick tap: pending press emits nothing new, the release inside
	// the 100ms window pulses Tab, and the batch retransmits.
	p.primary.ScanTick(t0)
	if got := len(p.reports()); got != 1 {
		t.Fatalf("reports after pending press: got %d, want 1", got)
	}
	p.primary.ScanTick(t0.Add(50 * time.Millisecond))
	if got := len(p.reports()); got != 4 {
		t.Fatalf("reports after tap: got %d, want 4", got)
	}

	// Hold: the second press stays pending, and the sweep 200ms later
	// resolves it as a layer hold on both halves.
	p.primary.ScanTick(t0.Add(100 * time.Millisecond))
	p.primary.ScanTick(t0.Add(300 * time.Millisecond))
	if got := p.priRes.Snapshot().EffectiveLayer; got != 1 {
		t.Fatalf("local layer after hold: got %d, want 1", got)
	}
	waitFor(t, func() bool { return p.secRes.Snapshot().EffectiveLayer == 1 },
		"layer sync did not reach the secondary")

	// The right half types shift+2 from its symbol layer.
	p.secondary.ScanTick(t0.Add(310 * time.Millisecond))
	waitFor(t, func() bool { return len(p.reports()) == 6 }, "symbol press did not arrive")
	p.secondary.ScanTick(t0.Add(320 * time.Millisecond))
	waitFor(t, func() bool { return len(p.reports()) == 7 }, "symbol release did not arrive")

	// Thumb release drops the layer everywhere.
	p.primary.ScanTick(t0.Add(400 * time.Millisecond))
	if got := p.priRes.Snapshot().EffectiveLayer; got != 0 {
		t.Fatalf("local layer after release: got %d, want 0", got)
	}
	waitFor(t, func() bool { return p.secRes.Snapshot().EffectiveLayer == 0 },
		"layer desync did not reach the secondary")

	want := []hid.Report{
		{},
		{Keys: [6]uint8{hid.KeyTab}},
		{},
		{},
		{},
		{Modifiers: hid.ModLeftShift, Keys: [6]uint8{hid.Key2}},
		{},
		{},
	}
	got := p.reports()
	if len(got) != len(want) {
		t.Fatalf("report count: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("report %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

// TestMediaControlsAcrossHalves raises the media layer from the right
// thumb and plays a volume key on the left half.
func TestMediaControlsAcrossHalves(t *testing.T) {
	left := []gpio.Frame{
		frame([2]int{1, 4}), // volume up on the media layer
		frame(),
	}
	right := []gpio.Frame{
		frame([2]int{4, 1}), // layer thumb down
		frame([2]int{4, 1}), // still held over the timeout
		frame(),             // thumb up
	}
	p := newPair(t, left, right)

	p.secondary.ScanTick(t0)
	waitFor(t, func() bool { return len(p.reports()) == 1 }, "pending press tap did not arrive")
	p.secondary.ScanTick(t0.Add(200 * time.Millisecond))
	waitFor(t, func() bool { return p.priRes.Snapshot().EffectiveLayer == 2 },
		"media layer did not reach the primary")

	p.primary.ScanTick(t0.Add(210 * time.Millisecond))
	p.primary.ScanTick(t0.Add(220 * time.Millisecond))

	cons := p.out.ConsumerReports()
	if len(cons) != 2 {
		t.Fatalf("consumer reports: got %d, want 2", len(cons))
	}
	if cons[0].Usage != hid.ConsumerVolumeUp {
		t.Errorf("consumer press: got 0x%04x, want volume up", cons[0].Usage)
	}
	if cons[1].Usage != 0 {
		t.Errorf("consumer release: got 0x%04x, want 0", cons[1].Usage)
	}

	p.secondary.ScanTick(t0.Add(300 * time.Millisecond))
	waitFor(t, func() bool { return p.priRes.Snapshot().EffectiveLayer == 0 },
		"layer desync did not reach the primary")

	// None of this session touched the key report.
	for i, r := range p.reports() {
		if r != (hid.Report{}) {
			t.Errorf("report %d: got %+v, want empty", i, r)
		}
	}
}

// TestHoldForShiftAcrossHalves holds the right Enter thumb past its
// timeout so its shift side applies to a letter typed on the left half.
func TestHoldForShiftAcrossHalves(t *testing.T) {
	left := []gpio.Frame{
		frame([2]int{2, 1}), // A down
		frame(),
	}
	right := []gpio.Frame{
		frame([2]int{4, 0}), // Enter thumb down
		frame([2]int{4, 0}), // still held over the timeout
		frame(),
	}
	p := newPair(t, left, right)

	p.secondary.ScanTick(t0)
	waitFor(t, func() bool { return len(p.reports()) == 1 }, "pending press tap did not arrive")
	p.secondary.ScanTick(t0.Add(200 * time.Millisecond))
	waitFor(t, func() bool { return p.priRes.Snapshot().Report.Modifiers == hid.ModRightShift },
		"modifier sync did not reach the primary")

	p.primary.ScanTick(t0.Add(210 * time.Millisecond))
	p.primary.ScanTick(t0.Add(220 * time.Millisecond))

	p.secondary.ScanTick(t0.Add(300 * time.Millisecond))
	waitFor(t, func() bool { return len(p.reports()) == 4 }, "modifier release did not arrive")

	want := []hid.Report{
		{},
		{Modifiers: hid.ModRightShift, Keys: [6]uint8{hid.KeyA}},
		{Modifiers: hid.ModRightShift},
		{},
	}
	got := p.reports()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("report %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

// TestSessionStatus runs a short session — host attach, heartbeat round
// trip, a keystroke, a battery sample, idle decay — and checks both
// trackers and their JSON renditions.
func TestSessionStatus(t *testing.T) {
	left := []gpio.Frame{
		frame([2]int{2, 1}), // A down
		frame(),
	}
	p := newPair(t, left, nil)

	p.primary.SetHostConnected(true)
	waitFor(t, func() bool { return p.secTracker.Snapshot().Scanning },
		"conn message did not open the secondary scan gate")

	p.secondary.HeartbeatTick(t0)
	waitFor(t, func() bool {
		s, ok := p.secInd.LastConn()
		return ok && s == heartbeat.Connected
	}, "heartbeat round trip did not complete")

	p.primary.ScanTick(t0.Add(time.Second))
	p.primary.ScanTick(t0.Add(time.Second + 10*time.Millisecond))
	p.secondary.BatteryTick()

	// One keystroke a minute ago leaves both halves in efficient mode.
	p.primary.PowerTick(t0.Add(61 * time.Second))
	p.secondary.PowerTick(t0.Add(61 * time.Second))

	pri := p.priTracker.Snapshot()
	if !pri.Scanning {
		t.Error("primary not scanning after host attach")
	}
	if pri.Power != power.Efficient {
		t.Errorf("primary power: got %v, want efficient", pri.Power)
	}
	if pri.Scan.Presses != 1 || pri.Scan.Releases != 1 {
		t.Errorf("primary scan counts: got %+v", pri.Scan)
	}
	if !pri.LinkConnected {
		t.Error("primary link not connected")
	}
	if pri.Link.Sent == 0 {
		t.Error("primary sent no link messages")
	}
	if pri.Battery != nil {
		t.Error("primary has a battery block")
	}

	sec := p.secTracker.Snapshot()
	if sec.Battery == nil {
		t.Fatal("secondary battery block missing")
	}
	if sec.Battery.Level != battery.Good || sec.Battery.VoltageMV != 3700 {
		t.Errorf("secondary battery: got %+v", sec.Battery)
	}
	if sec.Power != power.Efficient {
		t.Errorf("secondary power: got %v, want efficient", sec.Power)
	}

	var doc struct {
		Status struct {
			Role     string `json:"role"`
			Power    string `json:"power"`
			Conn     string `json:"conn"`
			Scanning bool   `json:"scanning"`
			Battery  *struct {
				Level string `json:"level"`
			} `json:"battery"`
		} `json:"status"`
	}
	if err := json.Unmarshal(status.FormatJSON(sec), &doc); err != nil {
		t.Fatalf("unmarshal secondary status: %v", err)
	}
	if doc.Status.Role != "secondary" {
		t.Errorf("json role: got %q", doc.Status.Role)
	}
	if doc.Status.Power != "efficient" {
		t.Errorf("json power: got %q", doc.Status.Power)
	}
	if doc.Status.Conn != "connected" {
		t.Errorf("json conn: got %q", doc.Status.Conn)
	}
	if doc.Status.Battery == nil || doc.Status.Battery.Level != "good" {
		t.Errorf("json battery: got %+v", doc.Status.Battery)
	}

	// Unmarshal leaves absent keys untouched, so clear the battery
	// pointer before decoding the primary's JSON over the same doc.
	doc.Status.Battery = nil
	if err := json.Unmarshal(status.FormatJSON(pri), &doc); err != nil {
		t.Fatalf("unmarshal primary status: %v", err)
	}
	if doc.Status.Role != "primary" {
		t.Errorf("json role: got %q", doc.Status.Role)
	}
	if doc.Status.Battery != nil {
		t.Errorf("primary json battery: got %+v, want absent", doc.Status.Battery)
	}
}
