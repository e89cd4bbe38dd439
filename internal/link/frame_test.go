package link

import (
	"errors"
	"testing"

	"github.com/sweeney/splitkbd/internal/hid"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	var report hid.Report
	report.SetModifier(hid.ModLeftShift)
	report.AddKey(hid.KeyA)
	report.AddKey(hid.KeyB)

	cases := []Message{
		{Origin: Primary, Kind: KindConn, Conn: true},
		{Origin: Primary, Kind: KindConn, Conn: false},
		{Origin: Secondary, Kind: KindTap, Report: report},
		{Origin: Secondary, Kind: KindBriefTap, Report: report},
		{Origin: Secondary, Kind: KindConsumer, Usage: hid.ConsumerVolumeUp},
		{Origin: Secondary, Kind: KindLayerSync, Layer: 2},
		{Origin: Primary, Kind: KindLayerDesync, Layer: 1},
		{Origin: Secondary, Kind: KindModSync, Mask: hid.ModRightShift},
		{Origin: Primary, Kind: KindModDesync, Mask: hid.ModLeftGUI},
		{Origin: Secondary, Kind: KindHeartbeatRequest},
		{Origin: Primary, Kind: KindHeartbeatResponse},
	}

	for _, m := range cases {
		data := Encode(m)
		if len(data) != FrameSize {
			t.Errorf("%s: encoded %d bytes, want %d", m.Kind, len(data), FrameSize)
		}
		got, err := Decode(data)
		if err != nil {
			t.Errorf("%s: Decode: %v", m.Kind, err)
			continue
		}
		if got != m {
			t.Errorf("%s: round trip mismatch:\ngot:  %+v\nwant: %+v", m.Kind, got, m)
		}
	}
}

func TestFrameLayout(t *testing.T) {
	var report hid.Report
	report.SetModifier(hid.ModLeftCtrl)
	report.AddKey(hid.KeyQ)

	m := Message{
		Origin: Secondary,
		Kind:   KindConsumer,
		Report: report,
		Usage:  0x1234,
		Layer:  2,
		Mask:   hid.ModLeftAlt,
		Conn:   true,
	}
	data := Encode(m)

	if data[0] != byte(Secondary) {
		t.Errorf("origin byte = 0x%02x, want 0x%02x", data[0], byte(Secondary))
	}
	if data[1] != byte(KindConsumer) {
		t.Errorf("kind byte = 0x%02x, want 0x%02x", data[1], byte(KindConsumer))
	}
	if data[2] != hid.ModLeftCtrl || data[4] != hid.KeyQ {
		t.Errorf("report bytes misplaced: % x", data[2:10])
	}
	if data[10] != 0x34 || data[11] != 0x12 {
		t.Errorf("usage not little-endian: % x", data[10:12])
	}
	if data[12] != 2 || data[13] != hid.ModLeftAlt || data[14] != 1 {
		t.Errorf("tail payload bytes wrong: % x", data[12:15])
	}
	if data[FrameSize-1] != 0x55 {
		t.Errorf("terminal byte = 0x%02x, want 0x55", data[FrameSize-1])
	}
}

func TestDecodeRejectsMalformedFrames(t *testing.T) {
	data := Encode(Message{Origin: Primary, Kind: KindLayerSync, Layer: 1})

	if _, err := Decode(data[:FrameSize-1]); !errors.Is(err, ErrFrameTooShort) {
		t.Errorf("short frame: got %v, want ErrFrameTooShort", err)
	}
	if _, err := Decode(nil); !errors.Is(err, ErrFrameTooShort) {
		t.Errorf("nil frame: got %v, want ErrFrameTooShort", err)
	}

	bad := make([]byte, FrameSize)
	copy(bad, data)
	bad[FrameSize-1] = 0xAA
	if _, err := Decode(bad); !errors.Is(err, ErrBadTerminal) {
		t.Errorf("bad terminal: got %v, want ErrBadTerminal", err)
	}

	copy(bad, data)
	bad[12] ^= 0xFF
	if _, err := Decode(bad); !errors.Is(err, ErrBadChecksum) {
		t.Errorf("corrupt body: got %v, want ErrBadChecksum", err)
	}
}
