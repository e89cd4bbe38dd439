package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Role           string       `json:"role"`
	Power          string       `json:"power"`
	Conn           string       `json:"conn"`
	Scanning       bool         `json:"scanning"`
	BaseLayer      int          `json:"base_layer"`
	EffectiveLayer int          `json:"effective_layer"`
	HeldKeys       int          `json:"held_keys"`
	UptimeSeconds  int64        `json:"uptime_seconds"`
	StartTime      string       `json:"start_time"`
	Timestamp      string       `json:"timestamp"`
	Link           LinkJSON     `json:"link"`
	Counts         CountsJSON   `json:"event_counts"`
	Battery        *BatteryJSON `json:"battery,omitempty"`
	Config         ConfigJSON   `json:"config"`
}

// LinkJSON reports inter-half link state.
type LinkJSON struct {
	Connected    bool   `json:"connected"`
	Broker       string `json:"broker"`
	Sent         int    `json:"sent"`
	Received     int    `json:"received"`
	Dropped      int    `json:"dropped"`
	SendErrors   int    `json:"send_errors"`
	DecodeErrors int    `json:"decode_errors"`
}

// CountsJSON is the JSON representation of input event counts.
type CountsJSON struct {
	Presses       int   `json:"presses"`
	Releases      int   `json:"releases"`
	SkippedSweeps int64 `json:"skipped_sweeps"`
}

// BatteryJSON is the JSON representation of the battery reading.
type BatteryJSON struct {
	Level      string `json:"level"`
	VoltageMV  int    `json:"voltage_mv"`
	USBPowered bool   `json:"usb_powered"`
	Reads      int    `json:"reads"`
	Errors     int    `json:"errors"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Role      string `json:"role"`
	Layout    string `json:"layout"`
	Broker    string `json:"broker"`
	HTTPPort  string `json:"http_port"`
	TapHoldMs int64  `json:"tap_hold_ms"`
}

func buildInner(snap Snapshot) StatusInner {
	role := snap.Config.Role
	if role == "" {
		role = "unknown"
	}

	return StatusInner{
		Role:           role,
		Power:          snap.Power.String(),
		Conn:           snap.Conn.String(),
		Scanning:       snap.Scanning,
		BaseLayer:      snap.Keys.BaseLayer,
		EffectiveLayer: snap.Keys.EffectiveLayer,
		HeldKeys:       snap.Keys.HeldKeys,
		UptimeSeconds:  int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:      snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:      snap.Now.UTC().Format(time.RFC3339),
		Link: LinkJSON{
			Connected:    snap.LinkConnected,
			Broker:       snap.Config.Broker,
			Sent:         snap.Link.Sent,
			Received:     snap.Link.Received,
			Dropped:      snap.Link.Dropped,
			SendErrors:   snap.Link.SendErrors,
			DecodeErrors: snap.Link.DecodeErrors,
		},
		Counts: CountsJSON{
			Presses:       snap.Scan.Presses,
			Releases:      snap.Scan.Releases,
			SkippedSweeps: snap.Keys.SkippedSweeps,
		},
		Config: ConfigJSON{
			Role:      snap.Config.Role,
			Layout:    snap.Config.Layout,
			Broker:    snap.Config.Broker,
			HTTPPort:  snap.Config.HTTPPort,
			TapHoldMs: snap.Config.TapHoldMs,
		},
	}
}

func buildBattery(snap Snapshot, inner *StatusInner) {
	if snap.Battery != nil {
		inner.Battery = &BatteryJSON{
			Level:      snap.Battery.Level.String(),
			VoltageMV:  snap.Battery.VoltageMV,
			USBPowered: snap.Battery.USBPowered,
			Reads:      snap.Battery.Reads,
			Errors:     snap.Battery.Errors,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint.
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildBattery(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}
