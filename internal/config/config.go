// Package config holds the daemon's TOML configuration: matrix wiring,
// link addressing, cadences and thresholds. Load overlays a file on the
// defaults; the zero config never appears, callers always start from
// Default.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config is the full configuration tree for one half.
type Config struct {
	// Role is "primary" (host-facing) or "secondary".
	Role string `toml:"role"`
	// Layout picks the stock keymap side, "left" or "right".
	Layout         string   `toml:"layout"`
	TapHoldTimeout Duration `toml:"tap_hold_timeout"`

	Matrix    MatrixConfig    `toml:"matrix"`
	Link      LinkConfig      `toml:"link"`
	Heartbeat HeartbeatConfig `toml:"heartbeat"`
	Power     PowerConfig     `toml:"power"`
	Battery   BatteryConfig   `toml:"battery"`
	Indicator IndicatorConfig `toml:"indicator"`
	HID       HIDConfig       `toml:"hid"`
	HTTP      HTTPConfig      `toml:"http"`
}

// MatrixConfig describes the switch grid and its GPIO wiring.
type MatrixConfig struct {
	Rows          int      `toml:"rows"`
	Cols          int      `toml:"cols"`
	RowPins       []int    `toml:"row_pins"`
	ColPins       []int    `toml:"col_pins"`
	MirrorColumns bool     `toml:"mirror_columns"`
	Debounce      Duration `toml:"debounce"`
	Settle        Duration `toml:"settle"`
}

// LinkConfig addresses the MQTT link between the halves.
type LinkConfig struct {
	Broker      string `toml:"broker"`
	TopicPrefix string `toml:"topic_prefix"`
}

// HeartbeatConfig tunes the secondary's liveness monitor.
type HeartbeatConfig struct {
	Interval Duration `toml:"interval"`
	Stable   Duration `toml:"stable"`
	Timeout  Duration `toml:"timeout"`
}

// PowerConfig holds the idle thresholds and the per-mode cadence
// tables. The interval lists carry exactly four entries, indexed
// Active, Normal, Efficient, Deep.
type PowerConfig struct {
	ActiveIdle         Duration   `toml:"active_idle"`
	NormalIdle         Duration   `toml:"normal_idle"`
	EfficientIdle      Duration   `toml:"efficient_idle"`
	ScanIntervals      []Duration `toml:"scan_intervals"`
	HeartbeatIntervals []Duration `toml:"heartbeat_intervals"`
}

// BatteryConfig points at the power-supply sysfs directories. An empty
// Dir disables battery monitoring.
type BatteryConfig struct {
	Dir          string   `toml:"dir"`
	ChargerDir   string   `toml:"charger_dir"`
	ReadInterval Duration `toml:"read_interval"`
	NominalMV    int      `toml:"nominal_mv"`
	CriticalMV   int      `toml:"critical_mv"`
	ChargingMV   int      `toml:"charging_mv"`
}

// IndicatorConfig wires the status LEDs. Each pin list is empty (LED
// not fitted) or exactly three lines, red, green, blue.
type IndicatorConfig struct {
	ConnPins []int    `toml:"conn_pins"`
	BattPins []int    `toml:"batt_pins"`
	Blink    Duration `toml:"blink"`
}

// HIDConfig locates the USB gadget nodes the primary writes reports
// to. An empty KeyboardGadget switches the output to logging only.
type HIDConfig struct {
	KeyboardGadget string `toml:"keyboard_gadget"`
	ConsumerGadget string `toml:"consumer_gadget"`
}

// HTTPConfig addresses the status server.
type HTTPConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the stock configuration: a 5x6 half on the standard
// pin assignment, local broker, and the tuned cadence tables.
func Default() *Config {
	return &Config{
		Role:           "primary",
		Layout:         "left",
		TapHoldTimeout: Duration{150 * time.Millisecond},
		Matrix: MatrixConfig{
			Rows:     5,
			Cols:     6,
			RowPins:  []int{20, 19, 18, 15, 14},
			ColPins:  []int{0, 1, 2, 3, 4, 5},
			Debounce: Duration{5 * time.Millisecond},
			Settle:   Duration{5 * time.Microsecond},
		},
		Link: LinkConfig{
			Broker:      "tcp://localhost:1883",
			TopicPrefix: "splitkbd",
		},
		Heartbeat: HeartbeatConfig{
			Interval: Duration{30 * time.Second},
			Stable:   Duration{time.Second},
			Timeout:  Duration{10 * time.Second},
		},
		Power: PowerConfig{
			ActiveIdle:    Duration{5 * time.Second},
			NormalIdle:    Duration{20 * time.Second},
			EfficientIdle: Duration{90 * time.Second},
			ScanIntervals: []Duration{
				{time.Millisecond},
				{5 * time.Millisecond},
				{25 * time.Millisecond},
				{100 * time.Millisecond},
			},
			HeartbeatIntervals: []Duration{
				{5 * time.Second},
				{5 * time.Second},
				{10 * time.Second},
				{15 * time.Second},
			},
		},
		Battery: BatteryConfig{
			ReadInterval: Duration{10 * time.Second},
			NominalMV:    3300,
			CriticalMV:   3000,
			ChargingMV:   4200,
		},
		Indicator: IndicatorConfig{
			Blink: Duration{500 * time.Millisecond},
		},
		HID: HIDConfig{
			KeyboardGadget: "/dev/hidg0",
			ConsumerGadget: "/dev/hidg1",
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
	}
}

// Validate checks the tree after file and flag overrides, so messages
// name the effective values.
func (c *Config) Validate() error {
	if c.Role != "primary" && c.Role != "secondary" {
		return fmt.Errorf("role must be primary or secondary, got %q", c.Role)
	}
	if c.Layout != "left" && c.Layout != "right" {
		return fmt.Errorf("layout must be left or right, got %q", c.Layout)
	}
	if c.Matrix.Rows <= 0 || c.Matrix.Cols <= 0 {
		return fmt.Errorf("matrix size %dx%d invalid", c.Matrix.Rows, c.Matrix.Cols)
	}
	if len(c.Matrix.RowPins) != c.Matrix.Rows {
		return fmt.Errorf("%d row pins for %d rows", len(c.Matrix.RowPins), c.Matrix.Rows)
	}
	if len(c.Matrix.ColPins) != c.Matrix.Cols {
		return fmt.Errorf("%d column pins for %d columns", len(c.Matrix.ColPins), c.Matrix.Cols)
	}
	if c.Link.Broker == "" {
		return errors.New("link broker must be set")
	}
	if got := len(c.Power.ScanIntervals); got != 4 {
		return fmt.Errorf("power scan_intervals needs 4 entries, got %d", got)
	}
	if got := len(c.Power.HeartbeatIntervals); got != 4 {
		return fmt.Errorf("power heartbeat_intervals needs 4 entries, got %d", got)
	}
	if n := len(c.Indicator.ConnPins); n != 0 && n != 3 {
		return fmt.Errorf("indicator conn_pins needs 3 lines (r,g,b), got %d", n)
	}
	if n := len(c.Indicator.BattPins); n != 0 && n != 3 {
		return fmt.Errorf("indicator batt_pins needs 3 lines (r,g,b), got %d", n)
	}
	return nil
}
