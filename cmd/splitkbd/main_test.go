package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/sweeney/splitkbd/internal/config"
	"github.com/sweeney/splitkbd/internal/link"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfig(t, "role = \"secondary\"\nlayout = \"right\"\n")

	cfg, err := loadConfig(path, "", "", "", "")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Role != "secondary" {
		t.Errorf("role: got %q, want secondary", cfg.Role)
	}
	if cfg.Layout != "right" {
		t.Errorf("layout: got %q, want right", cfg.Layout)
	}
	if cfg.Link.Broker != "tcp://localhost:1883" {
		t.Errorf("broker: got %q, want default", cfg.Link.Broker)
	}
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	path := writeConfig(t, "role = \"primary\"\nlayout = \"left\"\n")

	cfg, err := loadConfig(path, "secondary", "right", "tcp://kb.local:1883", ":9090")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Role != "secondary" {
		t.Errorf("role override not applied: %q", cfg.Role)
	}
	if cfg.Layout != "right" {
		t.Errorf("layout override not applied: %q", cfg.Layout)
	}
	if cfg.Link.Broker != "tcp://kb.local:1883" {
		t.Errorf("broker override not applied: %q", cfg.Link.Broker)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Errorf("http override not applied: %q", cfg.HTTP.Addr)
	}
}

func TestLoadConfigHTTPOff(t *testing.T) {
	path := writeConfig(t, "")

	cfg, err := loadConfig(path, "", "", "", "off")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.HTTP.Addr != "" {
		t.Errorf("http addr: got %q, want disabled", cfg.HTTP.Addr)
	}
}

func TestLoadConfigRejectsBadOverride(t *testing.T) {
	path := writeConfig(t, "")

	_, err := loadConfig(path, "master", "", "", "")
	if err == nil {
		t.Fatal("expected validation error for role override")
	}
	if !strings.Contains(err.Error(), "role") {
		t.Errorf("error %q does not mention the role", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml"), "", "", "", "")
	if err == nil {
		t.Fatal("expected error for a missing config file")
	}
}

func TestRoleFor(t *testing.T) {
	if got := roleFor("secondary"); got != link.Secondary {
		t.Errorf("secondary: got %v", got)
	}
	if got := roleFor("primary"); got != link.Primary {
		t.Errorf("primary: got %v", got)
	}
}

func TestMatrixOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Matrix.MirrorColumns = true
	cfg.Matrix.Debounce = config.Duration{8 * time.Millisecond}

	opts := matrixOptions(cfg)
	if opts.Rows != 5 || opts.Cols != 6 {
		t.Errorf("size: got %dx%d, want 5x6", opts.Rows, opts.Cols)
	}
	if opts.Debounce != 8*time.Millisecond {
		t.Errorf("debounce: got %s, want 8ms", opts.Debounce)
	}
	if opts.Settle != 5*time.Microsecond {
		t.Errorf("settle: got %s, want 5us", opts.Settle)
	}
	if !opts.MirrorColumns {
		t.Error("mirror not carried")
	}
}

func TestPowerConfig(t *testing.T) {
	pc := powerConfig(config.Default())

	if pc.ActiveIdle != 5*time.Second || pc.NormalIdle != 20*time.Second || pc.EfficientIdle != 90*time.Second {
		t.Errorf("idle thresholds: got %s/%s/%s", pc.ActiveIdle, pc.NormalIdle, pc.EfficientIdle)
	}
	wantScan := [4]time.Duration{
		time.Millisecond,
		5 * time.Millisecond,
		25 * time.Millisecond,
		100 * time.Millisecond,
	}
	if pc.ScanIntervals != wantScan {
		t.Errorf("scan intervals: got %v, want %v", pc.ScanIntervals, wantScan)
	}
	wantHB := [4]time.Duration{
		5 * time.Second,
		5 * time.Second,
		10 * time.Second,
		15 * time.Second,
	}
	if pc.HeartbeatIntervals != wantHB {
		t.Errorf("heartbeat intervals: got %v, want %v", pc.HeartbeatIntervals, wantHB)
	}
}

func TestOpenPixelNotFitted(t *testing.T) {
	p, err := openPixel(nil)
	if err != nil {
		t.Fatalf("openPixel: %v", err)
	}
	if p != nil {
		t.Errorf("got %v, want nil pixel for an empty pin list", p)
	}
}

func TestWaitForSignal(t *testing.T) {
	for _, s := range []os.Signal{syscall.SIGINT, syscall.SIGTERM} {
		sig := make(chan os.Signal, 1)
		sig <- s
		if err := waitForSignal(sig); err != nil {
			t.Errorf("%v: got error %v", s, err)
		}
	}
}

// The -print-config output must reload cleanly, overrides included.
func TestPrintConfigRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Role = "secondary"
	cfg.Matrix.MirrorColumns = true

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		t.Fatalf("encode: %v", err)
	}

	back, err := config.LoadFromReader(&buf)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if back.Role != "secondary" {
		t.Errorf("role: got %q after round trip", back.Role)
	}
	if !back.Matrix.MirrorColumns {
		t.Error("mirror lost in round trip")
	}
	if back.TapHoldTimeout.Duration != 150*time.Millisecond {
		t.Errorf("tap-hold timeout: got %s after round trip", back.TapHoldTimeout)
	}
	if back.Power.ScanIntervals[0].Duration != time.Millisecond {
		t.Errorf("scan interval: got %s after round trip", back.Power.ScanIntervals[0])
	}
}
