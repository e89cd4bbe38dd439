package battery

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultBatteryDir is the usual kernel power-supply node for the
// battery pack.
const DefaultBatteryDir = "/sys/class/power_supply/BAT0"

// SysfsSource reads battery voltage and charger presence from the
// kernel power-supply class.
type SysfsSource struct {
	batteryDir string
	chargerDir string
}

// NewSysfsSource reads voltage_now from batteryDir and, when
// chargerDir is non-empty, charger presence from its online attribute.
func NewSysfsSource(batteryDir, chargerDir string) *SysfsSource {
	return &SysfsSource{batteryDir: batteryDir, chargerDir: chargerDir}
}

func (s *SysfsSource) Read() (Reading, error) {
	uv, err := readInt(filepath.Join(s.batteryDir, "voltage_now"))
	if err != nil {
		return Reading{}, fmt.Errorf("battery voltage: %w", err)
	}

	r := Reading{VoltageMV: uv / 1000}
	if s.chargerDir != "" {
		online, err := readInt(filepath.Join(s.chargerDir, "online"))
		if err != nil {
			return Reading{}, fmt.Errorf("charger state: %w", err)
		}
		r.USBPowered = online != 0
	}
	return r, nil
}

func readInt(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	return v, nil
}
