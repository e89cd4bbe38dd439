// Package battery samples battery voltage and charger presence and
// classifies the result for the indicator. Sampling is slow and cheap;
// the half reads once every DefaultReadInterval and only pushes level
// changes outward.
package battery

import (
	"sync"
	"time"
)

// DefaultReadInterval is how often the battery loop samples.
const DefaultReadInterval = 10 * time.Second

// Default classification bounds in millivolts.
const (
	DefaultNominalMV  = 3300
	DefaultCriticalMV = 3000
	DefaultChargingMV = 4200
)

// Level classifies battery state for the indicator.
type Level uint8

const (
	Good Level = iota
	Low
	Critical
	Charging
)

func (l Level) String() string {
	switch l {
	case Good:
		return "good"
	case Low:
		return "low"
	case Critical:
		return "critical"
	case Charging:
		return "charging"
	default:
		return "unknown"
	}
}

// Reading is one battery sample.
type Reading struct {
	VoltageMV  int
	USBPowered bool
}

// Source supplies battery samples.
type Source interface {
	Read() (Reading, error)
}

// Thresholds classifies readings into levels. Zero fields fall back to
// the package defaults.
type Thresholds struct {
	NominalMV  int
	CriticalMV int
	ChargingMV int
}

// Classify maps a reading to its level. USB power or a voltage above
// the charging bound both count as charging; below that the voltage
// bands decide.
func (t Thresholds) Classify(r Reading) Level {
	if r.USBPowered || r.VoltageMV > t.ChargingMV {
		return Charging
	}
	switch {
	case r.VoltageMV < t.CriticalMV:
		return Critical
	case r.VoltageMV < t.NominalMV:
		return Low
	default:
		return Good
	}
}

// Snapshot is a point-in-time copy of monitor state for status
// reporting.
type Snapshot struct {
	Level      Level
	VoltageMV  int
	USBPowered bool
	Reads      int
	Errors     int
}

// Monitor owns the latest battery state.
type Monitor struct {
	src Source
	thr Thresholds

	mu      sync.Mutex
	last    Reading
	level   Level
	sampled bool
	reads   int
	errors  int
}

func NewMonitor(src Source, thr Thresholds) *Monitor {
	if thr.NominalMV <= 0 {
		thr.NominalMV = DefaultNominalMV
	}
	if thr.CriticalMV <= 0 {
		thr.CriticalMV = DefaultCriticalMV
	}
	if thr.ChargingMV <= 0 {
		thr.ChargingMV = DefaultChargingMV
	}
	return &Monitor{src: src, thr: thr}
}

// Sample takes one reading and reports the classified level and
// whether it differs from the previous one. The first successful
// sample always counts as changed so the indicator gets an initial
// state. On error the previous level is kept.
func (m *Monitor) Sample() (Level, bool, error) {
	r, err := m.src.Read()

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.errors++
		return m.level, false, err
	}
	m.reads++
	m.last = r
	level := m.thr.Classify(r)
	changed := !m.sampled || level != m.level
	m.sampled = true
	m.level = level
	return level, changed, nil
}

// Level returns the most recent classification.
func (m *Monitor) Level() Level {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.level
}

// Snapshot copies the current monitor state.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Level:      m.level,
		VoltageMV:  m.last.VoltageMV,
		USBPowered: m.last.USBPowered,
		Reads:      m.reads,
		Errors:     m.errors,
	}
}
