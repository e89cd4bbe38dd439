// Package indicator drives the status LEDs from connectivity and battery
// state changes. Each LED is an RGB part wired to three GPIO lines, so a
// channel is either fully on or fully off; blinking states are toggled by
// a single shared phase ticker.
package indicator

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sweeney/splitkbd/internal/battery"
	"github.com/sweeney/splitkbd/internal/heartbeat"
)

// DefaultBlinkInterval is how often blinking LEDs change phase.
const DefaultBlinkInterval = 500 * time.Millisecond

// Color selects which channels of an RGB LED are lit.
type Color struct {
	R, G, B bool
}

var (
	Off    = Color{}
	Red    = Color{R: true}
	Green  = Color{G: true}
	Blue   = Color{B: true}
	Yellow = Color{R: true, G: true}
)

// Pixel is one RGB LED.
type Pixel interface {
	Set(c Color) error
	Close() error
}

// Indicator maps connectivity and battery states onto the two status
// LEDs. Either Pixel may be nil when the LED is not fitted; state changes
// are still logged.
type Indicator struct {
	conn  Pixel
	batt  Pixel
	blink time.Duration

	mu        sync.Mutex
	connState heartbeat.State
	battLevel battery.Level
	connSet   bool
	battSet   bool
	connBlink bool
	battBlink bool
	connColor Color
	battColor Color
	phase     bool

	done chan struct{}
	once sync.Once
}

// New wraps the given LEDs. Call Start to begin blink scheduling and
// Close to release the hardware.
func New(conn, batt Pixel, blink time.Duration) *Indicator {
	if blink <= 0 {
		blink = DefaultBlinkInterval
	}
	return &Indicator{
		conn:  conn,
		batt:  batt,
		blink: blink,
		done:  make(chan struct{}),
	}
}

// Start launches the blink phase loop.
func (ind *Indicator) Start() {
	go ind.loop()
}

// SetConnectivity updates the connectivity LED. Repeating the current
// state is a no-op.
func (ind *Indicator) SetConnectivity(s heartbeat.State) {
	ind.mu.Lock()
	defer ind.mu.Unlock()
	if ind.connSet && s == ind.connState {
		return
	}
	ind.connSet = true
	ind.connState = s
	switch s {
	case heartbeat.Connected:
		ind.connBlink = false
		ind.apply(ind.conn, Green)
	case heartbeat.Waiting:
		ind.connBlink = true
		ind.connColor = Blue
	case heartbeat.Sleeping:
		ind.connBlink = false
		ind.apply(ind.conn, Off)
	}
	log.Printf("indicator: connectivity %s", s)
}

// SetBattery updates the battery LED. Repeating the current level is a
// no-op.
func (ind *Indicator) SetBattery(l battery.Level) {
	ind.mu.Lock()
	defer ind.mu.Unlock()
	if ind.battSet && l == ind.battLevel {
		return
	}
	ind.battSet = true
	ind.battLevel = l
	switch l {
	case battery.Good:
		ind.battBlink = false
		ind.apply(ind.batt, Green)
	case battery.Low:
		ind.battBlink = false
		ind.apply(ind.batt, Yellow)
	case battery.Critical:
		ind.battBlink = true
		ind.battColor = Red
	case battery.Charging:
		ind.battBlink = false
		ind.apply(ind.batt, Blue)
	}
	log.Printf("indicator: battery %s", l)
}

// Close stops the blink loop, darkens both LEDs and releases them.
func (ind *Indicator) Close() error {
	ind.once.Do(func() { close(ind.done) })

	ind.mu.Lock()
	defer ind.mu.Unlock()
	var errs []error
	ind.apply(ind.conn, Off)
	ind.apply(ind.batt, Off)
	if ind.conn != nil {
		if err := ind.conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if ind.batt != nil {
		if err := ind.batt.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func (ind *Indicator) loop() {
	ticker := time.NewTicker(ind.blink)
	defer ticker.Stop()
	for {
		select {
		case <-ind.done:
			return
		case <-ticker.C:
			ind.tick()
		}
	}
}

// tick advances the blink phase and reapplies any blinking LEDs.
func (ind *Indicator) tick() {
	ind.mu.Lock()
	defer ind.mu.Unlock()
	ind.phase = !ind.phase
	if ind.connBlink {
		c := Off
		if ind.phase {
			c = ind.connColor
		}
		ind.apply(ind.conn, c)
	}
	if ind.battBlink {
		c := Off
		if ind.phase {
			c = ind.battColor
		}
		ind.apply(ind.batt, c)
	}
}

func (ind *Indicator) apply(p Pixel, c Color) {
	if p == nil {
		return
	}
	if err := p.Set(c); err != nil {
		log.Printf("indicator: set led: %v", err)
	}
}
