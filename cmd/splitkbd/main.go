// Command splitkbd runs one half of a split keyboard: it scans the key
// matrix, resolves events through the keymap, and keeps the two halves
// in sync over an MQTT link. The primary half additionally delivers
// finished reports to the host through a USB HID gadget.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/sweeney/splitkbd/internal/battery"
	"github.com/sweeney/splitkbd/internal/config"
	"github.com/sweeney/splitkbd/internal/gpio"
	"github.com/sweeney/splitkbd/internal/half"
	"github.com/sweeney/splitkbd/internal/heartbeat"
	"github.com/sweeney/splitkbd/internal/hid"
	"github.com/sweeney/splitkbd/internal/indicator"
	"github.com/sweeney/splitkbd/internal/keymap"
	"github.com/sweeney/splitkbd/internal/link"
	"github.com/sweeney/splitkbd/internal/matrix"
	"github.com/sweeney/splitkbd/internal/power"
	"github.com/sweeney/splitkbd/internal/resolver"
	"github.com/sweeney/splitkbd/internal/status"
	"github.com/sweeney/splitkbd/internal/web"
)

func main() {
	configPath := flag.String("config", "", "Config file path (default "+config.DefaultPath+" when present)")
	role := flag.String("role", "", "Override half role: primary or secondary")
	layout := flag.String("layout", "", "Override keymap side: left or right")
	broker := flag.String("broker", "", "Override MQTT broker address")
	httpAddr := flag.String("http", "", `Override HTTP status address ("off" to disable)`)
	printConfig := flag.Bool("print-config", false, "Print effective config and exit")

	flag.Parse()

	cfg, err := loadConfig(*configPath, *role, *layout, *broker, *httpAddr)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	if err := run(cfg, *printConfig); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// loadConfig reads the config file and applies the flag overrides
// before validating, so errors name the effective values.
func loadConfig(path, role, layout, broker, httpAddr string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if role != "" {
		cfg.Role = role
	}
	if layout != "" {
		cfg.Layout = layout
	}
	if broker != "" {
		cfg.Link.Broker = broker
	}
	switch httpAddr {
	case "":
	case "off":
		cfg.HTTP.Addr = ""
	default:
		cfg.HTTP.Addr = httpAddr
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func run(cfg *config.Config, printConfig bool) error {
	// Print config mode
	if printConfig {
		return toml.NewEncoder(os.Stdout).Encode(cfg)
	}

	role := roleFor(cfg.Role)

	// Initialize the matrix GPIO
	port, err := gpio.NewRealPort(cfg.Matrix.RowPins, cfg.Matrix.ColPins)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer port.Close()
	scanner := matrix.NewScanner(port, matrixOptions(cfg))

	// Connect the inter-half link
	transport, err := link.NewMQTTTransport(cfg.Link.Broker, cfg.Link.TopicPrefix, role)
	if err != nil {
		return fmt.Errorf("connect link: %w", err)
	}
	ep := link.NewEndpoint(role, transport)

	// Host output (primary only)
	var out resolver.Output
	if role == link.Primary {
		if cfg.HID.KeyboardGadget == "" {
			log.Printf("no keyboard gadget configured, logging reports")
			out = hid.LogOutput{}
		} else {
			gadget, err := hid.NewGadgetOutput(cfg.HID.KeyboardGadget, cfg.HID.ConsumerGadget)
			if err != nil {
				ep.Close()
				return fmt.Errorf("open hid gadget: %w", err)
			}
			defer gadget.Close()
			out = gadget
		}
	}

	res := resolver.New(resolver.Options{
		Role:           role,
		Keymap:         keymap.ForSide(cfg.Layout),
		Output:         out,
		Peer:           ep,
		TapHoldTimeout: cfg.TapHoldTimeout.Duration,
	})

	var mon *heartbeat.Monitor
	if role == link.Secondary {
		mon = heartbeat.NewMonitor(heartbeat.Options{
			Interval: cfg.Heartbeat.Interval.Duration,
			Stable:   cfg.Heartbeat.Stable.Duration,
			Timeout:  cfg.Heartbeat.Timeout.Duration,
		})
	}

	sched := power.NewScheduler(powerConfig(cfg), time.Now())

	var batt *battery.Monitor
	if cfg.Battery.Dir != "" {
		src := battery.NewSysfsSource(cfg.Battery.Dir, cfg.Battery.ChargerDir)
		batt = battery.NewMonitor(src, battery.Thresholds{
			NominalMV:  cfg.Battery.NominalMV,
			CriticalMV: cfg.Battery.CriticalMV,
			ChargingMV: cfg.Battery.ChargingMV,
		})
	}

	// Status LEDs (nil pixels mean not fitted; changes are still logged)
	connPix, err := openPixel(cfg.Indicator.ConnPins)
	if err != nil {
		ep.Close()
		return fmt.Errorf("open connectivity led: %w", err)
	}
	battPix, err := openPixel(cfg.Indicator.BattPins)
	if err != nil {
		if connPix != nil {
			connPix.Close()
		}
		ep.Close()
		return fmt.Errorf("open battery led: %w", err)
	}
	leds := indicator.New(connPix, battPix, cfg.Indicator.Blink.Duration)
	leds.Start()
	defer leds.Close()

	tracker := status.NewTracker(time.Now(), status.Config{
		Role:      cfg.Role,
		Layout:    cfg.Layout,
		Broker:    cfg.Link.Broker,
		HTTPPort:  cfg.HTTP.Addr,
		TapHoldMs: cfg.TapHoldTimeout.Milliseconds(),
	})

	// Start HTTP status server
	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP.Addr)
	}

	h := half.New(half.Options{
		Role:            role,
		Scanner:         scanner,
		Resolver:        res,
		Endpoint:        ep,
		Monitor:         mon,
		Scheduler:       sched,
		Battery:         batt,
		Indicator:       leds,
		Tracker:         tracker,
		BatteryInterval: cfg.Battery.ReadInterval.Duration,
	})
	h.Start()
	defer h.Close()

	if role == link.Primary {
		// No hotplug notification from the gadget layer; treat the host
		// as attached once the daemon is up.
		h.SetHostConnected(true)
	}

	log.Printf("started: role=%s layout=%s matrix=%dx%d broker=%s",
		cfg.Role, cfg.Layout, cfg.Matrix.Rows, cfg.Matrix.Cols, cfg.Link.Broker)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return waitForSignal(sigCh)
}

func waitForSignal(sig <-chan os.Signal) error {
	s := <-sig
	log.Printf("received %v, shutting down", s)
	return nil
}

func roleFor(s string) link.Role {
	if s == "secondary" {
		return link.Secondary
	}
	return link.Primary
}

func matrixOptions(cfg *config.Config) matrix.Options {
	return matrix.Options{
		Rows:          cfg.Matrix.Rows,
		Cols:          cfg.Matrix.Cols,
		Debounce:      cfg.Matrix.Debounce.Duration,
		Settle:        cfg.Matrix.Settle.Duration,
		MirrorColumns: cfg.Matrix.MirrorColumns,
	}
}

func powerConfig(cfg *config.Config) power.Config {
	pc := power.Config{
		ActiveIdle:    cfg.Power.ActiveIdle.Duration,
		NormalIdle:    cfg.Power.NormalIdle.Duration,
		EfficientIdle: cfg.Power.EfficientIdle.Duration,
	}
	for i, d := range cfg.Power.ScanIntervals {
		pc.ScanIntervals[i] = d.Duration
	}
	for i, d := range cfg.Power.HeartbeatIntervals {
		pc.HeartbeatIntervals[i] = d.Duration
	}
	return pc
}

// openPixel opens one RGB LED, or returns a nil Pixel when the pin
// list is empty (LED not fitted).
func openPixel(pins []int) (indicator.Pixel, error) {
	if len(pins) != 3 {
		return nil, nil
	}
	p, err := indicator.NewRealPixel(pins[0], pins[1], pins[2])
	if err != nil {
		return nil, err
	}
	return p, nil
}
