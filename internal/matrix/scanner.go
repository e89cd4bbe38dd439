package matrix

import (
	"fmt"
	"time"

	"github.com/sweeney/splitkbd/internal/gpio"
)

// Options configures a Scanner.
type Options struct {
	Rows     int
	Cols     int
	Debounce time.Duration

	// Settle is how long to wait after driving a row before sampling its
	// columns.
	Settle time.Duration

	// MirrorColumns flips the column index of emitted events, for a half
	// whose matrix is wired mirror-imaged.
	MirrorColumns bool
}

// Scanner sweeps the matrix through a gpio.Port and emits debounced events.
// It issues no synchronization of its own: a single scheduling loop calls
// Scan, and the port operations are sequential and blocking.
type Scanner struct {
	port    gpio.Port
	deb     *Debouncer
	rows    int
	cols    int
	settle  time.Duration
	mirror  bool
	readBuf []bool
}

// NewScanner creates a Scanner over the given port.
func NewScanner(port gpio.Port, opts Options) *Scanner {
	return &Scanner{
		port:    port,
		deb:     NewDebouncer(opts.Rows, opts.Cols, opts.Debounce),
		rows:    opts.Rows,
		cols:    opts.Cols,
		settle:  opts.Settle,
		mirror:  opts.MirrorColumns,
		readBuf: make([]bool, opts.Cols),
	}
}

// Scan performs one full sweep and returns every settled transition.
// Event coordinates are already mirrored when the scanner is configured
// for a mirrored half. Rows are released even when the sweep fails.
func (s *Scanner) Scan(now time.Time) ([]Event, error) {
	events, err := s.sweep(now)
	if rerr := s.port.ReleaseRows(); rerr != nil && err == nil {
		err = fmt.Errorf("release rows: %w", rerr)
	}
	return events, err
}

func (s *Scanner) sweep(now time.Time) ([]Event, error) {
	var events []Event
	for row := 0; row < s.rows; row++ {
		if err := s.port.DriveRow(row); err != nil {
			return events, fmt.Errorf("drive row %d: %w", row, err)
		}
		if s.settle > 0 {
			time.Sleep(s.settle)
		}
		if err := s.port.ReadColumns(s.readBuf); err != nil {
			return events, fmt.Errorf("read row %d: %w", row, err)
		}
		for col := 0; col < s.cols; col++ {
			ev := s.deb.Sample(row, col, s.readBuf[col], now)
			if ev == nil {
				continue
			}
			if s.mirror {
				ev.Col = s.cols - 1 - ev.Col
			}
			events = append(events, *ev)
		}
	}
	return events, nil
}

// Counts returns the settled transition counters.
func (s *Scanner) Counts() Counts {
	return s.deb.Counts()
}
