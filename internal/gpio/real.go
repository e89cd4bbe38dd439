//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealPort drives the matrix on actual hardware using the Linux GPIO
// character device.
type RealPort struct {
	chip *gpiocdev.Chip
	rows []*gpiocdev.Line
	cols []*gpiocdev.Line
}

// NewRealPort requests the row lines as outputs driven high and the column
// lines as pull-up inputs. A closed switch connects its column to whichever
// row is currently driven low.
func NewRealPort(rowPins, colPins []int) (*RealPort, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	p := &RealPort{chip: chip}
	for _, pin := range rowPins {
		line, err := chip.RequestLine(pin, gpiocdev.AsOutput(1))
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("request row pin %d: %w", pin, err)
		}
		p.rows = append(p.rows, line)
	}
	for _, pin := range colPins {
		line, err := chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullUp)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("request column pin %d: %w", pin, err)
		}
		p.cols = append(p.cols, line)
	}
	return p, nil
}

// DriveRow pulls the selected row low and every other row high.
func (p *RealPort) DriveRow(row int) error {
	if row < 0 || row >= len(p.rows) {
		return fmt.Errorf("drive row %d: no such row", row)
	}
	for i, line := range p.rows {
		v := 1
		if i == row {
			v = 0
		}
		if err := line.SetValue(v); err != nil {
			return fmt.Errorf("set row pin %d: %w", i, err)
		}
	}
	return nil
}

// ReleaseRows returns every row line high.
func (p *RealPort) ReleaseRows() error {
	for i, line := range p.rows {
		if err := line.SetValue(1); err != nil {
			return fmt.Errorf("set row pin %d: %w", i, err)
		}
	}
	return nil
}

// ReadColumns samples every column line.
// Inverts raw GPIO: the pull-up keeps open columns high, so a low line
// means the switch on the driven row is closed.
func (p *RealPort) ReadColumns(into []bool) error {
	for i, line := range p.cols {
		if i >= len(into) {
			break
		}
		raw, err := line.Value()
		if err != nil {
			return fmt.Errorf("read column pin %d: %w", i, err)
		}
		into[i] = raw == 0
	}
	return nil
}

// Close releases GPIO resources.
// Reconfigures the row lines to inputs before closing so nothing keeps
// driving the matrix after shutdown.
func (p *RealPort) Close() error {
	var errs []error

	for i, line := range p.rows {
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullUp); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure row pin %d: %w", i, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close row pin %d: %w", i, err))
		}
	}
	for i, line := range p.cols {
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close column pin %d: %w", i, err))
		}
	}
	if p.chip != nil {
		if err := p.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
