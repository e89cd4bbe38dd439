//go:build linux

package indicator

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealPixel drives a discrete RGB LED wired to three GPIO lines through
// the Linux GPIO character device.
type RealPixel struct {
	chip    *gpiocdev.Chip
	r, g, b *gpiocdev.Line
}

// NewRealPixel requests the three channel lines as outputs driven low.
func NewRealPixel(rPin, gPin, bPin int) (*RealPixel, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	p := &RealPixel{chip: chip}
	for _, ch := range []struct {
		pin  int
		line **gpiocdev.Line
	}{
		{rPin, &p.r},
		{gPin, &p.g},
		{bPin, &p.b},
	} {
		line, err := chip.RequestLine(ch.pin, gpiocdev.AsOutput(0))
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("request led pin %d: %w", ch.pin, err)
		}
		*ch.line = line
	}
	return p, nil
}

// Set lights the channels named by c and darkens the rest.
func (p *RealPixel) Set(c Color) error {
	for _, ch := range []struct {
		line *gpiocdev.Line
		on   bool
	}{
		{p.r, c.R},
		{p.g, c.G},
		{p.b, c.B},
	} {
		v := 0
		if ch.on {
			v = 1
		}
		if err := ch.line.SetValue(v); err != nil {
			return fmt.Errorf("set led line: %w", err)
		}
	}
	return nil
}

// Close releases the lines and the chip. Lines are reverted to inputs so
// the LED does not stay lit after shutdown.
func (p *RealPixel) Close() error {
	var errs []error
	for _, line := range []*gpiocdev.Line{p.r, p.g, p.b} {
		if line == nil {
			continue
		}
		if err := line.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, err)
		}
		if err := line.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.chip != nil {
		if err := p.chip.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
