//go:build !linux

package indicator

import "errors"

// RealPixel is not available on non-Linux platforms.
type RealPixel struct{}

// NewRealPixel returns an error on non-Linux platforms.
func NewRealPixel(rPin, gPin, bPin int) (*RealPixel, error) {
	return nil, errors.New("indicator: not supported on this platform (requires Linux)")
}

// Set is not implemented on non-Linux platforms.
func (p *RealPixel) Set(c Color) error {
	return errors.New("indicator: not supported")
}

// Close is not implemented on non-Linux platforms.
func (p *RealPixel) Close() error {
	return nil
}
