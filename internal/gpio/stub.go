//go:build !linux

package gpio

import "errors"

// RealPort is not available on non-Linux platforms.
type RealPort struct{}

// NewRealPort returns an error on non-Linux platforms.
func NewRealPort(rowPins, colPins []int) (*RealPort, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// DriveRow is not implemented on non-Linux platforms.
func (p *RealPort) DriveRow(row int) error {
	return errors.New("gpio: not supported")
}

// ReleaseRows is not implemented on non-Linux platforms.
func (p *RealPort) ReleaseRows() error {
	return errors.New("gpio: not supported")
}

// ReadColumns is not implemented on non-Linux platforms.
func (p *RealPort) ReadColumns(into []bool) error {
	return errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (p *RealPort) Close() error {
	return nil
}
