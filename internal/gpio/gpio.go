// Package gpio drives the key-matrix pins with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Port drives the matrix row lines and samples the column lines.
type Port interface {
	// DriveRow pulls one row line low and leaves every other row high.
	DriveRow(row int) error

	// ReleaseRows returns all row lines high, ending the sweep.
	ReleaseRows() error

	// ReadColumns samples every column line into the given slice.
	// true means the column is pulled low by a closed switch on the
	// driven row.
	ReadColumns(into []bool) error

	// Close releases GPIO resources.
	Close() error
}

// Default pin assignment (BCM numbering).
var (
	DefaultRowPins = []int{20, 19, 18, 15, 14}
	DefaultColPins = []int{0, 1, 2, 3, 4, 5}
)
