package gpio

import "errors"

// FakePort is a test double that plays back scripted matrix frames.
type FakePort struct {
	// Frames contains scripted key states, one [row][col] grid per sweep.
	// Each call to ReleaseRows() ends a sweep and advances to the next frame.
	Frames []Frame

	// index tracks current position in Frames
	index int

	// driven is the row selected by the last DriveRow, -1 when none
	driven int

	// Closed tracks if Close was called
	Closed bool

	// DriveError, if set, will be returned by DriveRow()
	DriveError error

	// ReadError, if set, will be returned by ReadColumns()
	ReadError error
}

// Frame is one full matrix of switch states, true meaning closed.
type Frame [][]bool

// NewFakePort creates a FakePort that plays back the given frames.
func NewFakePort(frames []Frame) *FakePort {
	return &FakePort{Frames: frames, driven: -1}
}

// DriveRow records the driven row for subsequent ReadColumns calls.
func (f *FakePort) DriveRow(row int) error {
	if f.DriveError != nil {
		return f.DriveError
	}
	f.driven = row
	return nil
}

// ReleaseRows ends the sweep and advances playback.
// If frames are exhausted, the last frame repeats.
func (f *FakePort) ReleaseRows() error {
	f.driven = -1
	if f.index < len(f.Frames)-1 {
		f.index++
	}
	return nil
}

// ReadColumns copies the driven row of the current frame.
// With no row driven every column reads open.
func (f *FakePort) ReadColumns(into []bool) error {
	if f.ReadError != nil {
		return f.ReadError
	}
	if len(f.Frames) == 0 {
		return errors.New("no frames configured")
	}

	for i := range into {
		into[i] = false
	}
	frame := f.Frames[f.index]
	if f.driven < 0 || f.driven >= len(frame) {
		return nil
	}
	row := frame[f.driven]
	for i := 0; i < len(into) && i < len(row); i++ {
		into[i] = row[i]
	}
	return nil
}

// Close marks the port as closed.
func (f *FakePort) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds playback to the first frame.
func (f *FakePort) Reset() {
	f.index = 0
	f.driven = -1
	f.Closed = false
}
