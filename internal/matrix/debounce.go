package matrix

import "time"

// Debouncer applies the two-stage raw/settled split to a grid of cells.
// A glitch shorter than the window never produces an event; a settled
// transition is reported exactly once.
type Debouncer struct {
	window time.Duration
	cells  [][]Cell
	counts Counts
}

// NewDebouncer creates a Debouncer for a rows x cols grid with the given
// debounce window.
func NewDebouncer(rows, cols int, window time.Duration) *Debouncer {
	cells := make([][]Cell, rows)
	for i := range cells {
		cells[i] = make([]Cell, cols)
	}
	return &Debouncer{window: window, cells: cells}
}

// Sample feeds one instantaneous reading for a cell and returns the settled
// transition, or nil while the reading is bouncing or unchanged.
func (d *Debouncer) Sample(row, col int, reading bool, now time.Time) *Event {
	cell := &d.cells[row][col]

	if reading != cell.Raw {
		// Raw flipped: restart the debounce window. The settled state
		// does not change yet.
		cell.Raw = reading
		cell.RawChangedAt = now
	}

	if now.Sub(cell.RawChangedAt) < d.window {
		return nil
	}
	if cell.Current == cell.Raw {
		return nil
	}

	cell.Previous = cell.Current
	cell.Current = cell.Raw
	if cell.Current {
		d.counts.Presses++
	} else {
		d.counts.Releases++
	}
	return &Event{Row: row, Col: col, Pressed: cell.Current, Timestamp: now}
}

// State returns a copy of the cell at (row, col).
func (d *Debouncer) State(row, col int) Cell {
	if row < 0 || row >= len(d.cells) || col < 0 || col >= len(d.cells[row]) {
		return Cell{}
	}
	return d.cells[row][col]
}

// Counts returns the settled transition counters.
func (d *Debouncer) Counts() Counts {
	return d.counts
}
