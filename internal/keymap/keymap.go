// Package keymap defines the key-definition model and the per-layer
// lookup tables that bind matrix positions to key behavior.
package keymap

import (
	"fmt"
	"time"
)

// Key is the definition bound to one matrix position on one layer.
// It is a closed set: only the variant types in this package implement it.
// Definitions are immutable values; the resolver never mutates them.
type Key interface {
	fmt.Stringer
	key()
}

// Normal emits a single keycode while held. Code 0 is the conventional
// "no key" binding: pressing it changes nothing visible.
type Normal struct {
	Code uint8
}

// Modifier holds a modifier bitmask while held.
type Modifier struct {
	Mask uint8
}

// Shifted emits a keycode with left shift held, for symbols that live on
// shifted positions of the base keys.
type Shifted struct {
	Code uint8
}

// LayerTap emits Tap when released quickly and activates Layer as a
// momentary layer when held past its timeout. Timeout 0 means the
// configured default applies.
type LayerTap struct {
	Layer   int
	Tap     uint8
	Timeout time.Duration
}

// ModTap emits Tap when released quickly and holds the Mask modifier when
// held past its timeout. Timeout 0 means the configured default applies.
type ModTap struct {
	Mask    uint8
	Tap     uint8
	Timeout time.Duration
}

// LayerMomentary activates Layer while held.
type LayerMomentary struct {
	Layer int
}

// LayerToggle flips the base layer between the default layer and Layer.
type LayerToggle struct {
	Layer int
}

// Consumer pulses a consumer-control usage (media keys and the like).
type Consumer struct {
	Usage uint16
}

// Transparent defers to the first non-transparent definition at the same
// position on a lower layer.
type Transparent struct{}

// Macro names a stored macro by ID. The resolver does not implement
// macro playback; pressing one is a logged no-op.
type Macro struct {
	ID uint8
}

func (Normal) key()         {}
func (Modifier) key()       {}
func (Shifted) key()        {}
func (LayerTap) key()       {}
func (ModTap) key()         {}
func (LayerMomentary) key() {}
func (LayerToggle) key()    {}
func (Consumer) key()       {}
func (Transparent) key()    {}
func (Macro) key()          {}

func (k Normal) String() string         { return fmt.Sprintf("normal(0x%02x)", k.Code) }
func (k Modifier) String() string       { return fmt.Sprintf("modifier(0x%02x)", k.Mask) }
func (k Shifted) String() string        { return fmt.Sprintf("shifted(0x%02x)", k.Code) }
func (k LayerTap) String() string       { return fmt.Sprintf("layer-tap(L%d,0x%02x)", k.Layer, k.Tap) }
func (k ModTap) String() string         { return fmt.Sprintf("mod-tap(0x%02x,0x%02x)", k.Mask, k.Tap) }
func (k LayerMomentary) String() string { return fmt.Sprintf("momentary(L%d)", k.Layer) }
func (k LayerToggle) String() string    { return fmt.Sprintf("toggle(L%d)", k.Layer) }
func (k Consumer) String() string       { return fmt.Sprintf("consumer(0x%04x)", k.Usage) }
func (Transparent) String() string      { return "transparent" }
func (k Macro) String() string          { return fmt.Sprintf("macro(%d)", k.ID) }

// Map is a rectangular stack of per-layer key tables.
type Map struct {
	layers [][][]Key
	rows   int
	cols   int
}

// New validates that every layer is rows x cols and returns the Map.
func New(layers [][][]Key) (*Map, error) {
	if len(layers) == 0 {
		return nil, fmt.Errorf("keymap: no layers")
	}
	rows := len(layers[0])
	if rows == 0 {
		return nil, fmt.Errorf("keymap: layer 0 has no rows")
	}
	cols := len(layers[0][0])
	if cols == 0 {
		return nil, fmt.Errorf("keymap: layer 0 has no columns")
	}
	for l, layer := range layers {
		if len(layer) != rows {
			return nil, fmt.Errorf("keymap: layer %d has %d rows, want %d", l, len(layer), rows)
		}
		for r, row := range layer {
			if len(row) != cols {
				return nil, fmt.Errorf("keymap: layer %d row %d has %d columns, want %d", l, r, len(row), cols)
			}
			for c, k := range row {
				if k == nil {
					return nil, fmt.Errorf("keymap: layer %d position [%d:%d] is nil", l, r, c)
				}
			}
		}
	}
	return &Map{layers: layers, rows: rows, cols: cols}, nil
}

// Lookup returns the key bound at (layer, row, col). Out-of-range
// coordinates return the no-key binding.
func (m *Map) Lookup(layer, row, col int) Key {
	if layer < 0 || layer >= len(m.layers) || row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		return Normal{}
	}
	return m.layers[layer][row][col]
}

// Layers returns the number of layers.
func (m *Map) Layers() int { return len(m.layers) }

// Rows returns the row count of each layer.
func (m *Map) Rows() int { return m.rows }

// Cols returns the column count of each layer.
func (m *Map) Cols() int { return m.cols }
