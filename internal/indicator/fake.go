package indicator

import "sync"

// FakePixel records every color set on it, for tests.
type FakePixel struct {
	// SetError, when non-nil, is returned from every Set call.
	SetError error

	mu     sync.Mutex
	colors []Color
	closed bool
}

// Set records the color.
func (p *FakePixel) Set(c Color) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.SetError != nil {
		return p.SetError
	}
	p.colors = append(p.colors, c)
	return nil
}

// Close marks the pixel closed.
func (p *FakePixel) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Colors returns a copy of every color set so far.
func (p *FakePixel) Colors() []Color {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Color, len(p.colors))
	copy(out, p.colors)
	return out
}

// Last returns the most recently set color, or Off if none was set.
func (p *FakePixel) Last() Color {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.colors) == 0 {
		return Off
	}
	return p.colors[len(p.colors)-1]
}

// Closed reports whether Close has been called.
func (p *FakePixel) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
