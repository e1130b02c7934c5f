package interaction

import "sync"

// Channel is the single shared signal slot. The input side publishes or clears it at any
// time; the render side calls Frame once per frame and uses only that copy, so a frame
// never sees the value change mid-draw.
type Channel struct {
	mu  sync.Mutex
	cur Signal
}

// Publish replaces the current signal.
func (c *Channel) Publish(s Signal) {
	c.mu.Lock()
	c.cur = s
	c.mu.Unlock()
}

// Clear resets the signal to "nothing targeted".
func (c *Channel) Clear() {
	c.Publish(Signal{})
}

// Frame returns the signal to use for the frame about to be drawn.
func (c *Channel) Frame() Signal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}
