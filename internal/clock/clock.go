// Package clock measures wall time between frames.
package clock

import "time"

// Frame reports the elapsed time between successive Tick calls. It is owned
// by the frame loop and is not safe for concurrent use.
type Frame struct {
	now  func() time.Time
	prev time.Time
}

// New starts a frame clock at the current instant.
func New() *Frame {
	return NewWithSource(time.Now)
}

// NewWithSource starts a frame clock driven by now. time.Now readings carry a
// monotonic component, so deltas are immune to wall clock steps.
func NewWithSource(now func() time.Time) *Frame {
	return &Frame{now: now, prev: now()}
}

// Tick returns the seconds elapsed since the previous Tick (or since New on
// the first call) and advances the stored timestamp.
func (c *Frame) Tick() float32 {
	t := c.now()
	d := t.Sub(c.prev)
	c.prev = t
	if d < 0 {
		return 0
	}
	return float32(d.Seconds())
}
