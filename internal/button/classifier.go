package button

import "time"

// Classifier turns one button's raw levels into Click, DoubleClick and LongPress.
//
// A long press is reported as soon as the hold crosses the threshold, while the
// button is still down, or on the release edge when both land on one sample;
// the release that follows a reported long press is swallowed. A click is only
// reported once the double-click window has expired without a second release.
type Classifier struct {
	timing Timing
	deb    *Debouncer

	down      bool
	pressedAt time.Time
	longFired bool

	armed   bool
	armedAt time.Time

	slot Slot
}

// NewClassifier creates a classifier with the given thresholds.
func NewClassifier(timing Timing) *Classifier {
	return &Classifier{
		timing: timing,
		deb:    NewDebouncer(timing.Debounce),
	}
}

// Step processes one raw sample. Any resulting gesture is left in the slot.
func (c *Classifier) Step(raw bool, now time.Time) {
	down := c.deb.Sample(raw, now)

	// Press edge
	if down && !c.down {
		c.pressedAt = now
		c.longFired = false
	}

	// Long press fires while held
	if down && !c.longFired && now.Sub(c.pressedAt) >= c.timing.LongPress {
		c.longFired = true
		c.armed = false
		c.slot.Put(LongPress)
	}

	// Release edge
	if !down && c.down {
		c.release(now)
	}

	// Window expired with no second release
	if c.armed && now.Sub(c.armedAt) >= c.timing.DoubleClick {
		c.armed = false
		c.slot.Put(Click)
	}

	c.down = down
}

func (c *Classifier) release(now time.Time) {
	if c.longFired {
		c.longFired = false
		return
	}
	// The hold crossed the threshold on this very sample.
	if now.Sub(c.pressedAt) >= c.timing.LongPress {
		c.armed = false
		c.slot.Put(LongPress)
		return
	}
	if now.Sub(c.pressedAt) < c.timing.Debounce {
		return
	}

	if c.armed {
		if now.Sub(c.armedAt) <= c.timing.DoubleClick {
			c.armed = false
			c.slot.Put(DoubleClick)
			return
		}
		// The previous window lapsed between samples; settle it first.
		c.slot.Put(Click)
	}

	c.armed = true
	c.armedAt = now
}

// Take returns the pending gesture and clears it.
func (c *Classifier) Take() Gesture {
	return c.slot.Take()
}

// Pressed returns the debounced level.
func (c *Classifier) Pressed() bool {
	return c.down
}

// Armed reports whether a double-click window is open.
func (c *Classifier) Armed() bool {
	return c.armed
}

// Dropped returns how many gestures were overwritten before being read.
func (c *Classifier) Dropped() int {
	return c.slot.Dropped()
}
