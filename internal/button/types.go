// Package button turns raw push-button levels into debounced gestures.
// This package has NO external dependencies (no GPIO, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package button

import "time"

// Gesture is a classified user action on one button.
type Gesture int

const (
	None Gesture = iota
	Click
	DoubleClick
	LongPress
)

func (g Gesture) String() string {
	switch g {
	case Click:
		return "CLICK"
	case DoubleClick:
		return "DOUBLE_CLICK"
	case LongPress:
		return "LONG_PRESS"
	default:
		return "NONE"
	}
}

// Channel identifies one of the three physical buttons.
type Channel int

const (
	Left Channel = iota
	Center
	Right
)

func (c Channel) String() string {
	switch c {
	case Left:
		return "LEFT"
	case Center:
		return "CENTER"
	case Right:
		return "RIGHT"
	default:
		return "UNKNOWN"
	}
}

// Timing holds the classifier thresholds.
type Timing struct {
	// Minimum time a raw level must hold before it becomes stable.
	Debounce time.Duration
	// Hold duration at which a press becomes a long press.
	LongPress time.Duration
	// Window after a release in which a second release makes a double click.
	DoubleClick time.Duration
}

// DefaultTiming returns the thresholds used by the device.
func DefaultTiming() Timing {
	return Timing{
		Debounce:    20 * time.Millisecond,
		LongPress:   600 * time.Millisecond,
		DoubleClick: 280 * time.Millisecond,
	}
}

// Input represents a single sample of the three button levels.
type Input struct {
	Left   bool // true = pressed (already inverted from raw GPIO)
	Center bool
	Right  bool
	Time   time.Time
}

// Gestures holds at most one pending gesture per button.
type Gestures struct {
	Left   Gesture
	Center Gesture
	Right  Gesture
}

// Any reports whether any button produced a gesture.
func (g Gestures) Any() bool {
	return g.Left != None || g.Center != None || g.Right != None
}

// Get returns the gesture for a channel.
func (g Gestures) Get(c Channel) Gesture {
	switch c {
	case Left:
		return g.Left
	case Center:
		return g.Center
	case Right:
		return g.Right
	}
	return None
}
