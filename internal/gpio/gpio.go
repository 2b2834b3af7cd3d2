// Package gpio provides button input and buzzer output with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The keyboard implementation simulates the buttons from a terminal.
// The fake implementation allows testing without hardware.
package gpio

// Sample is one reading of the three buttons in logical form (true = pressed).
type Sample struct {
	Left   bool
	Center bool
	Right  bool
}

// Reader reads button states.
type Reader interface {
	// Read returns the logical state of all three buttons.
	// Buttons are wired active-low with pull-ups: raw 0 = pressed.
	Read() (Sample, error)

	// Close releases GPIO resources.
	Close() error
}

// Output drives a single digital output line, such as a buzzer.
type Output interface {
	Set(on bool) error
	Close() error
}

// Pins holds the BCM line offsets of the buttons.
type Pins struct {
	Left   int
	Center int
	Right  int
}

// Default pin definitions (BCM numbering)
const (
	PinLeft   = 17
	PinCenter = 27
	PinRight  = 22
	PinBuzzer = 18
)

// DefaultPins returns the standard button wiring.
func DefaultPins() Pins {
	return Pins{Left: PinLeft, Center: PinCenter, Right: PinRight}
}
