//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads the buttons from actual hardware using the Linux GPIO character device.
type RealReader struct {
	chip   *gpiocdev.Chip
	lines  *gpiocdev.Lines
	values []int
}

// NewRealReader requests the three button lines on the named chip (e.g. "gpiochip0").
func NewRealReader(chipName string, pins Pins) (*RealReader, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer("oledclock"))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	// Buttons short to ground; pull-ups hold the idle level high.
	lines, err := chip.RequestLines(
		[]int{pins.Left, pins.Center, pins.Right},
		gpiocdev.AsInput, gpiocdev.WithPullUp,
	)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request button pins %d/%d/%d: %w", pins.Left, pins.Center, pins.Right, err)
	}

	return &RealReader{
		chip:   chip,
		lines:  lines,
		values: make([]int, 3),
	}, nil
}

// Read returns the logical state of the buttons.
// Inverts raw GPIO: raw low (0) = pressed.
func (r *RealReader) Read() (Sample, error) {
	if err := r.lines.Values(r.values); err != nil {
		return Sample{}, fmt.Errorf("read button pins: %w", err)
	}
	return Sample{
		Left:   r.values[0] == 0,
		Center: r.values[1] == 0,
		Right:  r.values[2] == 0,
	}, nil
}

// Close releases GPIO resources.
func (r *RealReader) Close() error {
	var errs []error
	if r.lines != nil {
		if err := r.lines.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button pins: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealOutput drives one GPIO line as a push-pull output.
type RealOutput struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealOutput requests pin as an output, initially low.
func NewRealOutput(chipName string, pin int) (*RealOutput, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer("oledclock"))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request output pin %d: %w", pin, err)
	}

	return &RealOutput{chip: chip, line: line}, nil
}

// Set drives the line high (on) or low.
func (o *RealOutput) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := o.line.SetValue(v); err != nil {
		return fmt.Errorf("set output pin: %w", err)
	}
	return nil
}

// Close drives the line low and returns it to an input so a buzzer cannot be
// left sounding after shutdown.
func (o *RealOutput) Close() error {
	var errs []error
	if o.line != nil {
		if err := o.line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("clear output pin: %w", err))
		}
		if err := o.line.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure output pin: %w", err))
		}
		if err := o.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close output pin: %w", err))
		}
	}
	if o.chip != nil {
		if err := o.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
