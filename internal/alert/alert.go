// Package alert plays the end-of-countdown pattern.
package alert

import (
	"fmt"
	"log"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/jonboulle/clockwork"

	"github.com/sweeney/oledclock/internal/gpio"
)

// Step is one segment of a pattern.
type Step struct {
	On       bool
	Duration time.Duration
}

// Pattern repeats Steps until Total has elapsed.
type Pattern struct {
	Steps     []Step
	Total     time.Duration
	Frequency float64 // Hz, for tone-capable outputs
}

// DefaultPattern is a double beep repeated for ten seconds.
func DefaultPattern() Pattern {
	return Pattern{
		Steps: []Step{
			{On: true, Duration: 180 * time.Millisecond},
			{On: false, Duration: 120 * time.Millisecond},
			{On: true, Duration: 180 * time.Millisecond},
			{On: false, Duration: 480 * time.Millisecond},
		},
		Total:     10 * time.Second,
		Frequency: 2000,
	}
}

// play walks the pattern, calling set at the start of each step and sleeping
// for its duration. The final step is cut short at Total.
func play(p Pattern, clock clockwork.Clock, set func(on bool, d time.Duration) error) error {
	if len(p.Steps) == 0 {
		return nil
	}
	start := clock.Now()
	for {
		for _, s := range p.Steps {
			remaining := p.Total - clock.Since(start)
			if remaining <= 0 {
				return nil
			}
			d := s.Duration
			if d > remaining {
				d = remaining
			}
			if err := set(s.On, d); err != nil {
				return err
			}
			clock.Sleep(d)
		}
	}
}

// Buzzer drives a piezo buzzer on a GPIO output.
type Buzzer struct {
	out     gpio.Output
	clock   clockwork.Clock
	pattern Pattern
}

// NewBuzzer creates a buzzer alert.
func NewBuzzer(out gpio.Output, clock clockwork.Clock, pattern Pattern) *Buzzer {
	return &Buzzer{out: out, clock: clock, pattern: pattern}
}

// Play blocks for the length of the pattern. The buzzer is always left off.
func (b *Buzzer) Play() error {
	err := play(b.pattern, b.clock, func(on bool, _ time.Duration) error {
		return b.out.Set(on)
	})
	if offErr := b.out.Set(false); err == nil && offErr != nil {
		err = offErr
	}
	if err != nil {
		return fmt.Errorf("buzzer: %w", err)
	}
	return nil
}

// Desktop raises a desktop notification and beeps through the host speaker.
// Used when running the simulator on a workstation.
type Desktop struct {
	clock   clockwork.Clock
	pattern Pattern
	title   string

	alert func(title, message string, icon any) error
	beep  func(freq float64, duration int) error
}

// NewDesktop creates a desktop alert.
func NewDesktop(clock clockwork.Clock, pattern Pattern) *Desktop {
	return &Desktop{
		clock:   clock,
		pattern: pattern,
		title:   "oledclock",
		alert:   beeep.Alert,
		beep:    beeep.Beep,
	}
}

// Play shows the notification then plays the pattern. Beep failures are
// reported once; the pattern still runs to completion so Play always blocks
// for the same duration.
func (d *Desktop) Play() error {
	notifyErr := d.alert(d.title, "Countdown finished", "")

	var beepErr error
	play(d.pattern, d.clock, func(on bool, dur time.Duration) error {
		if on && beepErr == nil {
			beepErr = d.beep(d.pattern.Frequency, int(dur/time.Millisecond))
		}
		return nil
	})

	if notifyErr != nil {
		return fmt.Errorf("desktop alert: %w", notifyErr)
	}
	if beepErr != nil {
		return fmt.Errorf("desktop beep: %w", beepErr)
	}
	return nil
}

// Log only records the alert. Used on headless hosts without a buzzer.
type Log struct{}

// Play logs and returns immediately.
func (Log) Play() error {
	log.Printf("alert: countdown finished")
	return nil
}
