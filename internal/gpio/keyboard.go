package gpio

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/nsf/termbox-go"
)

// Simulated hold durations. A terminal only reports key presses, so each press
// is replayed as a pulse on the matching button.
const (
	keyShortHold = 80 * time.Millisecond
	keyLongHold  = 800 * time.Millisecond
	keyPulseGap  = 60 * time.Millisecond
)

type pulse struct {
	start time.Time
	end   time.Time
}

// KeyboardReader simulates the buttons from terminal key presses.
//
//	a / left arrow    left click       A  left long press
//	s / space / enter center click     S  center long press
//	d / right arrow   right click      D  right long press
//	q / Esc / Ctrl-C  quit
type KeyboardReader struct {
	clock  clockwork.Clock
	events chan termbox.Event
	quit   chan struct{}
	once   sync.Once

	ownsTerm bool
	pulses   [3][]pulse
}

// NewKeyboardReader starts reading keys from the terminal, initializing termbox
// if no other component has done so.
func NewKeyboardReader(clock clockwork.Clock) (*KeyboardReader, error) {
	k := newKeyboardReader(clock)
	if !termbox.IsInit {
		if err := termbox.Init(); err != nil {
			return nil, err
		}
		k.ownsTerm = true
	}
	termbox.SetInputMode(termbox.InputEsc)

	go k.pollEvents()
	return k, nil
}

func newKeyboardReader(clock clockwork.Clock) *KeyboardReader {
	return &KeyboardReader{
		clock:  clock,
		events: make(chan termbox.Event, 32),
		quit:   make(chan struct{}),
	}
}

func (k *KeyboardReader) pollEvents() {
	for {
		ev := termbox.PollEvent()
		switch ev.Type {
		case termbox.EventInterrupt, termbox.EventError:
			return
		case termbox.EventKey:
			select {
			case k.events <- ev:
			default:
				// Reader not keeping up; drop the key.
			}
		}
	}
}

// Read returns the simulated button levels at the current clock time.
func (k *KeyboardReader) Read() (Sample, error) {
	now := k.clock.Now()
drain:
	for {
		select {
		case ev := <-k.events:
			k.handleKey(ev, now)
		default:
			break drain
		}
	}

	return Sample{
		Left:   k.level(0, now),
		Center: k.level(1, now),
		Right:  k.level(2, now),
	}, nil
}

// Quit is closed when the user asks to exit.
func (k *KeyboardReader) Quit() <-chan struct{} {
	return k.quit
}

// Close stops the event goroutine and restores the terminal if this reader
// initialized it.
func (k *KeyboardReader) Close() error {
	if termbox.IsInit {
		termbox.Interrupt()
		if k.ownsTerm {
			termbox.Close()
		}
	}
	return nil
}

func (k *KeyboardReader) handleKey(ev termbox.Event, now time.Time) {
	switch ev.Key {
	case termbox.KeyEsc, termbox.KeyCtrlC:
		k.once.Do(func() { close(k.quit) })
		return
	case termbox.KeyArrowLeft:
		k.schedule(0, keyShortHold, now)
		return
	case termbox.KeyArrowRight:
		k.schedule(2, keyShortHold, now)
		return
	case termbox.KeySpace, termbox.KeyEnter:
		k.schedule(1, keyShortHold, now)
		return
	}

	switch ev.Ch {
	case 'q':
		k.once.Do(func() { close(k.quit) })
	case 'a':
		k.schedule(0, keyShortHold, now)
	case 'A':
		k.schedule(0, keyLongHold, now)
	case 's':
		k.schedule(1, keyShortHold, now)
	case 'S':
		k.schedule(1, keyLongHold, now)
	case 'd':
		k.schedule(2, keyShortHold, now)
	case 'D':
		k.schedule(2, keyLongHold, now)
	}
}

// schedule queues a pulse on button i, leaving a released gap after any
// pulse already queued so back-to-back presses stay distinct.
func (k *KeyboardReader) schedule(i int, hold time.Duration, now time.Time) {
	start := now
	if q := k.pulses[i]; len(q) > 0 {
		if next := q[len(q)-1].end.Add(keyPulseGap); next.After(start) {
			start = next
		}
	}
	k.pulses[i] = append(k.pulses[i], pulse{start: start, end: start.Add(hold)})
}

func (k *KeyboardReader) level(i int, now time.Time) bool {
	q := k.pulses[i]
	for len(q) > 0 && !now.Before(q[0].end) {
		q = q[1:]
	}
	k.pulses[i] = q
	return len(q) > 0 && !now.Before(q[0].start)
}
