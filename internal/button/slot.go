package button

// Slot is a single-entry gesture mailbox.
// Put overwrites an unread gesture (overwrite-oldest); Take reads and clears.
// Overwrites are counted so callers can report dropped input.
// Not safe for concurrent use.
type Slot struct {
	pending Gesture
	dropped int
}

// Put stores g, replacing any gesture that was not yet taken.
func (s *Slot) Put(g Gesture) {
	if g == None {
		return
	}
	if s.pending != None {
		s.dropped++
	}
	s.pending = g
}

// Take returns the pending gesture and clears the slot.
func (s *Slot) Take() Gesture {
	g := s.pending
	s.pending = None
	return g
}

// Peek returns the pending gesture without clearing it.
func (s *Slot) Peek() Gesture {
	return s.pending
}

// Dropped returns how many gestures were overwritten before being read.
func (s *Slot) Dropped() int {
	return s.dropped
}
