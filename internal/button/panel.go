package button

// Panel tracks the three buttons of the device.
type Panel struct {
	left   *Classifier
	center *Classifier
	right  *Classifier
}

// NewPanel creates a panel whose buttons share the given thresholds.
func NewPanel(timing Timing) *Panel {
	return &Panel{
		left:   NewClassifier(timing),
		center: NewClassifier(timing),
		right:  NewClassifier(timing),
	}
}

// Poll feeds one sample of all three buttons.
// Gestures accumulate in per-button slots until Take is called.
func (p *Panel) Poll(input Input) {
	p.left.Step(input.Left, input.Time)
	p.center.Step(input.Center, input.Time)
	p.right.Step(input.Right, input.Time)
}

// Take returns and clears the pending gesture of every button.
func (p *Panel) Take() Gestures {
	return Gestures{
		Left:   p.left.Take(),
		Center: p.center.Take(),
		Right:  p.right.Take(),
	}
}

// Pressed returns the debounced level of each button.
func (p *Panel) Pressed() (left, center, right bool) {
	return p.left.Pressed(), p.center.Pressed(), p.right.Pressed()
}

// Dropped returns the total number of overwritten gestures across buttons.
func (p *Panel) Dropped() int {
	return p.left.Dropped() + p.center.Dropped() + p.right.Dropped()
}
