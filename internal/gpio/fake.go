package gpio

import (
	"errors"
	"time"
)

// FakeReader is a test double that returns scripted button samples.
type FakeReader struct {
	// Samples contains scripted values to return.
	// Each call to Read() consumes the next sample.
	Samples []Sample

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []Sample) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeReader) Read() (Sample, error) {
	if f.ReadError != nil {
		return Sample{}, f.ReadError
	}

	if len(f.Samples) == 0 {
		return Sample{}, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}

// FakeOutput records every level written to it.
type FakeOutput struct {
	// Now stamps each change; defaults to time.Now.
	Now func() time.Time

	Changes  []OutputChange
	SetError error
	Closed   bool
}

// OutputChange is one recorded Set call.
type OutputChange struct {
	At time.Time
	On bool
}

// Set records the new level.
func (f *FakeOutput) Set(on bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	f.Changes = append(f.Changes, OutputChange{At: now(), On: on})
	return nil
}

// On returns the last level written.
func (f *FakeOutput) On() bool {
	return len(f.Changes) > 0 && f.Changes[len(f.Changes)-1].On
}

// Close marks the output as closed.
func (f *FakeOutput) Close() error {
	f.Closed = true
	return nil
}
