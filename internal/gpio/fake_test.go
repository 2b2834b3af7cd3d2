package gpio

import (
	"errors"
	"testing"
	"time"
)

func TestFakeReaderRead(t *testing.T) {
	samples := []Sample{
		{Left: true},
		{Center: true},
		{Left: true, Right: true},
	}

	f := NewFakeReader(samples)

	for i, want := range samples {
		got, err := f.Read()
		if err != nil {
			t.Fatalf("sample %d: unexpected error: %v", i, err)
		}
		if got != want {
			t.Errorf("sample %d: expected %+v, got %+v", i, want, got)
		}
	}

	// Exhausted samples repeat the last one
	got, err := f.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != samples[2] {
		t.Errorf("repeat: expected %+v, got %+v", samples[2], got)
	}
}

func TestFakeReaderNoSamples(t *testing.T) {
	f := NewFakeReader(nil)

	if _, err := f.Read(); err == nil {
		t.Error("expected error with no samples")
	}
}

func TestFakeReaderError(t *testing.T) {
	f := NewFakeReader([]Sample{{Center: true}})
	f.ReadError = errors.New("simulated error")

	_, err := f.Read()
	if err == nil {
		t.Fatal("expected error to be returned")
	}
	if err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFakeReaderCloseAndReset(t *testing.T) {
	f := NewFakeReader([]Sample{{Left: true}, {Right: true}})

	f.Read()
	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}

	f.Reset()
	if f.Closed {
		t.Error("Reset should clear Closed")
	}
	got, _ := f.Read()
	if !got.Left {
		t.Errorf("after reset: expected first sample, got %+v", got)
	}
}

func TestFakeOutputRecordsChanges(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	f := &FakeOutput{Now: func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Millisecond)
	}}

	f.Set(true)
	f.Set(false)

	if len(f.Changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(f.Changes))
	}
	if !f.Changes[0].On || f.Changes[1].On {
		t.Errorf("unexpected levels: %+v", f.Changes)
	}
	if f.On() {
		t.Error("expected output off")
	}

	f.SetError = errors.New("line busy")
	if err := f.Set(true); err == nil {
		t.Error("expected SetError to be returned")
	}
	if len(f.Changes) != 2 {
		t.Error("failed Set must not be recorded")
	}
}
