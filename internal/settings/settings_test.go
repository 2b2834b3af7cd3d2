package settings

import (
	"path/filepath"
	"testing"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if _, ok := s.Get("weather.location"); ok {
		t.Error("expected missing key on fresh database")
	}

	if err := s.Set("weather.location", "kunming"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set("weather.location", "beijing"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	v, ok := s.Get("weather.location")
	if !ok || v != "beijing" {
		t.Errorf("expected beijing, got %q (ok=%v)", v, ok)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Values survive a reopen.
	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	v, ok = s.Get("weather.location")
	if !ok || v != "beijing" {
		t.Errorf("after reopen: expected beijing, got %q (ok=%v)", v, ok)
	}
}

func TestMemoryStore(t *testing.T) {
	var s Store = NewMemory()

	if _, ok := s.Get("k"); ok {
		t.Error("expected missing key")
	}
	s.Set("k", "v")
	if v, ok := s.Get("k"); !ok || v != "v" {
		t.Errorf("expected v, got %q (ok=%v)", v, ok)
	}
}
