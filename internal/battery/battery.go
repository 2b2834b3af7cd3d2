// Package battery reads the charge level shown in the status bar.
package battery

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// Source kinds.
const (
	SourceNone     = "none"
	SourceCapacity = "capacity" // power_supply capacity file, already 0..100
	SourceADC      = "adc"      // raw ADC reading of the cell voltage divider
)

// Default ADC calibration points.
const (
	DefaultADCEmpty = 1100
	DefaultADCFull  = 2600
)

// Config selects where the level comes from.
type Config struct {
	Source string
	Path   string
	// ADC raw readings at 0% and 100%.
	Empty int
	Full  int
}

// Reader reads the battery level from sysfs.
type Reader struct {
	fs  afero.Fs
	cfg Config
}

// NewReader creates a reader over fs (afero.NewOsFs() on the device).
func NewReader(fs afero.Fs, cfg Config) *Reader {
	if cfg.Empty == 0 && cfg.Full == 0 {
		cfg.Empty, cfg.Full = DefaultADCEmpty, DefaultADCFull
	}
	return &Reader{fs: fs, cfg: cfg}
}

// Percent returns the charge level in [0,100], or -1 when no source is configured.
func (r *Reader) Percent() (int, error) {
	switch r.cfg.Source {
	case "", SourceNone:
		return -1, nil
	case SourceCapacity, SourceADC:
	default:
		return -1, fmt.Errorf("battery: unknown source %q", r.cfg.Source)
	}

	b, err := afero.ReadFile(r.fs, r.cfg.Path)
	if err != nil {
		return -1, fmt.Errorf("read battery: %w", err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return -1, fmt.Errorf("parse battery %q: %w", r.cfg.Path, err)
	}

	if r.cfg.Source == SourceADC {
		return Percent(v, r.cfg.Empty, r.cfg.Full), nil
	}
	return clamp(v), nil
}

// Percent maps a raw ADC reading linearly between the empty and full
// calibration points, clamped to [0,100].
func Percent(raw, empty, full int) int {
	if full <= empty {
		return 0
	}
	return clamp((raw - empty) * 100 / (full - empty))
}

func clamp(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
