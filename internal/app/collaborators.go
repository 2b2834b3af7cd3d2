package app

import (
	"context"
	"time"

	"github.com/sweeney/oledclock/internal/weather"
)

// TimeSource provides calendar time once synchronized.
type TimeSource interface {
	// WallClock returns the current local date and time, or an error until
	// the source has been synchronized.
	WallClock() (time.Time, error)
	// Sync blocks for a bounded number of attempts. progress is called before
	// each attempt with the 1-based attempt number and the attempt limit.
	Sync(ctx context.Context, progress func(attempt, tries int)) error
}

// Network fetches weather.
type Network interface {
	Connected() bool
	FetchWeather(ctx context.Context, location string) (weather.Report, error)
}

// Settings reads persisted configuration.
type Settings interface {
	Get(key string) (string, bool)
}

// Alert plays the end-of-countdown pattern, blocking until it finishes.
type Alert interface {
	Play() error
}

// Presenter draws transient frames during blocking operations.
type Presenter interface {
	Present(v View)
}

// SettingLocation is the settings key holding the weather location.
const SettingLocation = "weather.location"
