package app

import (
	"context"
	"errors"
	"time"

	"github.com/sweeney/oledclock/internal/weather"
)

var errNoTime = errors.New("time not synchronized")

type fakeTime struct {
	wall      time.Time
	available bool
	tries     int
	syncErr   error
	syncs     int
}

func (f *fakeTime) WallClock() (time.Time, error) {
	if !f.available {
		return time.Time{}, errNoTime
	}
	return f.wall, nil
}

func (f *fakeTime) Sync(ctx context.Context, progress func(attempt, tries int)) error {
	f.syncs++
	for i := 1; i <= f.tries; i++ {
		progress(i, f.tries)
	}
	if f.syncErr != nil {
		return f.syncErr
	}
	f.available = true
	return nil
}

type fakeNetwork struct {
	connected bool
	report    weather.Report
	err       error
	locations []string
}

func (f *fakeNetwork) Connected() bool { return f.connected }

func (f *fakeNetwork) FetchWeather(ctx context.Context, location string) (weather.Report, error) {
	f.locations = append(f.locations, location)
	if f.err != nil {
		return weather.Report{}, f.err
	}
	return f.report, nil
}

type fakeAlert struct {
	plays int
	err   error
}

func (f *fakeAlert) Play() error {
	f.plays++
	return f.err
}

type fakeSettings map[string]string

func (f fakeSettings) Get(key string) (string, bool) {
	v, ok := f[key]
	return v, ok
}

type recorder struct {
	views []View
}

func (r *recorder) Present(v View) {
	r.views = append(r.views, v)
}

type harness struct {
	c        *Controller
	time     *fakeTime
	net      *fakeNetwork
	alert    *fakeAlert
	settings fakeSettings
	rec      *recorder
}

func newHarness() *harness {
	h := &harness{
		time: &fakeTime{
			wall:  time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC),
			tries: 3,
		},
		net: &fakeNetwork{
			connected: true,
			report:    weather.Report{City: "Kunming", Temperature: "21", Condition: "Sunny", Icon: weather.IconSunny},
		},
		alert:    &fakeAlert{},
		settings: fakeSettings{},
		rec:      &recorder{},
	}
	h.c = NewController(DefaultConfig(), Deps{
		Time:      h.time,
		Network:   h.net,
		Settings:  h.settings,
		Alert:     h.alert,
		Presenter: h.rec,
	})
	return h
}
