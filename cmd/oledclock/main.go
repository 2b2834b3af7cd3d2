// Command oledclock drives a three-button OLED clock: a menu with clock,
// calendar, weather, countdown timer and stopwatch pages.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sweeney/oledclock/internal/alert"
	"github.com/sweeney/oledclock/internal/app"
	"github.com/sweeney/oledclock/internal/battery"
	"github.com/sweeney/oledclock/internal/button"
	"github.com/sweeney/oledclock/internal/config"
	"github.com/sweeney/oledclock/internal/gpio"
	"github.com/sweeney/oledclock/internal/mqtt"
	"github.com/sweeney/oledclock/internal/network"
	"github.com/sweeney/oledclock/internal/render"
	"github.com/sweeney/oledclock/internal/scheduler"
	"github.com/sweeney/oledclock/internal/settings"
	"github.com/sweeney/oledclock/internal/status"
	"github.com/sweeney/oledclock/internal/timesource"
	"github.com/sweeney/oledclock/internal/weather"
	"github.com/sweeney/oledclock/internal/web"
)

func main() {
	if err := newRootCmd(run).Execute(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// options are flags that select a run mode rather than configure the device.
type options struct {
	printState bool
}

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"broker":    "mqtt.broker",
	"heartbeat": "mqtt.heartbeat",
	"http":      "http.addr",
	"display":   "display.backend",
	"buttons":   "buttons.source",
	"location":  "weather.location",
	"settings":  "settings.path",
	"log-file":  "log.file",
}

func newRootCmd(runFn func(config.Config, options) error) *cobra.Command {
	v := config.NewViper()
	var cfgFile string
	var opts options

	cmd := &cobra.Command{
		Use:           "oledclock",
		Short:         "Three-button OLED clock",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, cfgFile)
			if err != nil {
				return err
			}
			return runFn(cfg, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfgFile, "config", "", "YAML configuration file")
	f.BoolVar(&opts.printState, "print-state", false, "Print current button levels and exit")
	f.String("broker", "", "MQTT broker address (empty disables)")
	f.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	f.String("http", ":80", "HTTP settings address (empty disables)")
	f.String("display", "oled", "Display backend: oled, terminal or none")
	f.String("buttons", "gpio", "Button source: gpio or keyboard")
	f.String("location", "kunming", "Default weather location")
	f.String("settings", "/var/lib/oledclock/settings.db", "Settings database (empty keeps settings in memory)")
	f.String("log-file", "", "Rotated log file (empty logs to stderr)")
	if err := bindFlags(v, f); err != nil {
		panic(err)
	}
	return cmd
}

func bindFlags(v *viper.Viper, f *pflag.FlagSet) error {
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, f.Lookup(name)); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}

func run(cfg config.Config, opts options) error {
	clock := clockwork.NewRealClock()

	if closer := setupLogging(cfg.Log, cfg.Display.Backend); closer != nil {
		defer closer.Close()
	}

	if opts.printState {
		reader, err := gpio.NewRealReader(cfg.Buttons.Chip, pins(cfg.Buttons))
		if err != nil {
			return fmt.Errorf("init gpio: %w", err)
		}
		defer reader.Close()
		return printState(os.Stdout, reader)
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// Display
	out, err := openDisplay(cfg.Display)
	if err != nil {
		return fmt.Errorf("init display: %w", err)
	}
	renderer := render.NewRenderer(out)
	defer renderer.Close()

	// Buttons
	reader, quit, err := openButtons(cfg.Buttons, clock)
	if err != nil {
		return fmt.Errorf("init buttons: %w", err)
	}
	defer reader.Close()

	// Settings
	store, closeStore, err := openSettings(cfg.Settings)
	if err != nil {
		return fmt.Errorf("init settings: %w", err)
	}
	defer closeStore()

	// Alert
	alerter, closeAlert := newAlert(cfg, clock)
	defer closeAlert()

	monitor := network.NewMonitor()
	indicators := scheduler.NewIndicators(clock, monitor, newBattery(cfg.Battery, afero.NewOsFs()))
	presenter := scheduler.NewPresenter(renderer, indicators)

	controller := app.NewController(app.Config{
		DefaultLocation:   cfg.Weather.Location,
		WeatherStaleAfter: cfg.Weather.StaleAfter,
		FetchTimeout:      cfg.Weather.Timeout,
	}, app.Deps{
		Time:      newTimeSource(cfg.Time, clock, loc),
		Network:   weather.NewClient(weather.Config{BaseURL: cfg.Weather.BaseURL, APIKey: cfg.Weather.APIKey, Language: cfg.Weather.Language}, monitor),
		Settings:  store,
		Alert:     alerter,
		Presenter: presenter,
	})

	// MQTT
	var publisher mqtt.Publisher = mqtt.Nop{}
	var mqttStatus mqtt.ConnectionStatus = mqtt.Nop{}
	if cfg.MQTT.Broker != "" {
		p := mqtt.NewRealPublisher(mqtt.Options{Broker: cfg.MQTT.Broker, ClientID: cfg.MQTT.ClientID})
		publisher, mqttStatus = p, p
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(clock, statusConfig(cfg))
	tracker.SetNetwork(monitor.Info())

	snap := tracker.Snapshot()
	startup := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startup); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	}

	// HTTP settings and status server
	locationChanged := make(chan struct{}, 1)
	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, web.Deps{
			Tracker:  tracker,
			Settings: store,
			Screen:   renderer,
			Notify:   locationChanged,
		})
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http server listening on %s", cfg.HTTP.Addr)
	}

	loop := scheduler.New(scheduler.Config{
		Slice:     cfg.Scheduler.Slice,
		Heartbeat: cfg.MQTT.Heartbeat,
	}, scheduler.Deps{
		Clock:           clock,
		Reader:          reader,
		Panel:           button.NewPanel(timing(cfg.Buttons)),
		Controller:      controller,
		Renderer:        renderer,
		Indicators:      indicators,
		Publisher:       publisher,
		MQTTStatus:      mqttStatus,
		Tracker:         tracker,
		Network:         monitor,
		LocationChanged: locationChanged,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	reason := make(chan string, 1)
	go func() {
		reason <- waitForStop(ctx, sigCh, quit)
		cancel()
	}()

	log.Printf("started: display=%s buttons=%s slice=%v location=%q broker=%q",
		cfg.Display.Backend, cfg.Buttons.Source, cfg.Scheduler.Slice, controller.Location(), cfg.MQTT.Broker)

	if err := loop.Run(ctx); err != nil {
		return err
	}

	why := <-reason
	log.Printf("shutting down (%s)", why)
	publishShutdown(publisher, mqttStatus, tracker, clock.Now(), why)
	return nil
}

// waitForStop blocks until a signal arrives, the keyboard asks to quit, or
// ctx ends, and names the cause.
func waitForStop(ctx context.Context, sig <-chan os.Signal, quit <-chan struct{}) string {
	select {
	case s := <-sig:
		return signalName(s)
	case <-quit:
		return "QUIT"
	case <-ctx.Done():
		return "CANCELLED"
	}
}

func publishShutdown(p mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, now time.Time, reason string) {
	event := mqtt.SystemEvent{
		Timestamp: now,
		Event:     "SHUTDOWN",
		Reason:    reason,
		Retained:  true,
	}
	if tracker != nil {
		if mqttStatus != nil {
			tracker.SetMQTTConnected(mqttStatus.IsConnected())
		}
		event.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", reason)
	}
	if err := p.PublishSystem(event); err != nil {
		log.Printf("failed to publish shutdown event: %v", err)
	} else {
		log.Printf("published shutdown event")
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	default:
		return "UNKNOWN"
	}
}

// setupLogging routes the standard logger. A terminal display owns the screen,
// so without a log file the output is discarded.
func setupLogging(c config.Log, display string) io.Closer {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	if c.File == "" {
		if display == "terminal" {
			log.SetOutput(io.Discard)
		}
		return nil
	}
	lj := &lumberjack.Logger{
		Filename:   c.File,
		MaxSize:    c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAge:     c.MaxAgeDays,
	}
	if display == "terminal" {
		log.SetOutput(lj)
	} else {
		log.SetOutput(io.MultiWriter(os.Stderr, lj))
	}
	return lj
}

func openDisplay(c config.Display) (render.Output, error) {
	switch c.Backend {
	case "oled":
		return render.OpenOLED(c.I2CBus)
	case "terminal":
		return render.NewTerminal()
	default:
		return render.Null{}, nil
	}
}

func pins(c config.Buttons) gpio.Pins {
	return gpio.Pins{Left: c.PinLeft, Center: c.PinCenter, Right: c.PinRight}
}

func timing(c config.Buttons) button.Timing {
	return button.Timing{Debounce: c.Debounce, LongPress: c.LongPress, DoubleClick: c.DoubleClick}
}

// openButtons returns the button reader and, for the keyboard, a quit channel.
func openButtons(c config.Buttons, clock clockwork.Clock) (gpio.Reader, <-chan struct{}, error) {
	if c.Source == "keyboard" {
		k, err := gpio.NewKeyboardReader(clock)
		if err != nil {
			return nil, nil, err
		}
		return k, k.Quit(), nil
	}
	r, err := gpio.NewRealReader(c.Chip, pins(c))
	if err != nil {
		return nil, nil, err
	}
	return r, nil, nil
}

type settingsStore interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

func openSettings(c config.Settings) (settingsStore, func() error, error) {
	if c.Path == "" {
		return settings.NewMemory(), func() error { return nil }, nil
	}
	s, err := settings.OpenSQLite(c.Path)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}

// newAlert picks the countdown alert. A buzzer that cannot be claimed falls
// back to logging so the timer still works.
func newAlert(cfg config.Config, clock clockwork.Clock) (app.Alert, func() error) {
	noop := func() error { return nil }
	switch cfg.Alert.Backend {
	case "buzzer":
		out, err := gpio.NewRealOutput(cfg.Buttons.Chip, cfg.Alert.Pin)
		if err != nil {
			log.Printf("buzzer unavailable, alerts will be logged: %v", err)
			return alert.Log{}, noop
		}
		return alert.NewBuzzer(out, clock, alert.DefaultPattern()), out.Close
	case "desktop":
		return alert.NewDesktop(clock, alert.DefaultPattern()), noop
	default:
		return alert.Log{}, noop
	}
}

func newTimeSource(c config.Time, clock clockwork.Clock, loc *time.Location) app.TimeSource {
	if c.Source == "system" {
		return timesource.NewSystem(clock, loc)
	}
	return timesource.NewNTP(timesource.Config{
		Server:   c.Server,
		Tries:    c.Tries,
		Interval: c.Interval,
		Timeout:  c.Timeout,
		Retry:    c.Retry,
		Location: loc,
	}, clock)
}

// newBattery returns nil when no gauge is configured.
func newBattery(c config.Battery, fs afero.Fs) scheduler.Battery {
	if c.Source == "" || c.Source == battery.SourceNone {
		return nil
	}
	return battery.NewReader(fs, battery.Config{
		Source: c.Source,
		Path:   c.Path,
		Empty:  c.Empty,
		Full:   c.Full,
	})
}

func statusConfig(cfg config.Config) status.Config {
	return status.Config{
		SliceMs:     cfg.Scheduler.Slice.Milliseconds(),
		DebounceMs:  cfg.Buttons.Debounce.Milliseconds(),
		LongPressMs: cfg.Buttons.LongPress.Milliseconds(),
		DoubleMs:    cfg.Buttons.DoubleClick.Milliseconds(),
		HeartbeatMs: cfg.MQTT.Heartbeat.Milliseconds(),
		Display:     cfg.Display.Backend,
		Buttons:     cfg.Buttons.Source,
		Broker:      cfg.MQTT.Broker,
		HTTPAddr:    cfg.HTTP.Addr,
	}
}

func printState(w io.Writer, r gpio.Reader) error {
	s, err := r.Read()
	if err != nil {
		return fmt.Errorf("read gpio: %w", err)
	}
	_, err = fmt.Fprintf(w, "LEFT: %s, CENTER: %s, RIGHT: %s\n", level(s.Left), level(s.Center), level(s.Right))
	return err
}

func level(pressed bool) string {
	if pressed {
		return "DOWN"
	}
	return "UP"
}
