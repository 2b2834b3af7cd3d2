// Package config loads daemon settings from flags, environment and an
// optional YAML file.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. OLEDCLOCK_HTTP_ADDR.
const EnvPrefix = "OLEDCLOCK"

type Buttons struct {
	Source      string        `mapstructure:"source"` // gpio | keyboard
	Chip        string        `mapstructure:"chip"`
	PinLeft     int           `mapstructure:"pin_left"`
	PinCenter   int           `mapstructure:"pin_center"`
	PinRight    int           `mapstructure:"pin_right"`
	Debounce    time.Duration `mapstructure:"debounce"`
	LongPress   time.Duration `mapstructure:"long_press"`
	DoubleClick time.Duration `mapstructure:"double_click"`
}

type Scheduler struct {
	Slice time.Duration `mapstructure:"slice"`
}

type Display struct {
	Backend string `mapstructure:"backend"` // oled | terminal | none
	I2CBus  string `mapstructure:"i2c_bus"`
}

type Weather struct {
	APIKey     string        `mapstructure:"api_key"`
	BaseURL    string        `mapstructure:"base_url"`
	Language   string        `mapstructure:"language"`
	Location   string        `mapstructure:"location"`
	Timeout    time.Duration `mapstructure:"timeout"`
	StaleAfter time.Duration `mapstructure:"stale_after"`
}

type Time struct {
	Source   string        `mapstructure:"source"` // ntp | system
	Zone     string        `mapstructure:"zone"`
	Server   string        `mapstructure:"server"`
	Tries    int           `mapstructure:"tries"`
	Interval time.Duration `mapstructure:"interval"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Retry    time.Duration `mapstructure:"retry"`
}

type Alert struct {
	Backend string `mapstructure:"backend"` // buzzer | desktop | log
	Pin     int    `mapstructure:"pin"`
}

type Settings struct {
	Path string `mapstructure:"path"` // empty keeps settings in memory
}

type MQTT struct {
	Broker    string        `mapstructure:"broker"` // empty disables
	ClientID  string        `mapstructure:"client_id"`
	Heartbeat time.Duration `mapstructure:"heartbeat"`
}

type HTTP struct {
	Addr string `mapstructure:"addr"` // empty disables
}

type Battery struct {
	Source string `mapstructure:"source"` // none | capacity | adc
	Path   string `mapstructure:"path"`
	Empty  int    `mapstructure:"empty"`
	Full   int    `mapstructure:"full"`
}

type Log struct {
	File       string `mapstructure:"file"` // empty logs to stderr
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// Config is the complete daemon configuration.
type Config struct {
	Buttons   Buttons   `mapstructure:"buttons"`
	Scheduler Scheduler `mapstructure:"scheduler"`
	Display   Display   `mapstructure:"display"`
	Weather   Weather   `mapstructure:"weather"`
	Time      Time      `mapstructure:"time"`
	Alert     Alert     `mapstructure:"alert"`
	Settings  Settings  `mapstructure:"settings"`
	MQTT      MQTT      `mapstructure:"mqtt"`
	HTTP      HTTP      `mapstructure:"http"`
	Battery   Battery   `mapstructure:"battery"`
	Log       Log       `mapstructure:"log"`
}

var defaults = map[string]any{
	"buttons.source":       "gpio",
	"buttons.chip":         "gpiochip0",
	"buttons.pin_left":     17,
	"buttons.pin_center":   27,
	"buttons.pin_right":    22,
	"buttons.debounce":     "20ms",
	"buttons.long_press":   "600ms",
	"buttons.double_click": "280ms",

	"scheduler.slice": "14ms",

	"display.backend": "oled",
	"display.i2c_bus": "",

	"weather.api_key":     "",
	"weather.base_url":    "https://api.seniverse.com/v3/weather/now.json",
	"weather.language":    "zh-Hans",
	"weather.location":    "kunming",
	"weather.timeout":     "8s",
	"weather.stale_after": "10m",

	"time.source":   "ntp",
	"time.zone":     "Local",
	"time.server":   "pool.ntp.org",
	"time.tries":    20,
	"time.interval": "80ms",
	"time.timeout":  "1s",
	"time.retry":    "30s",

	"alert.backend": "buzzer",
	"alert.pin":     18,

	"settings.path": "/var/lib/oledclock/settings.db",

	"mqtt.broker":    "",
	"mqtt.client_id": "oledclock",
	"mqtt.heartbeat": "15m",

	"http.addr": ":80",

	"battery.source": "none",
	"battery.path":   "/sys/class/power_supply/battery/capacity",
	"battery.empty":  1100,
	"battery.full":   2600,

	"log.file":         "",
	"log.max_size_mb":  10,
	"log.max_backups":  3,
	"log.max_age_days": 28,
}

// Keys returns every configuration key, sorted by section.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads file (if not empty) into v and decodes the result.
// A named file that cannot be read is an error.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated values and timings.
func (c Config) Validate() error {
	var errs []error
	check := func(name, value string, allowed ...string) {
		for _, a := range allowed {
			if value == a {
				return
			}
		}
		errs = append(errs, fmt.Errorf("%s: %q is not one of %s", name, value, strings.Join(allowed, ", ")))
	}
	check("buttons.source", c.Buttons.Source, "gpio", "keyboard")
	check("display.backend", c.Display.Backend, "oled", "terminal", "none")
	check("time.source", c.Time.Source, "ntp", "system")
	check("alert.backend", c.Alert.Backend, "buzzer", "desktop", "log")
	check("battery.source", c.Battery.Source, "none", "capacity", "adc")

	if c.Scheduler.Slice <= 0 {
		errs = append(errs, errors.New("scheduler.slice must be positive"))
	}
	if c.Buttons.Debounce < 0 || c.Buttons.LongPress <= 0 || c.Buttons.DoubleClick <= 0 {
		errs = append(errs, errors.New("buttons: timings must be positive"))
	}
	if c.Time.Tries < 1 {
		errs = append(errs, errors.New("time.tries must be at least 1"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Location resolves time.zone.
func (c Config) Location() (*time.Location, error) {
	switch c.Time.Zone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Time.Zone)
	if err != nil {
		return nil, fmt.Errorf("time.zone: %w", err)
	}
	return loc, nil
}
