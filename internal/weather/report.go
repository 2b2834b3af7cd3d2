// Package weather fetches current conditions for the weather page.
package weather

import (
	"errors"
	"strings"
)

// ErrOffline is returned when a fetch is attempted without connectivity.
var ErrOffline = errors.New("weather: network not connected")

// Icon codes understood by the renderer's weather glyph set.
const (
	IconFog    = 64
	IconCloudy = 65
	IconSnow   = 66
	IconRain   = 67
	IconSunny  = 69
)

// Report is the display payload for one successful fetch.
type Report struct {
	City        string
	Temperature string // degrees Celsius as reported, e.g. "21"
	Condition   string // provider text, e.g. "Light rain"
	Icon        int
}

// Label returns a short English label for the report's icon.
func (r Report) Label() string {
	switch r.Icon {
	case IconFog:
		return "Fog"
	case IconCloudy:
		return "Cloudy"
	case IconSnow:
		return "Snow"
	case IconRain:
		return "Rain"
	default:
		return "Sunny"
	}
}

var iconKeywords = []struct {
	icon     int
	keywords []string
}{
	{IconSnow, []string{"snow", "sleet", "雪"}},
	{IconRain, []string{"rain", "shower", "drizzle", "thunder", "雨"}},
	{IconCloudy, []string{"cloud", "overcast", "云", "阴"}},
	{IconFog, []string{"fog", "haze", "mist", "smoke", "dust", "sand", "雾", "霾", "沙", "尘"}},
}

// IconFor maps provider condition text to an icon code.
// Clear text without any cloud wins first; unknown text maps to sunny.
func IconFor(condition string) int {
	text := strings.ToLower(condition)
	if containsAny(text, "sunny", "clear", "晴") && !containsAny(text, "cloud", "云") {
		return IconSunny
	}
	for _, m := range iconKeywords {
		if containsAny(text, m.keywords...) {
			return m.icon
		}
	}
	return IconSunny
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
