package weather

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/buger/jsonparser"
)

// DefaultBaseURL is the Seniverse "weather now" endpoint.
const DefaultBaseURL = "https://api.seniverse.com/v3/weather/now.json"

const maxBodyBytes = 64 << 10

// Connectivity reports whether the network is up.
type Connectivity interface {
	Connected() bool
}

// Config configures the weather client.
type Config struct {
	BaseURL  string
	APIKey   string
	Language string // e.g. "zh-Hans" or "en"
}

// Client fetches current weather over HTTP.
type Client struct {
	cfg  Config
	http *http.Client
	conn Connectivity
}

// NewClient creates a client. Per-request deadlines come from the context.
func NewClient(cfg Config, conn Connectivity) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Language == "" {
		cfg.Language = "zh-Hans"
	}
	return &Client{cfg: cfg, http: &http.Client{}, conn: conn}
}

// Connected reports whether a fetch could be attempted.
func (c *Client) Connected() bool {
	return c.conn == nil || c.conn.Connected()
}

// FetchWeather requests current conditions for location.
func (c *Client) FetchWeather(ctx context.Context, location string) (Report, error) {
	if !c.Connected() {
		return Report{}, ErrOffline
	}

	q := url.Values{}
	q.Set("key", c.cfg.APIKey)
	q.Set("location", location)
	q.Set("language", c.cfg.Language)
	q.Set("unit", "c")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Report{}, fmt.Errorf("build weather request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Report{}, fmt.Errorf("fetch weather: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Report{}, fmt.Errorf("read weather response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if msg, err := jsonparser.GetString(body, "status"); err == nil {
			return Report{}, fmt.Errorf("weather api: %s: %s", resp.Status, msg)
		}
		return Report{}, fmt.Errorf("weather api: %s", resp.Status)
	}

	return Parse(body)
}

// Parse decodes a "weather now" response body.
func Parse(body []byte) (Report, error) {
	if msg, err := jsonparser.GetString(body, "status"); err == nil {
		code, _ := jsonparser.GetString(body, "status_code")
		return Report{}, fmt.Errorf("weather api %s: %s", code, msg)
	}

	temp, err := jsonparser.GetString(body, "results", "[0]", "now", "temperature")
	if err != nil {
		return Report{}, fmt.Errorf("parse temperature: %w", err)
	}
	text, err := jsonparser.GetString(body, "results", "[0]", "now", "text")
	if err != nil {
		return Report{}, fmt.Errorf("parse condition: %w", err)
	}
	city, err := jsonparser.GetString(body, "results", "[0]", "location", "name")
	if err != nil {
		city = ""
	}

	return Report{
		City:        strings.TrimSpace(city),
		Temperature: strings.TrimSpace(temp),
		Condition:   strings.TrimSpace(text),
		Icon:        IconFor(text),
	}, nil
}
