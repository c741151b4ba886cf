package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/yungbote/ssmlcast/internal/platform/logger"
)

const (
	DefaultLocation = "UK"
	DateLayout      = "2006-01-02"
)

var ErrMissingDay = errors.New("weather response missing day data")

// StatusError is returned for non-2xx answers from the weather API.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("weather api %d: %s", e.Status, e.Body)
}

func (e *StatusError) HTTPStatusCode() int { return e.Status }

// Cache stores summaries by key. Past days never change, so entries can
// live for a long time.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type Config struct {
	Host     string
	APIKey   string
	Location string
	// BaseURL overrides https://<Host>.
	BaseURL  string
	CacheTTL time.Duration
	Timeout  time.Duration
}

type Client struct {
	log     *logger.Logger
	cfg     Config
	baseURL string
	http    *http.Client
	cache   Cache
}

func New(cfg Config, cache Cache, log *logger.Logger) (*Client, error) {
	cfg.Host = strings.TrimSpace(cfg.Host)
	if cfg.Host == "" {
		return nil, fmt.Errorf("missing RAPIDAPI_HOST")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing RAPIDAPI_KEY")
	}
	if cfg.Location == "" {
		cfg.Location = DefaultLocation
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://" + cfg.Host
	}
	c := &Client{
		cfg:     cfg,
		baseURL: base,
		http:    &http.Client{Timeout: cfg.Timeout},
		cache:   cache,
	}
	if log != nil {
		c.log = log.With("service", "WeatherClient")
	}
	return c, nil
}

// Summary describes the weather on date (YYYY-MM-DD) in one sentence.
func (c *Client) Summary(ctx context.Context, date string) (string, error) {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	key := "weather:" + strings.ToLower(c.cfg.Location) + ":" + date
	if c.cache != nil {
		if v, ok, err := c.cache.Get(ctx, key); err != nil {
			c.warn("weather cache read failed", "key", key, "error", err)
		} else if ok {
			return v, nil
		}
	}

	body, err := c.history(ctx, date)
	if err != nil {
		return "", err
	}
	summary, err := Summarize(body)
	if err != nil {
		return "", err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, summary, c.cfg.CacheTTL); err != nil {
			c.warn("weather cache write failed", "key", key, "error", err)
		}
	}
	return summary, nil
}

func (c *Client) history(ctx context.Context, date string) ([]byte, error) {
	q := url.Values{}
	q.Set("q", c.cfg.Location)
	q.Set("dt", date)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/history.json?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-rapidapi-host", c.cfg.Host)
	req.Header.Set("x-rapidapi-key", c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("weather read: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}

// Summarize turns a history.json body into the one-line summary.
func Summarize(body []byte) (string, error) {
	day := gjson.GetBytes(body, "forecast.forecastday.0.day")
	if !day.Exists() || !day.IsObject() {
		return "", ErrMissingDay
	}
	condition := strings.ToLower(strings.TrimSpace(day.Get("condition.text").String()))
	if condition == "" {
		condition = "no notable conditions"
	}
	return fmt.Sprintf("Max temp was %s°C, min was %s°C, with %s.",
		day.Get("maxtemp_c").String(),
		day.Get("mintemp_c").String(),
		condition,
	), nil
}

func (c *Client) warn(msg string, kv ...interface{}) {
	if c.log != nil {
		c.log.Warn(msg, kv...)
	}
}
