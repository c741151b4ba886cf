package feed

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/ssmlcast/internal/platform/logger"
)

const (
	DefaultMaxItems = 5
	DefaultDays     = 7

	userAgent    = "ssmlcast/1.0"
	acceptHeader = "application/rss+xml, application/atom+xml, application/xml, text/xml"
)

// Item is a recent feed entry ready to be rewritten into a segment.
type Item struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Date    string `json:"date"`
}

type Options struct {
	MaxItems int
	// Days is the recency window; zero or less disables it.
	Days int
}

type Client struct {
	log  *logger.Logger
	http *http.Client
	now  func() time.Time
}

func New(timeout time.Duration, log *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{http: &http.Client{Timeout: timeout}, now: time.Now}
	if log != nil {
		c.log = log.With("service", "FeedClient")
	}
	return c
}

// Recent fetches url and returns at most MaxItems entries published within
// the last Days days, in feed order. Entries with unparseable dates are
// skipped when a window applies.
func (c *Client) Recent(ctx context.Context, url string, opts Options) ([]Item, error) {
	items, err := c.fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	out := filter(items, opts, c.now(), c.log)
	if len(out) == 0 && c.log != nil {
		c.log.Warn("no recent feed items within timeframe", "url", url, "days", opts.Days)
	}
	return out, nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]rawItem, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("feed url is required")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	var r io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}
	body, err := io.ReadAll(io.LimitReader(r, 10<<20))
	if err != nil {
		return nil, err
	}
	return parse(body)
}

// filter applies the recency window and item cap.
func filter(items []rawItem, opts Options, now time.Time, log *logger.Logger) []Item {
	if opts.MaxItems <= 0 {
		opts.MaxItems = DefaultMaxItems
	}
	var cutoff time.Time
	if opts.Days > 0 {
		cutoff = now.AddDate(0, 0, -opts.Days)
	}

	out := make([]Item, 0, opts.MaxItems)
	for _, it := range items {
		if len(out) >= opts.MaxItems {
			break
		}
		if !cutoff.IsZero() {
			ts, ok := ParseDate(it.Date)
			if !ok {
				if log != nil {
					log.Warn("failed to parse date for feed item", "title", it.Title, "date", it.Date)
				}
				continue
			}
			if ts.Before(cutoff) {
				continue
			}
		}
		out = append(out, Item{
			Title:   orDefault(it.Title, "Untitled"),
			Summary: it.Summary,
			Date:    orDefault(it.Date, "Unknown date"),
		})
	}
	return out
}

var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	time.RFC3339Nano,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
	"Mon, 02 Jan 2006 15:04 -0700",
	time.RFC822Z,
	time.RFC822,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate accepts the date formats seen in RSS and Atom feeds.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
