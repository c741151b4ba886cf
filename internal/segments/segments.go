package segments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/kaptinlin/jsonrepair"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/ssmlcast/internal/clients/feed"
	"github.com/yungbote/ssmlcast/internal/clients/llm"
	"github.com/yungbote/ssmlcast/internal/content"
	"github.com/yungbote/ssmlcast/internal/observability"
	"github.com/yungbote/ssmlcast/internal/platform/apierr"
	"github.com/yungbote/ssmlcast/internal/platform/logger"
	"github.com/yungbote/ssmlcast/internal/ssml"
)

const (
	introTemperature = 0.7
	mainTemperature  = 0.8
	outroTemperature = 0.8

	sponsorPause = 400 * time.Millisecond
	dateLayout   = "2006-01-02"
)

var ErrNoRecentItems = errors.New("no recent feed items")

type WeatherSource interface {
	Summary(ctx context.Context, date string) (string, error)
}

type FeedSource interface {
	Recent(ctx context.Context, url string, opts feed.Options) ([]feed.Item, error)
}

// Observer receives the outcome of every model call.
type Observer interface {
	ObserveLLM(segment string, err error, dur time.Duration)
}

type Config struct {
	FeedURL  string
	MaxItems int
	Days     int
}

// Service generates the intro, main and outro segments of an episode.
type Service struct {
	log     *logger.Logger
	llm     llm.Client
	weather WeatherSource
	feed    FeedSource
	catalog *content.Catalog
	cfg     Config
	obs     Observer
	now     func() time.Time
}

// New wires the collaborators. weather may be nil, in which case intros are
// written without a weather line.
func New(log *logger.Logger, model llm.Client, weather WeatherSource, feeds FeedSource, catalog *content.Catalog, cfg Config) *Service {
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = feed.DefaultMaxItems
	}
	if cfg.Days <= 0 {
		cfg.Days = feed.DefaultDays
	}
	s := &Service{
		llm:     model,
		weather: weather,
		feed:    feeds,
		catalog: catalog,
		cfg:     cfg,
		now:     time.Now,
	}
	if log != nil {
		s.log = log.With("service", "SegmentService")
	}
	return s
}

// WithObserver sets the model call observer.
func (s *Service) WithObserver(obs Observer) *Service {
	s.obs = obs
	return s
}

func (s *Service) complete(ctx context.Context, segment string, p llm.Prompt) (string, error) {
	ctx, span := otel.Tracer(observability.TracerName).Start(ctx, "segments.complete",
		trace.WithAttributes(attribute.String("segment", segment)))
	defer span.End()

	start := time.Now()
	out, err := s.llm.Complete(ctx, p)
	if s.obs != nil {
		s.obs.ObserveLLM(segment, err, time.Since(start))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		return "", fmt.Errorf("%s completion: %w", segment, err)
	}
	return out, nil
}

type IntroInput struct {
	Date   string `json:"date"`
	Prompt string `json:"prompt"`
}

func (s *Service) Intro(ctx context.Context, in IntroInput) (ssml.Document, error) {
	date := strings.TrimSpace(in.Date)
	if date == "" {
		date = s.now().UTC().Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, date); err != nil {
		return ssml.Document{}, apierr.New(http.StatusBadRequest, "invalid_date", fmt.Errorf("date must be YYYY-MM-DD: %w", err))
	}

	summary := weatherUnavailable
	if s.weather != nil {
		v, err := s.weather.Summary(ctx, date)
		if err != nil {
			return ssml.Document{}, fmt.Errorf("weather summary: %w", err)
		}
		summary = v
	} else {
		s.warn("intro without weather source", "date", date)
	}
	quote := s.catalog.Quote()

	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		prompt = defaultIntroPrompt
	}
	prompt = strings.NewReplacer("{{weather_summary}}", summary, "{{quote}}", quote).Replace(prompt)

	out, err := s.complete(ctx, "intro", llm.Prompt{
		System:      introSystemPrompt,
		User:        prompt + introRules,
		Temperature: llm.Float(introTemperature),
	})
	if err != nil {
		return ssml.Document{}, err
	}
	return ssml.Wrap(stripFences(out)), nil
}

type MainInput struct {
	FeedURL     string   `json:"feedUrl"`
	MaxItems    int      `json:"maxItems"`
	Days        int      `json:"days"`
	Prompt      string   `json:"prompt"`
	Temperature *float64 `json:"temperature"`
}

// Main rewrites recent feed items into one document per story.
func (s *Service) Main(ctx context.Context, in MainInput) ([]ssml.Document, error) {
	url := strings.TrimSpace(in.FeedURL)
	if url == "" {
		url = s.cfg.FeedURL
	}
	if url == "" {
		return nil, apierr.New(http.StatusBadRequest, "missing_feed_url", errors.New("feedUrl is required"))
	}
	opts := feed.Options{MaxItems: in.MaxItems, Days: in.Days}
	if opts.MaxItems <= 0 {
		opts.MaxItems = s.cfg.MaxItems
	}
	if opts.Days <= 0 {
		opts.Days = s.cfg.Days
	}

	items, err := s.feed.Recent(ctx, url, opts)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apierr.New(http.StatusNotFound, "no_recent_items", ErrNoRecentItems)
	}

	stories := make([]string, 0, len(items))
	for _, it := range items {
		story := it.Title
		if it.Summary != "" {
			story += ": " + it.Summary
		}
		stories = append(stories, story+" ("+it.Date+")")
	}

	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		prompt = defaultMainPrompt
	}
	temp := mainTemperature
	if in.Temperature != nil {
		temp = *in.Temperature
	}
	out, err := s.complete(ctx, "main", llm.Prompt{
		User:        prompt + mainRules + "\n\nItems:\n- " + strings.Join(stories, "\n- "),
		Temperature: llm.Float(temp),
	})
	if err != nil {
		return nil, err
	}
	return splitChunks(out), nil
}

type OutroInput struct {
	Prompt string `json:"prompt"`
}

// Outro writes the sign-off and guarantees the sponsor line is spoken.
func (s *Service) Outro(ctx context.Context, in OutroInput) (ssml.Document, error) {
	sponsor := s.catalog.Book().SponsorLine()
	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		prompt = defaultOutroPrompt
	}
	out, err := s.complete(ctx, "outro", llm.Prompt{
		User:        prompt + outroRules(sponsor),
		Temperature: llm.Float(outroTemperature),
	})
	if err != nil {
		return ssml.Document{}, err
	}
	doc := ssml.Wrap(unwrapJSON(stripFences(out)))
	return ssml.EnsureLeadingLine(doc, sponsor, sponsorPause), nil
}

type EpisodeInput struct {
	Intro IntroInput `json:"intro"`
	Main  MainInput  `json:"main"`
	Outro OutroInput `json:"outro"`
}

// Episode generates all three segments concurrently. A feed with no recent
// items leaves the main section empty instead of failing the episode.
func (s *Service) Episode(ctx context.Context, in EpisodeInput) (ssml.Sections, error) {
	var (
		intro ssml.Document
		main  []ssml.Document
		outro ssml.Document
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		intro, err = s.Intro(gctx, in.Intro)
		return err
	})
	g.Go(func() error {
		var err error
		main, err = s.Main(gctx, in.Main)
		if errors.Is(err, ErrNoRecentItems) {
			s.warn("episode without main section", "error", err)
			return nil
		}
		return err
	})
	g.Go(func() error {
		var err error
		outro, err = s.Outro(gctx, in.Outro)
		return err
	})
	if err := g.Wait(); err != nil {
		return ssml.Sections{}, err
	}

	sections := ssml.Sections{
		Intro: []string{intro.String()},
		Outro: []string{outro.String()},
	}
	for _, d := range main {
		sections.Main = append(sections.Main, d.String())
	}
	return sections, nil
}

// splitChunks turns model output into one document per non-empty line.
func splitChunks(out string) []ssml.Document {
	lines := strings.FieldsFunc(out, func(r rune) bool { return r == '\n' || r == '\r' })
	docs := make([]ssml.Document, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}
		if d := ssml.Wrap(line); !d.Empty() {
			docs = append(docs, d)
		}
	}
	return docs
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "```") {
			continue
		}
		kept = append(kept, l)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// unwrapJSON extracts the markup when a model answers with a JSON object
// instead of bare markup.
func unwrapJSON(s string) string {
	if !strings.HasPrefix(strings.TrimSpace(s), "{") {
		return s
	}
	var parsed struct {
		SSML  string `json:"ssml"`
		Outro string `json:"outro"`
		Data  string `json:"data"`
	}
	if err := parseJSON(s, &parsed); err != nil {
		return s
	}
	for _, v := range []string{parsed.SSML, parsed.Outro, parsed.Data} {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return s
}

func parseJSON(s string, v any) error {
	err := jsoniter.UnmarshalFromString(s, v)
	if err == nil {
		return nil
	}
	repaired, rerr := jsonrepair.JSONRepair(s)
	if rerr != nil {
		return err
	}
	if jsoniter.UnmarshalFromString(repaired, v) == nil {
		return nil
	}
	return err
}

func (s *Service) warn(msg string, kv ...interface{}) {
	if s.log != nil {
		s.log.Warn(msg, kv...)
	}
}
