package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"

	"github.com/yungbote/ssmlcast/internal/clients/llm"
	"github.com/yungbote/ssmlcast/internal/observability"
	"github.com/yungbote/ssmlcast/internal/platform/logger"
	"github.com/yungbote/ssmlcast/internal/platform/objstore"
	"github.com/yungbote/ssmlcast/internal/ssml"
)

type Config struct {
	HTTP    HTTPConfig
	Log     LogConfig
	LLM     LLMConfig
	Weather WeatherConfig
	Feed    FeedConfig
	Storage StorageConfig
	OTel    OTelConfig

	CatalogPath    string `env:"CATALOG_PATH"`
	RedisAddr      string `env:"REDIS_ADDR"`
	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	PauseSectionMS int    `env:"PAUSE_SECTION_MS" envDefault:"700"`
	PauseChunkMS   int    `env:"PAUSE_CHUNK_MS" envDefault:"700"`
	// R2Prefix is the default storage prefix echoed in tts_maker.
	R2Prefix string `env:"R2_PREFIX" envDefault:"podcast"`
}

type HTTPConfig struct {
	Port              int           `env:"PORT" envDefault:"8080"`
	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"5s"`
	IdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"2m"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	MaxRequestBytes   int64         `env:"HTTP_MAX_REQUEST_BYTES" envDefault:"10485760"`
	// AllowedOrigins of "*" allows every origin.
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

type LogConfig struct {
	Mode       string `env:"LOG_MODE" envDefault:"production"`
	Level      string `env:"LOG_LEVEL"`
	File       string `env:"LOG_FILE"`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"100"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	MaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"28"`
	Redact     bool   `env:"LOG_REDACTION_ENABLED" envDefault:"true"`
}

type LLMConfig struct {
	Provider string `env:"LLM_PROVIDER"`
	APIKey   string `env:"OPENAI_API_KEY"`
	BaseURL  string `env:"OPENAI_BASE_URL"`
	Model    string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
}

type WeatherConfig struct {
	Host     string        `env:"RAPIDAPI_HOST"`
	APIKey   string        `env:"RAPIDAPI_KEY"`
	BaseURL  string        `env:"WEATHER_BASE_URL"`
	Location string        `env:"WEATHER_LOCATION" envDefault:"UK"`
	CacheTTL time.Duration `env:"WEATHER_CACHE_TTL" envDefault:"24h"`
	Timeout  time.Duration `env:"WEATHER_TIMEOUT" envDefault:"10s"`
}

type FeedConfig struct {
	URL      string        `env:"FEED_URL"`
	MaxItems int           `env:"FEED_MAX_ITEMS" envDefault:"5"`
	Days     int           `env:"FEED_DAYS" envDefault:"7"`
	Timeout  time.Duration `env:"FEED_TIMEOUT" envDefault:"15s"`
}

type StorageConfig struct {
	Mode              string `env:"STORAGE_MODE" envDefault:"none"`
	GCSBucket         string `env:"GCS_BUCKET"`
	GCSEmulatorHost   string `env:"STORAGE_EMULATOR_HOST"`
	GCSCredentials    string `env:"GCS_CREDENTIALS"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3Region          string `env:"S3_REGION" envDefault:"auto"`
	S3Bucket          string `env:"S3_BUCKET"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
}

type OTelConfig struct {
	Enabled     bool    `env:"OTEL_ENABLED"`
	ServiceName string  `env:"OTEL_SERVICE_NAME" envDefault:"ssmlcast"`
	Environment string  `env:"OTEL_ENVIRONMENT"`
	Version     string  `env:"APP_VERSION"`
	Endpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Headers     string  `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	Insecure    bool    `env:"OTEL_EXPORTER_OTLP_INSECURE"`
	SampleRatio float64 `env:"OTEL_SAMPLER_RATIO" envDefault:"1"`
}

// Load reads an optional .env file from the working directory and then the
// process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return parse(env.Options{})
}

// FromMap parses vars instead of the process environment.
func FromMap(vars map[string]string) (*Config, error) {
	if vars == nil {
		vars = map[string]string{}
	}
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.HTTP.Port))
	}
	if c.PauseSectionMS < 0 {
		result = multierror.Append(result, fmt.Errorf("PAUSE_SECTION_MS must not be negative"))
	}
	if c.PauseChunkMS < 0 {
		result = multierror.Append(result, fmt.Errorf("PAUSE_CHUNK_MS must not be negative"))
	}
	if c.Feed.MaxItems <= 0 {
		result = multierror.Append(result, fmt.Errorf("FEED_MAX_ITEMS must be positive"))
	}
	if c.Feed.Days < 0 {
		result = multierror.Append(result, fmt.Errorf("FEED_DAYS must not be negative"))
	}

	switch p := strings.ToLower(strings.TrimSpace(c.LLM.Provider)); p {
	case "", "mock":
	case "openai":
		if strings.TrimSpace(c.LLM.APIKey) == "" {
			result = multierror.Append(result, errors.New("OPENAI_API_KEY is required when LLM_PROVIDER=openai"))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("LLM_PROVIDER %q is not supported", c.LLM.Provider))
	}

	if (c.Weather.Host == "") != (c.Weather.APIKey == "") {
		result = multierror.Append(result, errors.New("RAPIDAPI_HOST and RAPIDAPI_KEY must be set together"))
	}

	mode, err := objstore.ParseMode(c.Storage.Mode)
	if err != nil {
		result = multierror.Append(result, err)
	}
	switch mode {
	case objstore.ModeGCS, objstore.ModeGCSEmulator:
		if c.Storage.GCSBucket == "" {
			result = multierror.Append(result, fmt.Errorf("GCS_BUCKET is required for STORAGE_MODE=%s", mode))
		}
		if mode == objstore.ModeGCSEmulator && c.Storage.GCSEmulatorHost == "" {
			result = multierror.Append(result, errors.New("STORAGE_EMULATOR_HOST is required for STORAGE_MODE=gcs_emulator"))
		}
	case objstore.ModeS3:
		for name, v := range map[string]string{
			"S3_BUCKET":            c.Storage.S3Bucket,
			"S3_ACCESS_KEY_ID":     c.Storage.S3AccessKeyID,
			"S3_SECRET_ACCESS_KEY": c.Storage.S3SecretAccessKey,
		} {
			if strings.TrimSpace(v) == "" {
				result = multierror.Append(result, fmt.Errorf("%s is required for STORAGE_MODE=s3", name))
			}
		}
	}

	return result.ErrorOrNil()
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTP.Port)
}

func (c *Config) LoggerOptions() logger.Options {
	redact := c.Log.Redact
	return logger.Options{
		Mode:       c.Log.Mode,
		Level:      c.Log.Level,
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAgeDays: c.Log.MaxAgeDays,
		Redact:     &redact,
	}
}

func (c *Config) LLMSettings() llm.Settings {
	return llm.Settings{
		Provider: c.LLM.Provider,
		Model:    c.LLM.Model,
		APIKey:   c.LLM.APIKey,
		BaseURL:  c.LLM.BaseURL,
	}
}

func (c *Config) ObjectStore() objstore.Config {
	mode, _ := objstore.ParseMode(c.Storage.Mode)
	return objstore.Config{
		Mode:              mode,
		GCSBucket:         c.Storage.GCSBucket,
		GCSEmulatorHost:   c.Storage.GCSEmulatorHost,
		GCSCredentials:    c.Storage.GCSCredentials,
		S3Endpoint:        c.Storage.S3Endpoint,
		S3Region:          c.Storage.S3Region,
		S3Bucket:          c.Storage.S3Bucket,
		S3AccessKeyID:     c.Storage.S3AccessKeyID,
		S3SecretAccessKey: c.Storage.S3SecretAccessKey,
	}
}

func (c *Config) Tracing() observability.OtelConfig {
	environment := c.OTel.Environment
	if environment == "" {
		environment = c.Log.Mode
	}
	return observability.OtelConfig{
		Enabled:     c.OTel.Enabled,
		ServiceName: c.OTel.ServiceName,
		Environment: environment,
		Version:     c.OTel.Version,
		Endpoint:    c.OTel.Endpoint,
		Headers:     c.OTel.Headers,
		Insecure:    c.OTel.Insecure,
		SampleRatio: c.OTel.SampleRatio,
	}
}

func (c *Config) SSMLOptions() ssml.Options {
	return ssml.Options{
		SectionPause: time.Duration(c.PauseSectionMS) * time.Millisecond,
		ChunkPause:   time.Duration(c.PauseChunkMS) * time.Millisecond,
	}
}
