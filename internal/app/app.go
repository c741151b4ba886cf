package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/ssmlcast/internal/compose"
	"github.com/yungbote/ssmlcast/internal/config"
	httpserver "github.com/yungbote/ssmlcast/internal/http"
	httpH "github.com/yungbote/ssmlcast/internal/http/handlers"
	"github.com/yungbote/ssmlcast/internal/observability"
	"github.com/yungbote/ssmlcast/internal/platform/logger"
	"github.com/yungbote/ssmlcast/internal/segments"
)

type App struct {
	Log      *logger.Logger
	Config   *config.Config
	Clients  Clients
	Metrics  *observability.Metrics
	Composer *compose.Composer
	Segments *segments.Service

	server        *httpserver.Server
	traceShutdown func(context.Context) error
}

// New builds every collaborator once and hands them to the handlers.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log, err := logger.NewWithOptions(cfg.LoggerOptions())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if cfg.Log.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	traceShutdown := observability.InitOTel(ctx, log, cfg.Tracing())

	clients, err := wireClients(ctx, cfg, log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics()
	}

	composer := NewComposer(cfg)

	var weatherSrc segments.WeatherSource
	if clients.Weather != nil {
		weatherSrc = clients.Weather
	}
	svc := segments.New(log, clients.LLM, weatherSrc, clients.Feed, clients.Catalog, segments.Config{
		FeedURL:  cfg.Feed.URL,
		MaxItems: cfg.Feed.MaxItems,
		Days:     cfg.Feed.Days,
	})
	if metrics != nil {
		svc.WithObserver(metrics)
	}

	serviceName := ""
	if cfg.OTel.Enabled {
		serviceName = cfg.OTel.ServiceName
	}
	server := httpserver.NewServer(httpserver.ServerConfig{
		Addr:              cfg.Addr(),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}, httpserver.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		ServiceName:    serviceName,
		HealthHandler:  httpH.NewHealthHandler(),
		ComposeHandler: httpH.NewComposeHandlerWithDeps(httpH.ComposeHandlerDeps{
			Log:          log,
			Composer:     composer,
			Archiver:     clients.Archiver,
			Metrics:      metrics,
			MaxBodyBytes: cfg.HTTP.MaxRequestBytes,
		}),
		SegmentHandler: httpH.NewSegmentHandlerWithDeps(httpH.SegmentHandlerDeps{
			Log:          log,
			Segments:     svc,
			Composer:     composer,
			Archiver:     clients.Archiver,
			Metrics:      metrics,
			MaxBodyBytes: cfg.HTTP.MaxRequestBytes,
		}),
	})

	return &App{
		Log:           log,
		Config:        cfg,
		Clients:       clients,
		Metrics:       metrics,
		Composer:      composer,
		Segments:      svc,
		server:        server,
		traceShutdown: traceShutdown,
	}, nil
}

// NewComposer builds the composer from pause and storage settings alone, so
// offline composition needs no network clients.
func NewComposer(cfg *config.Config) *compose.Composer {
	defaults := compose.DefaultDefaults()
	defaults.R2Prefix = cfg.R2Prefix
	return compose.NewComposer(cfg.SSMLOptions(), defaults)
}

// Run serves until ctx is cancelled, then drains in-flight requests within
// the shutdown timeout.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("HTTP server listening", "addr", a.Config.Addr())
		errCh <- a.server.Run()
	}()

	select {
	case <-ctx.Done():
		a.Log.Info("Shutting down", "timeout", a.Config.HTTP.ShutdownTimeout.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.HTTP.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.Log.Warn("HTTP shutdown incomplete", "error", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close(a.Log)
	if a.traceShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.Config.HTTP.ShutdownTimeout)
		defer cancel()
		if err := a.traceShutdown(ctx); err != nil {
			a.Log.Warn("trace provider shutdown failed", "error", err)
		}
	}
	a.Log.Sync()
}

// Handler exposes the router for tests.
func (a *App) Handler() *gin.Engine {
	return a.server.Engine
}
