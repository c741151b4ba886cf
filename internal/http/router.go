package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/ssmlcast/internal/http/handlers"
	httpMW "github.com/yungbote/ssmlcast/internal/http/middleware"
	"github.com/yungbote/ssmlcast/internal/observability"
	"github.com/yungbote/ssmlcast/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	AllowedOrigins []string
	// ServiceName labels server spans. Empty disables otelgin.
	ServiceName string

	HealthHandler  *httpH.HealthHandler
	ComposeHandler *httpH.ComposeHandler
	SegmentHandler *httpH.SegmentHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))
	r.Use(httpMW.Metrics(cfg.Metrics))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/", cfg.HealthHandler.Root)
		r.GET("/health", cfg.HealthHandler.HealthCheck)
	}

	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	// Composition
	if cfg.ComposeHandler != nil {
		compose := r.Group("/compose")
		compose.POST("/ready-for-tts", cfg.ComposeHandler.ReadyForTTS)
		compose.POST("/ready-for-tts/debug", cfg.ComposeHandler.Debug)
	}

	// Segment generation
	if cfg.SegmentHandler != nil {
		r.POST("/intro", cfg.SegmentHandler.Intro)
		r.POST("/main", cfg.SegmentHandler.Main)
		r.POST("/outro", cfg.SegmentHandler.Outro)
		r.POST("/episode", cfg.SegmentHandler.Episode)
	}

	return r
}
