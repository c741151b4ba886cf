package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/ssmlcast/internal/compose"
	"github.com/yungbote/ssmlcast/internal/http/response"
	"github.com/yungbote/ssmlcast/internal/observability"
	"github.com/yungbote/ssmlcast/internal/platform/logger"
	"github.com/yungbote/ssmlcast/internal/ssml"
)

type ComposeHandlerDeps struct {
	Log          *logger.Logger
	Composer     *compose.Composer
	Archiver     TranscriptArchiver
	Metrics      *observability.Metrics
	MaxBodyBytes int64
}

type ComposeHandler struct {
	log      *logger.Logger
	composer *compose.Composer
	archiver TranscriptArchiver
	metrics  *observability.Metrics
	maxBody  int64
}

func NewComposeHandlerWithDeps(deps ComposeHandlerDeps) *ComposeHandler {
	h := &ComposeHandler{
		composer: deps.Composer,
		archiver: deps.Archiver,
		metrics:  deps.Metrics,
		maxBody:  deps.MaxBodyBytes,
	}
	if h.composer == nil {
		h.composer = compose.NewComposer(ssml.DefaultOptions(), compose.DefaultDefaults())
	}
	if deps.Log != nil {
		h.log = deps.Log.With("handler", "ComposeHandler")
	}
	return h
}

// POST /compose/ready-for-tts
func (h *ComposeHandler) ReadyForTTS(c *gin.Context) {
	body, err := readBody(c, h.maxBody)
	if err != nil {
		h.metrics.IncComposition("invalid")
		response.RespondError(c, http.StatusBadRequest, msgInvalidInput, err)
		return
	}
	req, err := compose.ParseRequest(body)
	if err != nil {
		h.metrics.IncComposition("invalid")
		response.RespondError(c, http.StatusBadRequest, msgInvalidInput, err)
		return
	}
	resp, err := h.composer.Compose(req)
	if err != nil {
		respondComposeError(c, h.log, h.metrics, err)
		return
	}
	h.metrics.IncComposition("ok")
	archiveTranscript(c, h.log, h.archiver, h.metrics, resp)
	response.RespondOK(c, resp)
}

// POST /compose/ready-for-tts/debug
func (h *ComposeHandler) Debug(c *gin.Context) {
	req := &compose.Request{}
	if body, err := readBody(c, h.maxBody); err == nil {
		if parsed, err := compose.ParseRequest(body); err == nil {
			req = parsed
		}
	}
	response.RespondOK(c, compose.Types(req))
}

func respondComposeError(c *gin.Context, log *logger.Logger, m *observability.Metrics, err error) {
	var empty *compose.EmptyDocumentError
	if errors.As(err, &empty) {
		m.IncComposition("empty")
		if log != nil {
			log.Warn("nothing to compose", "received", empty.Received)
		}
		response.RespondError(c, http.StatusBadRequest, msgEmptyDoc, empty.Details())
		return
	}
	m.IncComposition("invalid")
	response.RespondError(c, http.StatusBadRequest, msgInvalidInput, err)
}
