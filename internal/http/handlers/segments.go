package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/ssmlcast/internal/compose"
	"github.com/yungbote/ssmlcast/internal/http/response"
	"github.com/yungbote/ssmlcast/internal/observability"
	"github.com/yungbote/ssmlcast/internal/platform/apierr"
	"github.com/yungbote/ssmlcast/internal/platform/logger"
	"github.com/yungbote/ssmlcast/internal/segments"
	"github.com/yungbote/ssmlcast/internal/ssml"
)

const (
	msgIntroFailed   = "Failed to generate intro"
	msgMainFailed    = "Main generation error"
	msgOutroFailed   = "Outro generation error"
	msgEpisodeFailed = "Episode generation error"
)

type SegmentService interface {
	Intro(ctx context.Context, in segments.IntroInput) (ssml.Document, error)
	Main(ctx context.Context, in segments.MainInput) ([]ssml.Document, error)
	Outro(ctx context.Context, in segments.OutroInput) (ssml.Document, error)
	Episode(ctx context.Context, in segments.EpisodeInput) (ssml.Sections, error)
}

type SegmentHandlerDeps struct {
	Log          *logger.Logger
	Segments     SegmentService
	Composer     *compose.Composer
	Archiver     TranscriptArchiver
	Metrics      *observability.Metrics
	MaxBodyBytes int64
}

type SegmentHandler struct {
	log      *logger.Logger
	segments SegmentService
	composer *compose.Composer
	archiver TranscriptArchiver
	metrics  *observability.Metrics
	maxBody  int64
}

func NewSegmentHandlerWithDeps(deps SegmentHandlerDeps) *SegmentHandler {
	h := &SegmentHandler{
		segments: deps.Segments,
		composer: deps.Composer,
		archiver: deps.Archiver,
		metrics:  deps.Metrics,
		maxBody:  deps.MaxBodyBytes,
	}
	if h.composer == nil {
		h.composer = compose.NewComposer(ssml.DefaultOptions(), compose.DefaultDefaults())
	}
	if deps.Log != nil {
		h.log = deps.Log.With("handler", "SegmentHandler")
	}
	return h
}

type ssmlResponse struct {
	SSML string `json:"ssml"`
}

type chunksResponse struct {
	Chunks []string `json:"chunks"`
}

// POST /intro
func (h *SegmentHandler) Intro(c *gin.Context) {
	var in segments.IntroInput
	if err := bindOptional(c, h.maxBody, &in); err != nil {
		response.RespondError(c, http.StatusBadRequest, msgInvalidInput, err)
		return
	}
	doc, err := h.segments.Intro(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "intro", msgIntroFailed, err)
		return
	}
	response.RespondOK(c, ssmlResponse{SSML: doc.String()})
}

// POST /main
func (h *SegmentHandler) Main(c *gin.Context) {
	var in segments.MainInput
	if err := bindOptional(c, h.maxBody, &in); err != nil {
		response.RespondError(c, http.StatusBadRequest, msgInvalidInput, err)
		return
	}
	docs, err := h.segments.Main(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "main", msgMainFailed, err)
		return
	}
	chunks := make([]string, 0, len(docs))
	for _, d := range docs {
		chunks = append(chunks, d.String())
	}
	response.RespondOK(c, chunksResponse{Chunks: chunks})
}

// POST /outro
func (h *SegmentHandler) Outro(c *gin.Context) {
	var in segments.OutroInput
	if err := bindOptional(c, h.maxBody, &in); err != nil {
		response.RespondError(c, http.StatusBadRequest, msgInvalidInput, err)
		return
	}
	doc, err := h.segments.Outro(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "outro", msgOutroFailed, err)
		return
	}
	response.RespondOK(c, ssmlResponse{SSML: doc.String()})
}

// POST /episode
//
// The body carries per-segment inputs under intro, main and outro plus the
// same voice and storage fields as the composition route.
func (h *SegmentHandler) Episode(c *gin.Context) {
	body, err := readBody(c, h.maxBody)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, msgInvalidInput, err)
		return
	}
	req, err := compose.ParseRequest(body)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, msgInvalidInput, err)
		return
	}
	in, err := episodeInput(req)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, msgInvalidInput, err)
		return
	}

	sections, err := h.segments.Episode(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "episode", msgEpisodeFailed, err)
		return
	}
	resp, err := h.composer.ComposeSections(sections, req)
	if err != nil {
		respondComposeError(c, h.log, h.metrics, err)
		return
	}
	h.metrics.IncComposition("ok")
	archiveTranscript(c, h.log, h.archiver, h.metrics, resp)
	response.RespondOK(c, resp)
}

func episodeInput(req *compose.Request) (segments.EpisodeInput, error) {
	var in segments.EpisodeInput
	for _, part := range []struct {
		raw json.RawMessage
		dst any
	}{
		{req.Intro, &in.Intro},
		{req.Main, &in.Main},
		{req.Outro, &in.Outro},
	} {
		if err := decodeOptional(part.raw, part.dst); err != nil {
			return segments.EpisodeInput{}, err
		}
	}
	return in, nil
}

func (h *SegmentHandler) fail(c *gin.Context, segment, message string, err error) {
	status := apierr.Status(err, http.StatusInternalServerError)
	if h.log != nil {
		h.log.Error("segment generation failed", "segment", segment, "status", status, "error", err)
	}
	response.RespondError(c, status, message, err)
}
