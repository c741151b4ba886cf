package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/ssmlcast/internal/compose"
	"github.com/yungbote/ssmlcast/internal/observability"
	"github.com/yungbote/ssmlcast/internal/platform/ctxutil"
	"github.com/yungbote/ssmlcast/internal/platform/logger"
)

const (
	DefaultMaxBodyBytes int64 = 10 << 20

	msgInvalidInput = "Invalid input"
	msgEmptyDoc     = "No content to compose"
)

// TranscriptArchiver stores composed transcripts.
type TranscriptArchiver interface {
	Enabled() bool
	Archive(ctx context.Context, prefix, id, ssml, plain string) (string, error)
}

func readBody(c *gin.Context, limit int64) ([]byte, error) {
	if c.Request.Body == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// bindOptional decodes a JSON object body into v. An empty body leaves v
// unchanged.
func bindOptional(c *gin.Context, limit int64, v any) error {
	body, err := readBody(c, limit)
	if err != nil {
		return err
	}
	return decodeOptional(body, v)
}

func decodeOptional(raw []byte, v any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", compose.ErrInvalidInput, err)
	}
	return nil
}

// archiveTranscript writes a composed response to storage when archiving is
// enabled. Failures are logged and counted, never returned.
func archiveTranscript(c *gin.Context, log *logger.Logger, a TranscriptArchiver, m *observability.Metrics, resp *compose.Response) {
	if a == nil || !a.Enabled() || resp == nil {
		return
	}
	ctx := c.Request.Context()
	key, err := a.Archive(ctx, resp.TTSMaker.Body.R2Prefix, ctxutil.RequestID(ctx), resp.Transcript.SSML, resp.Transcript.Plain)
	m.IncArchive(err)
	if log == nil {
		return
	}
	if err != nil {
		log.Warn("transcript archive failed", "error", err)
		return
	}
	log.Info("transcript archived", "key", key)
}
