package objstore

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/ssmlcast/internal/platform/logger"
)

// TranscriptKey is <prefix>/transcripts/<YYYY-MM-DD>/<id>.<ext>.
func TranscriptKey(prefix string, at time.Time, id, ext string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		prefix = "podcast"
	}
	return path.Join(prefix, "transcripts", at.UTC().Format("2006-01-02"), id+"."+ext)
}

// Archiver stores each composed document and its plain rendering.
type Archiver struct {
	log   *logger.Logger
	store Store
	now   func() time.Time
}

func NewArchiver(store Store, log *logger.Logger) *Archiver {
	if store == nil {
		store = Nop{}
	}
	a := &Archiver{store: store, now: time.Now}
	if log != nil {
		a.log = log.With("service", "TranscriptArchiver")
	}
	return a
}

// Enabled reports whether writes go anywhere.
func (a *Archiver) Enabled() bool {
	_, nop := a.store.(Nop)
	return !nop
}

// Archive writes both renderings and returns the markup key. An empty id is
// replaced with a random one.
func (a *Archiver) Archive(ctx context.Context, prefix, id, ssml, plain string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	}
	at := a.now()
	ssmlKey := TranscriptKey(prefix, at, id, "ssml")
	if err := a.store.Put(ctx, ssmlKey, []byte(ssml), "application/ssml+xml"); err != nil {
		return "", fmt.Errorf("archive ssml: %w", err)
	}
	if err := a.store.Put(ctx, TranscriptKey(prefix, at, id, "txt"), []byte(plain), "text/plain; charset=utf-8"); err != nil {
		return "", fmt.Errorf("archive plain: %w", err)
	}
	if a.log != nil {
		a.log.Debug("transcript archived", "key", ssmlKey)
	}
	return ssmlKey, nil
}
