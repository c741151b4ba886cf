package objstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/ssmlcast/internal/platform/logger"
)

type gcsStore struct {
	log    *logger.Logger
	client *storage.Client
	bucket string
}

func NewGCS(ctx context.Context, cfg Config, log *logger.Logger) (Store, error) {
	bucket := strings.TrimSpace(cfg.GCSBucket)
	if bucket == "" {
		return nil, fmt.Errorf("missing GCS_BUCKET")
	}
	var opts []option.ClientOption
	if cfg.Mode == ModeGCSEmulator {
		host := strings.TrimRight(strings.TrimSpace(cfg.GCSEmulatorHost), "/")
		if host == "" {
			return nil, fmt.Errorf("missing STORAGE_EMULATOR_HOST for gcs_emulator mode")
		}
		opts = append(opts, option.WithoutAuthentication(), option.WithEndpoint(host+"/storage/v1/"))
	} else {
		opts = append(credentialOptions(cfg.GCSCredentials), option.WithScopes(storage.ScopeReadWrite))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	s := &gcsStore{client: client, bucket: bucket}
	if log != nil {
		s.log = log.With("service", "GCSStore")
		s.log.Info("object storage initialized", "mode", cfg.Mode, "bucket", bucket)
	}
	return s, nil
}

func credentialOptions(creds string) []option.ClientOption {
	creds = strings.TrimSpace(creds)
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}

func (s *gcsStore) Put(ctx context.Context, key string, body []byte, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, bytes.NewReader(body)); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

func (s *gcsStore) Close() error {
	return s.client.Close()
}
