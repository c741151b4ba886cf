package objstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/ssmlcast/internal/platform/logger"
)

type Mode string

const (
	ModeNone        Mode = "none"
	ModeGCS         Mode = "gcs"
	ModeGCSEmulator Mode = "gcs_emulator"
	ModeS3          Mode = "s3"
)

// Store writes whole objects by key.
type Store interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Close() error
}

type Config struct {
	Mode Mode

	GCSBucket       string
	GCSEmulatorHost string
	// GCSCredentials is a credentials file path or inline JSON.
	GCSCredentials  string

	S3Endpoint        string
	S3Region          string
	S3Bucket          string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

func ParseMode(raw string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(raw))); m {
	case "", ModeNone:
		return ModeNone, nil
	case ModeGCS, ModeGCSEmulator, ModeS3:
		return m, nil
	default:
		return "", fmt.Errorf("unsupported storage mode %q (want none, gcs, gcs_emulator or s3)", raw)
	}
}

// New builds the store for cfg.Mode. ModeNone yields a store that discards
// writes.
func New(ctx context.Context, cfg Config, log *logger.Logger) (Store, error) {
	switch cfg.Mode {
	case "", ModeNone:
		return Nop{}, nil
	case ModeGCS, ModeGCSEmulator:
		return NewGCS(ctx, cfg, log)
	case ModeS3:
		return NewS3(cfg, log)
	default:
		return nil, fmt.Errorf("unsupported storage mode %q", cfg.Mode)
	}
}

// Nop discards every write.
type Nop struct{}

func (Nop) Put(context.Context, string, []byte, string) error { return nil }
func (Nop) Close() error { return nil }
