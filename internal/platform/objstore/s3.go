package objstore

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/yungbote/ssmlcast/internal/platform/logger"
)

// s3Store talks to S3 or an S3-compatible service such as R2 or MinIO.
type s3Store struct {
	log    *logger.Logger
	client *s3.Client
	bucket string
}

func NewS3(cfg Config, log *logger.Logger) (Store, error) {
	if cfg.S3AccessKeyID == "" || cfg.S3SecretAccessKey == "" {
		return nil, fmt.Errorf("S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY are required")
	}
	bucket := strings.TrimSpace(cfg.S3Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("missing S3_BUCKET")
	}
	region := strings.TrimSpace(cfg.S3Region)
	if region == "" {
		region = "auto"
	}
	opts := s3.Options{
		Region:           region,
		Credentials:      credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		UsePathStyle:     true,
		RetryMaxAttempts: 2,
	}
	if endpoint := strings.TrimRight(strings.TrimSpace(cfg.S3Endpoint), "/"); endpoint != "" {
		endpoint = strings.TrimSuffix(endpoint, "/"+bucket)
		opts.BaseEndpoint = aws.String(endpoint)
	}
	s := &s3Store{client: s3.New(opts), bucket: bucket}
	if log != nil {
		s.log = log.With("service", "S3Store")
		s.log.Info("object storage initialized", "mode", ModeS3, "bucket", bucket, "endpoint", cfg.S3Endpoint)
	}
	return s, nil
}

func (s *s3Store) Put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

func (s *s3Store) Close() error { return nil }
