package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// s3Storage implements ObjectStorage against AWS S3.
type s3Storage struct {
	client  *s3.Client
	bucket  string
	region  string
	baseURL string
	logger  zerolog.Logger
}

// NewS3Storage creates a new S3-backed object storage client for the
// product image bucket. publicBaseURL, when non-empty, overrides the
// derived URL prefix for S3-compatible providers.
func NewS3Storage(ctx context.Context, region, publicBaseURL string, logger zerolog.Logger) (ObjectStorage, error) {
	logger = logger.With().Str("component", "s3-storage").Logger()

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := s3.NewFromConfig(cfg)

	logger.Info().
		Str("bucket", Bucket).
		Str("region", region).
		Msg("S3 storage initialised")

	return &s3Storage{
		client:  client,
		bucket:  Bucket,
		region:  region,
		baseURL: publicBaseURL,
		logger:  logger,
	}, nil
}

// Upload stores an object in the bucket. When overwrite is false the
// put is conditional on the key not existing, so a colliding key fails
// instead of replacing the existing object.
func (s *s3Storage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string, overwrite bool) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	}
	if !overwrite {
		input.IfNoneMatch = aws.String("*")
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", key).
			Msg("failed to put object")
		return fmt.Errorf("failed to put object (bucket=%s, key=%s): %w", s.bucket, key, err)
	}

	s.logger.Info().
		Str("bucket", s.bucket).
		Str("key", key).
		Int64("size", size).
		Msg("object uploaded")

	return nil
}

// Delete removes an object from the bucket.
func (s *s3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", key).
			Msg("failed to delete object")
		return fmt.Errorf("failed to delete object (bucket=%s, key=%s): %w", s.bucket, key, err)
	}

	s.logger.Info().
		Str("bucket", s.bucket).
		Str("key", key).
		Msg("object deleted")

	return nil
}

// PublicURL resolves the public URL for a stored object.
func (s *s3Storage) PublicURL(key string) (string, error) {
	return objectURL(s.baseURL, s.bucket, s.region, key)
}

// objectURL builds the public URL from either a configured base URL or
// the bucket's virtual-hosted AWS address.
func objectURL(baseURL, bucket, region, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("object key is empty")
	}
	if baseURL != "" {
		return strings.TrimRight(baseURL, "/") + "/" + key, nil
	}
	if region == "" {
		return "", fmt.Errorf("cannot resolve public URL: no base URL or region configured")
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, key), nil
}
