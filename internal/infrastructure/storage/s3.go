// Package storage is the object-storage adapter for vendor file uploads.
package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/CampusStoresCanada/csc-institution-management/internal/domain"
	"github.com/CampusStoresCanada/csc-institution-management/internal/infrastructure/metrics"
	"github.com/CampusStoresCanada/csc-institution-management/internal/ports"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// S3Store writes objects to a single public bucket and returns their
// public URLs.
type S3Store struct {
	client *s3.Client
	bucket string
	region string
	logger zerolog.Logger
}

var _ ports.ObjectStore = (*S3Store)(nil)

// NewS3Store creates a store over an S3 client.
func NewS3Store(client *s3.Client, bucket, region string, logger zerolog.Logger) *S3Store {
	return &S3Store{client: client, bucket: bucket, region: region, logger: logger}
}

func (s *S3Store) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	metrics.ObserveUpstream("s3", err)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("S3 upload failed")
		return "", fmt.Errorf("s3 put %s: %w", key, domain.ErrUpstreamUnavailable)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}
