// Package storage issues time-boxed access grants against the document blob
// store.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Presigner mints short-lived download URLs for blob-store keys.
type Presigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// S3Presigner issues presigned GET URLs against a single S3 bucket.
type S3Presigner struct {
	presign *s3.PresignClient
	bucket  string
	logger  *slog.Logger
}

// NewS3Presigner creates an S3Presigner for the given region and bucket.
func NewS3Presigner(ctx context.Context, region, bucket string, logger *slog.Logger) (*S3Presigner, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &S3Presigner{
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
		logger:  logger,
	}, nil
}

// PresignGet returns a URL granting retrieval of one object until ttl lapses.
// The grant is single-purpose and not renewable; callers re-request after
// expiry.
func (p *S3Presigner) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := p.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign object %q: %w", key, err)
	}

	return req.URL, nil
}
