// Package storage archives raw marketplace export artifacts in S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/integration"
	infraconfig "github.com/wms/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const keyTimeLayout = "20060102T150405Z"

// S3ArtifactArchive implements integration.ArtifactArchive using AWS S3 SDK v2.
// It is compatible with any S3-compatible storage (AWS S3, MinIO, etc.)
type S3ArtifactArchive struct {
	client *s3.Client
	bucket string
	prefix string
	now    func() time.Time
	logger *zap.Logger
}

// S3ArtifactArchiveOption is a functional option for configuring S3ArtifactArchive
type S3ArtifactArchiveOption func(*S3ArtifactArchive)

// WithLogger sets a custom logger for S3ArtifactArchive
func WithLogger(logger *zap.Logger) S3ArtifactArchiveOption {
	return func(s *S3ArtifactArchive) {
		s.logger = logger
	}
}

// WithClock replaces the time source used to build object keys
func WithClock(now func() time.Time) S3ArtifactArchiveOption {
	return func(s *S3ArtifactArchive) {
		s.now = now
	}
}

// NewS3ArtifactArchive creates an archive from configuration. Without static
// credentials the default AWS credential chain is used.
func NewS3ArtifactArchive(ctx context.Context, cfg *infraconfig.StorageConfig, opts ...S3ArtifactArchiveOption) (*S3ArtifactArchive, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if (cfg.AccessKeyID == "") != (cfg.SecretAccessKey == "") {
		return nil, errors.New("storage access key id and secret access key must be set together")
	}

	region := cfg.Region
	if region == "" {
		region = "eu-west-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	archive := &S3ArtifactArchive{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(archive)
	}
	return archive, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (s *S3ArtifactArchive) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating archive bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Archive uploads one raw export artifact and returns its object key:
// <prefix>/<platform>/<tenant>/<client>/<UTC timestamp>.csv
func (s *S3ArtifactArchive) Archive(ctx context.Context, tenantID, clientID uuid.UUID, platform integration.PlatformCode, data []byte) (string, error) {
	key := s.objectKey(tenantID, clientID, platform)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive export artifact: %w", err)
	}

	s.logger.Debug("Archived export artifact",
		zap.String("bucket", s.bucket),
		zap.String("key", key),
		zap.Int("bytes", len(data)),
	)
	return key, nil
}

// GetBucket returns the bucket name
func (s *S3ArtifactArchive) GetBucket() string {
	return s.bucket
}

func (s *S3ArtifactArchive) objectKey(tenantID, clientID uuid.UUID, platform integration.PlatformCode) string {
	return path.Join(
		s.prefix,
		strings.ToLower(platform.String()),
		tenantID.String(),
		clientID.String(),
		s.now().UTC().Format(keyTimeLayout)+".csv",
	)
}

var _ integration.ArtifactArchive = (*S3ArtifactArchive)(nil)
