package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/integration"
	infraconfig "github.com/wms/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// DisabledArchive is used when no bucket is configured. It stores nothing.
type DisabledArchive struct{}

// Archive returns an empty key and no error.
func (DisabledArchive) Archive(context.Context, uuid.UUID, uuid.UUID, integration.PlatformCode, []byte) (string, error) {
	return "", nil
}

// NewArtifactArchive returns the S3 archive when a bucket is configured and
// DisabledArchive otherwise.
func NewArtifactArchive(ctx context.Context, cfg *infraconfig.StorageConfig, logger *zap.Logger) (integration.ArtifactArchive, error) {
	if !cfg.ArchiveEnabled() {
		logger.Info("Export archive disabled, no storage bucket configured")
		return DisabledArchive{}, nil
	}

	archive, err := NewS3ArtifactArchive(ctx, cfg, WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := archive.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("export archive bucket: %w", err)
	}

	logger.Info("Export archive enabled",
		zap.String("bucket", cfg.Bucket),
		zap.String("endpoint", cfg.Endpoint),
	)
	return archive, nil
}

var _ integration.ArtifactArchive = DisabledArchive{}
