package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/wms/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// StagedStoreFactory creates the staged product store based on configuration
type StagedStoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	cleanupInterval       time.Duration
}

// StagedStoreFactoryOption is a functional option for configuring the factory
type StagedStoreFactoryOption func(*StagedStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StagedStoreFactoryOption {
	return func(f *StagedStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to the
// in-memory store. Default is true.
func WithInMemoryFallback(allow bool) StagedStoreFactoryOption {
	return func(f *StagedStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewStagedStoreFactory creates a new factory
func NewStagedStoreFactory(cfg config.RedisConfig, opts ...StagedStoreFactoryOption) *StagedStoreFactory {
	f := &StagedStoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		cleanupInterval:       10 * time.Minute,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns a Redis store when Redis is configured and reachable,
// otherwise the in-memory store.
func (f *StagedStoreFactory) CreateStore(ctx context.Context) (StagedStore, error) {
	addr := f.redisConfig.Addr()
	if addr == "" {
		f.logger.Info("Redis not configured, using in-memory staged product store")
		return NewInMemoryStagedStore(f.cleanupInterval), nil
	}

	store, err := NewRedisStagedStore(ctx, RedisConfig{
		Addr:     addr,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err == nil {
		f.logger.Info("Using Redis staged product store", zap.String("addr", addr))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for staged products but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory staged product store. "+
		"Fetch results are not shared between instances.",
		zap.Error(err),
	)
	return NewInMemoryStagedStore(f.cleanupInterval), nil
}
