package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/wms/backend/internal/domain/integration"
)

const defaultStagedKeyPrefix = "wms:staged:"

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisStagedStore implements StagedProductStore using one Redis hash per
// client with a field per platform. Staging refreshes the TTL of the whole hash.
// This is suitable for deployments where several instances serve the same client.
type RedisStagedStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStagedStore connects to Redis and verifies the connection.
func NewRedisStagedStore(ctx context.Context, cfg RedisConfig) (*RedisStagedStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStagedStoreWithClient(client, ""), nil
}

// NewRedisStagedStoreWithClient creates a store with an existing Redis client
func NewRedisStagedStoreWithClient(client *redis.Client, keyPrefix string) *RedisStagedStore {
	if keyPrefix == "" {
		keyPrefix = defaultStagedKeyPrefix
	}
	return &RedisStagedStore{client: client, keyPrefix: keyPrefix}
}

// Stage replaces the staged products of one platform for the client.
func (s *RedisStagedStore) Stage(ctx context.Context, tenantID, clientID uuid.UUID, platform integration.PlatformCode, products []integration.EnrichedProduct, ttl time.Duration) error {
	if products == nil {
		products = []integration.EnrichedProduct{}
	}
	payload, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to encode staged products: %w", err)
	}

	key := clientKey(s.keyPrefix, tenantID, clientID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, platform.String(), payload)
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to stage products: %w", err)
	}
	return nil
}

// Load returns the staged products of every platform, Bol.com first.
func (s *RedisStagedStore) Load(ctx context.Context, tenantID, clientID uuid.UUID) ([]integration.EnrichedProduct, error) {
	fields, err := s.client.HGetAll(ctx, clientKey(s.keyPrefix, tenantID, clientID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load staged products: %w", err)
	}

	var out []integration.EnrichedProduct
	for _, platform := range stagedPlatforms {
		raw, ok := fields[platform.String()]
		if !ok {
			continue
		}
		var products []integration.EnrichedProduct
		if err := json.Unmarshal([]byte(raw), &products); err != nil {
			return nil, fmt.Errorf("failed to decode staged %s products: %w", platform, err)
		}
		out = append(out, products...)
	}
	return out, nil
}

// Ping checks that Redis answers
func (s *RedisStagedStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (s *RedisStagedStore) Close() error {
	return s.client.Close()
}

var _ StagedStore = (*RedisStagedStore)(nil)
