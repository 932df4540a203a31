package cache

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/wms/backend/internal/domain/integration"
)

// InMemoryStagedStore implements StagedProductStore on top of go-cache.
// This is suitable for single-instance deployments and testing
type InMemoryStagedStore struct {
	items *gocache.Cache
}

// NewInMemoryStagedStore creates a store whose janitor removes expired runs
// every cleanupInterval.
func NewInMemoryStagedStore(cleanupInterval time.Duration) *InMemoryStagedStore {
	return &InMemoryStagedStore{
		items: gocache.New(gocache.NoExpiration, cleanupInterval),
	}
}

// Stage replaces the staged products of one platform for the client.
func (s *InMemoryStagedStore) Stage(_ context.Context, tenantID, clientID uuid.UUID, platform integration.PlatformCode, products []integration.EnrichedProduct, ttl time.Duration) error {
	s.items.Set(platformKey(tenantID, clientID, platform), slices.Clone(products), ttl)
	return nil
}

// Load returns the staged products of every platform, Bol.com first.
func (s *InMemoryStagedStore) Load(_ context.Context, tenantID, clientID uuid.UUID) ([]integration.EnrichedProduct, error) {
	var out []integration.EnrichedProduct
	for _, platform := range stagedPlatforms {
		v, ok := s.items.Get(platformKey(tenantID, clientID, platform))
		if !ok {
			continue
		}
		out = append(out, v.([]integration.EnrichedProduct)...)
	}
	return out, nil
}

// Size returns the number of staged runs (for testing/monitoring)
func (s *InMemoryStagedStore) Size() int {
	return s.items.ItemCount()
}

// Ping always succeeds
func (s *InMemoryStagedStore) Ping(context.Context) error { return nil }

// Close drops all staged runs.
func (s *InMemoryStagedStore) Close() error {
	s.items.Flush()
	return nil
}

func platformKey(tenantID, clientID uuid.UUID, platform integration.PlatformCode) string {
	return clientKey("", tenantID, clientID) + ":" + platform.String()
}

var _ StagedStore = (*InMemoryStagedStore)(nil)
