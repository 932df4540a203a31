// Package cache keeps the products of a fetch run until the user selects
// which of them to import.
package cache

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/integration"
)

// stagedPlatforms fixes the order in which Load merges the per-platform lists.
var stagedPlatforms = []integration.PlatformCode{
	integration.PlatformCodeBolCom,
	integration.PlatformCodeWooCommerce,
	integration.PlatformCodeShopify,
}

// StagedStore is a StagedProductStore that holds a connection or a janitor
// goroutine that must be released.
type StagedStore interface {
	integration.StagedProductStore
	Ping(ctx context.Context) error
	Close() error
}

func clientKey(prefix string, tenantID, clientID uuid.UUID) string {
	return fmt.Sprintf("%s%s:%s", prefix, tenantID, clientID)
}
