package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines the persistence operations the synchronization
// flow needs for internal products and their platform links.
type ProductRepository interface {
	// FindBySKUs returns the client's products whose SKU is in skus, keyed by SKU
	FindBySKUs(ctx context.Context, tenantID, clientID uuid.UUID, skus []string) (map[string]*Product, error)

	// FindByID returns one product of the client with its links
	FindByID(ctx context.Context, tenantID, clientID, id uuid.UUID) (*Product, error)

	// FindByPlatformLinks returns the products holding any of refs in any
	// slot, keyed by the normalized ref. Refs nobody holds are absent.
	FindByPlatformLinks(ctx context.Context, tenantID, clientID uuid.UUID, refs []LinkRef) (map[LinkRef]*Product, error)

	// CreateBatch inserts all products and their primary links in one transaction
	CreateBatch(ctx context.Context, products []*Product) error

	// AddPlatformLink stores one additional link for an existing product.
	// Returns ErrLinkConflict when the slot or the platform item is already taken.
	AddPlatformLink(ctx context.Context, tenantID, clientID, productID uuid.UUID, link PlatformLink) error
}
