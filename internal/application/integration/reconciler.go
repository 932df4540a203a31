package integration

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/catalog"
	"github.com/wms/backend/internal/domain/integration"
)

// Reconciler matches fetched platform items against the client's internal
// products by SKU and by platform link. It never writes.
type Reconciler struct {
	products catalog.ProductRepository
}

// NewReconciler creates a new Reconciler
func NewReconciler(products catalog.ProductRepository) *Reconciler {
	return &Reconciler{products: products}
}

// Reconcile classifies every product, preserving order. All SKUs are looked
// up in one query and all platform items in another.
//
// A platform item already linked to some product is existing and points at
// that product, whatever its SKU. Only unlinked items are matched by SKU.
func (r *Reconciler) Reconcile(ctx context.Context, tenantID, clientID uuid.UUID, products []integration.EnrichedProduct) ([]integration.ProcessedProduct, error) {
	processed := make([]integration.ProcessedProduct, 0, len(products))
	if len(products) == 0 {
		return processed, nil
	}

	seen := make(map[string]struct{}, len(products))
	skus := make([]string, 0, len(products))
	refs := make([]catalog.LinkRef, 0, len(products))
	for _, p := range products {
		refs = append(refs, linkRef(p))
		if _, ok := seen[p.SKU]; ok {
			continue
		}
		seen[p.SKU] = struct{}{}
		skus = append(skus, p.SKU)
	}

	bySKU, err := r.products.FindBySKUs(ctx, tenantID, clientID, skus)
	if err != nil {
		return nil, fmt.Errorf("look up products by SKU: %w", err)
	}
	byLink, err := r.products.FindByPlatformLinks(ctx, tenantID, clientID, refs)
	if err != nil {
		return nil, fmt.Errorf("look up products by platform link: %w", err)
	}

	for _, p := range products {
		match := bySKU[p.SKU]
		if holder, ok := byLink[linkRef(p)]; ok {
			match = holder
		}
		c := integration.Classify(match, p.Platform, p.ExternalID)
		processed = append(processed, integration.NewProcessedProduct(p, c))
	}
	return processed, nil
}

func linkRef(p integration.EnrichedProduct) catalog.LinkRef {
	return catalog.NewLinkRef(p.Platform.String(), p.ExternalID)
}
