package integration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/catalog"
	"github.com/wms/backend/internal/domain/integration"
)

// DefaultMaxLinkAttempts bounds how often a link is retried after losing a slot race.
const DefaultMaxLinkAttempts = 3

// ImportCommitter writes the outcome of a reconciled selection: new internal
// products for "new" items and additional platform links for "koppelen" items.
type ImportCommitter struct {
	products        catalog.ProductRepository
	logger          *zap.Logger
	maxLinkAttempts int
	now             func() time.Time
}

// NewImportCommitter creates a new ImportCommitter
func NewImportCommitter(products catalog.ProductRepository, logger *zap.Logger) *ImportCommitter {
	return &ImportCommitter{
		products:        products,
		logger:          logger,
		maxLinkAttempts: DefaultMaxLinkAttempts,
		now:             time.Now,
	}
}

// Commit persists the selected items. New products are written in one batch;
// each link is written on its own so one failure does not block the others.
//
// Items sharing the SKU of a product created in this run are linked into its
// free slots once it exists. When the batch is rejected for a conflict, the
// products are retried one by one so only the conflicting ones fail.
func (c *ImportCommitter) Commit(ctx context.Context, tenantID, clientID uuid.UUID, items []integration.ProcessedProduct) *ImportResult {
	result := &ImportResult{Errors: []ImportError{}}

	var (
		created   []*pendingProduct
		followers []integration.ProcessedProduct
		toLink    []integration.ProcessedProduct
	)
	bySKU := make(map[string]*pendingProduct)

	for _, item := range items {
		switch item.Status {
		case integration.LinkStatusNew:
			if _, dup := bySKU[item.SKU]; dup {
				followers = append(followers, item)
				continue
			}

			p, err := c.newProduct(tenantID, clientID, item)
			if err != nil {
				result.fail(item, err)
				continue
			}
			pending := &pendingProduct{product: p, item: item}
			bySKU[item.SKU] = pending
			created = append(created, pending)
		case integration.LinkStatusLinkable:
			toLink = append(toLink, item)
		}
	}

	c.createProducts(ctx, created, result)

	for _, item := range followers {
		leader := bySKU[item.SKU]
		if leader.err != nil {
			result.fail(item, leader.err)
			continue
		}
		id := leader.product.ID
		item.ExistingProductID = &id
		toLink = append(toLink, item)
	}

	for _, item := range toLink {
		linked, err := c.link(ctx, tenantID, clientID, item)
		if err != nil {
			c.logger.Warn("Linking product failed",
				zap.String("key", item.Key),
				zap.String("sku", item.SKU),
				zap.Error(err),
			)
			result.fail(item, err)
			continue
		}
		if linked {
			result.Linked++
		}
	}

	return result
}

// pendingProduct is a product built from a "new" item; err is set when it
// could not be written.
type pendingProduct struct {
	product *catalog.Product
	item    integration.ProcessedProduct
	err     error
}

// createProducts writes all pending products in one batch. A batch refused
// for a SKU or link conflict is retried product by product.
func (c *ImportCommitter) createProducts(ctx context.Context, pending []*pendingProduct, result *ImportResult) {
	if len(pending) == 0 {
		return
	}

	products := make([]*catalog.Product, 0, len(pending))
	for _, p := range pending {
		products = append(products, p.product)
	}

	err := c.products.CreateBatch(ctx, products)
	if err == nil {
		result.Imported += len(pending)
		return
	}
	if len(pending) == 1 || !isConflict(err) {
		c.logger.Error("Creating imported products failed",
			zap.Int("count", len(pending)),
			zap.Error(err),
		)
		for _, p := range pending {
			p.err = fmt.Errorf("%w: %v", integration.ErrPersistenceFailed, err)
			result.fail(p.item, p.err)
		}
		return
	}

	c.logger.Warn("Batch insert conflicted, inserting products one by one",
		zap.Int("count", len(pending)),
		zap.Error(err),
	)
	for _, p := range pending {
		if err := c.products.CreateBatch(ctx, []*catalog.Product{p.product}); err != nil {
			p.err = fmt.Errorf("%w: %v", integration.ErrPersistenceFailed, err)
			result.fail(p.item, p.err)
			continue
		}
		result.Imported++
	}
}

func isConflict(err error) bool {
	return errors.Is(err, catalog.ErrLinkConflict) || errors.Is(err, catalog.ErrDuplicateSKU)
}

// newProduct builds the internal product of a "new" item.
func (c *ImportCommitter) newProduct(tenantID, clientID uuid.UUID, item integration.ProcessedProduct) (*catalog.Product, error) {
	p, err := catalog.NewProduct(tenantID, clientID, item.SKU, item.Name, item.Platform.String(), item.ExternalID)
	if err != nil {
		return nil, err
	}
	p.Description = item.Description
	p.EAN = item.EAN
	p.Price = item.Price
	p.Stock = item.Stock
	p.ImageURL = item.ImageURL
	p.Dimensions = item.Dimensions.Format()

	grams, err := integration.WeightToGrams(item.Weight)
	if err != nil {
		c.logger.Warn("Ignoring unreadable weight",
			zap.String("sku", item.SKU),
			zap.String("weight", item.Weight),
			zap.Error(err),
		)
	}
	p.SetWeightGrams(grams)
	return p, nil
}

// link adds the item to the lowest free slot of its product. The product is
// re-read before every attempt; a conflict means another writer took the slot
// or the platform item in the meantime. It returns false when the item turned
// out to be linked already.
func (c *ImportCommitter) link(ctx context.Context, tenantID, clientID uuid.UUID, item integration.ProcessedProduct) (bool, error) {
	if item.ExistingProductID == nil {
		return false, catalog.ErrProductNotFound
	}
	productID := *item.ExistingProductID

	var lastErr error
	for attempt := 1; attempt <= c.maxLinkAttempts; attempt++ {
		p, err := c.products.FindByID(ctx, tenantID, clientID, productID)
		if err != nil {
			return false, err
		}
		if p.HasLink(item.Platform.String(), item.ExternalID) {
			return false, nil
		}
		slot, ok := p.FreeSlot()
		if !ok {
			return false, catalog.ErrNoFreeLinkSlot
		}

		err = c.products.AddPlatformLink(ctx, tenantID, clientID, productID, catalog.PlatformLink{
			Slot:       slot,
			Platform:   item.Platform.String(),
			ExternalID: item.ExternalID,
			LinkedAt:   c.now(),
		})
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, catalog.ErrLinkConflict) {
			return false, err
		}

		lastErr = err
		c.logger.Debug("Link slot taken concurrently, retrying",
			zap.String("key", item.Key),
			zap.Int("slot", slot),
			zap.Int("attempt", attempt),
		)
	}
	return false, lastErr
}
