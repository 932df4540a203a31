package persistence

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/catalog"
	"github.com/wms/backend/internal/infrastructure/persistence/models"
	"github.com/wms/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindBySKUs returns the client's products whose SKU is in skus, keyed by SKU
func (r *GormProductRepository) FindBySKUs(ctx context.Context, tenantID, clientID uuid.UUID, skus []string) (map[string]*catalog.Product, error) {
	result := make(map[string]*catalog.Product, len(skus))
	if len(skus) == 0 {
		return result, nil
	}

	var productModels []models.ProductModel
	if err := tenant.ForClient(ctx, r.db, tenantID, clientID).
		Preload("Links").
		Where("sku IN ?", skus).
		Find(&productModels).Error; err != nil {
		return nil, err
	}

	for i := range productModels {
		p := productModels[i].ToDomain()
		result[p.SKU] = p
	}
	return result, nil
}

// FindByID returns one product of the client with its links
func (r *GormProductRepository) FindByID(ctx context.Context, tenantID, clientID, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := tenant.ForClient(ctx, r.db, tenantID, clientID).
		Preload("Links").
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByPlatformLinks returns the products holding any of refs in any slot,
// keyed by ref. The links are read in one query and their products in another.
func (r *GormProductRepository) FindByPlatformLinks(ctx context.Context, tenantID, clientID uuid.UUID, refs []catalog.LinkRef) (map[catalog.LinkRef]*catalog.Product, error) {
	result := make(map[catalog.LinkRef]*catalog.Product, len(refs))
	if len(refs) == 0 {
		return result, nil
	}

	wanted := make(map[catalog.LinkRef]struct{}, len(refs))
	var platforms, externalIDs []string
	for _, ref := range refs {
		ref = catalog.NewLinkRef(ref.Platform, ref.ExternalID)
		if _, ok := wanted[ref]; ok {
			continue
		}
		wanted[ref] = struct{}{}
		if !slices.Contains(platforms, ref.Platform) {
			platforms = append(platforms, ref.Platform)
		}
		externalIDs = append(externalIDs, ref.ExternalID)
	}

	var links []models.ProductPlatformLinkModel
	if err := tenant.ForClient(ctx, r.db, tenantID, clientID).
		Where("platform IN ? AND external_id IN ?", platforms, externalIDs).
		Find(&links).Error; err != nil {
		return nil, err
	}

	holders := make(map[catalog.LinkRef]uuid.UUID, len(links))
	seen := make(map[uuid.UUID]struct{}, len(links))
	var productIDs []uuid.UUID
	for _, l := range links {
		ref := catalog.NewLinkRef(l.Platform, l.ExternalID)
		if _, ok := wanted[ref]; !ok {
			continue
		}
		holders[ref] = l.ProductID
		if _, ok := seen[l.ProductID]; !ok {
			seen[l.ProductID] = struct{}{}
			productIDs = append(productIDs, l.ProductID)
		}
	}
	if len(holders) == 0 {
		return result, nil
	}

	var productModels []models.ProductModel
	if err := tenant.ForClient(ctx, r.db, tenantID, clientID).
		Preload("Links").
		Where("id IN ?", productIDs).
		Find(&productModels).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*catalog.Product, len(productModels))
	for i := range productModels {
		p := productModels[i].ToDomain()
		byID[p.ID] = p
	}
	for ref, id := range holders {
		if p, ok := byID[id]; ok {
			result[ref] = p
		}
	}
	return result, nil
}

// CreateBatch inserts all products and their links in one transaction.
// Nothing is written when any row fails.
func (r *GormProductRepository) CreateBatch(ctx context.Context, products []*catalog.Product) error {
	if len(products) == 0 {
		return nil
	}

	productModels := make([]*models.ProductModel, 0, len(products))
	var linkModels []*models.ProductPlatformLinkModel
	for _, p := range products {
		m := models.ProductModelFromDomain(p)
		for i := range m.Links {
			linkModels = append(linkModels, &m.Links[i])
		}
		m.Links = nil
		productModels = append(productModels, m)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(productModels).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %v", catalog.ErrDuplicateSKU, err)
			}
			return err
		}
		if len(linkModels) == 0 {
			return nil
		}
		if err := tx.Create(linkModels).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %v", catalog.ErrLinkConflict, err)
			}
			return err
		}
		return nil
	})
}

// AddPlatformLink stores one additional link for an existing product.
// The unique indexes on (product_id, slot) and on the platform item turn a lost
// race into catalog.ErrLinkConflict.
func (r *GormProductRepository) AddPlatformLink(ctx context.Context, tenantID, clientID, productID uuid.UUID, link catalog.PlatformLink) error {
	if link.Slot <= catalog.PrimarySlot || link.Slot > catalog.MaxPlatformLinks {
		return catalog.ErrInvalidSlot
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.ProductModel{}).
			Scopes(tenant.ClientScope(tenantID, clientID)).
			Where("id = ?", productID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return catalog.ErrProductNotFound
		}

		row := &models.ProductPlatformLinkModel{
			ID:         uuid.New(),
			TenantID:   tenantID,
			ClientID:   clientID,
			ProductID:  productID,
			Slot:       link.Slot,
			Platform:   catalog.NormalizePlatform(link.Platform),
			ExternalID: link.ExternalID,
			LinkedAt:   link.LinkedAt,
		}
		if err := tx.Create(row).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %v", catalog.ErrLinkConflict, err)
			}
			return err
		}

		return tx.Model(&models.ProductModel{}).
			Where("id = ?", productID).
			Update("updated_at", link.LinkedAt).Error
	})
}

// Ensure GormProductRepository implements catalog.ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
