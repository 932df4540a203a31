package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/catalog"
)

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	BaseModel
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_products_tenant_client_sku,priority:1"`
	ClientID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_products_tenant_client_sku,priority:2"`
	SKU         string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_products_tenant_client_sku,priority:3"`
	Name        string          `gorm:"type:varchar(500);not null"`
	Description string          `gorm:"type:text;not null;default:''"`
	EAN         string          `gorm:"type:varchar(20);not null;default:''"`
	Price       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	WeightGrams *int64
	Dimensions  string                     `gorm:"type:varchar(100);not null;default:''"`
	Stock       int                        `gorm:"not null;default:0"`
	ImageURL    string                     `gorm:"type:text;not null;default:''"`
	Links       []ProductPlatformLinkModel `gorm:"foreignKey:ProductID"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		ID:          m.ID,
		TenantID:    m.TenantID,
		ClientID:    m.ClientID,
		SKU:         m.SKU,
		Name:        m.Name,
		Description: m.Description,
		EAN:         m.EAN,
		Price:       m.Price,
		WeightGrams: m.WeightGrams,
		Dimensions:  m.Dimensions,
		Stock:       m.Stock,
		ImageURL:    m.ImageURL,
		Links:       make([]catalog.PlatformLink, 0, len(m.Links)),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	for _, l := range m.Links {
		p.Links = append(p.Links, l.ToDomain())
	}
	return p
}

// ProductModelFromDomain creates a persistence model, links included, from a domain Product.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		BaseModel:   BaseModel{ID: p.ID, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt},
		TenantID:    p.TenantID,
		ClientID:    p.ClientID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		EAN:         p.EAN,
		Price:       p.Price,
		WeightGrams: p.WeightGrams,
		Dimensions:  p.Dimensions,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
	}
	for _, l := range p.Links {
		m.Links = append(m.Links, *PlatformLinkModelFromDomain(p, l))
	}
	return m
}

// ProductPlatformLinkModel stores one slot of a product's platform bindings.
// (product_id, slot) and (tenant_id, client_id, platform, external_id) are unique.
type ProductPlatformLinkModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_platform_links_external,priority:1"`
	ClientID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_platform_links_external,priority:2"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_platform_links_product_slot,priority:1"`
	Slot       int       `gorm:"type:smallint;not null;uniqueIndex:idx_platform_links_product_slot,priority:2"`
	Platform   string    `gorm:"type:varchar(30);not null;uniqueIndex:idx_platform_links_external,priority:3"`
	ExternalID string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_platform_links_external,priority:4"`
	LinkedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductPlatformLinkModel) TableName() string {
	return "product_platform_links"
}

// ToDomain converts the persistence model to a domain PlatformLink.
func (m *ProductPlatformLinkModel) ToDomain() catalog.PlatformLink {
	return catalog.PlatformLink{
		Slot:       m.Slot,
		Platform:   m.Platform,
		ExternalID: m.ExternalID,
		LinkedAt:   m.LinkedAt,
	}
}

// PlatformLinkModelFromDomain creates the link row of one slot of p.
func PlatformLinkModelFromDomain(p *catalog.Product, l catalog.PlatformLink) *ProductPlatformLinkModel {
	return &ProductPlatformLinkModel{
		ID:         uuid.New(),
		TenantID:   p.TenantID,
		ClientID:   p.ClientID,
		ProductID:  p.ID,
		Slot:       l.Slot,
		Platform:   catalog.NormalizePlatform(l.Platform),
		ExternalID: l.ExternalID,
		LinkedAt:   l.LinkedAt,
	}
}
