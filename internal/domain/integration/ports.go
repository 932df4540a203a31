package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Offer export platform (Bol.com)
// ---------------------------------------------------------------------------

// CatalogAttributeValue is one value of a catalog attribute, with its unit when it has one.
type CatalogAttributeValue struct {
	Value string
	Unit  string
}

// CatalogAttribute is a named attribute of a catalog product.
type CatalogAttribute struct {
	ID     string
	Values []CatalogAttributeValue
}

// CatalogProduct is the platform's content record for one EAN.
type CatalogProduct struct {
	EAN        string
	ImageURLs  []string
	Attributes []CatalogAttribute
}

// Attribute returns the first value of the attribute with the given id.
func (c CatalogProduct) Attribute(id string) (CatalogAttributeValue, bool) {
	for _, a := range c.Attributes {
		if a.ID == id && len(a.Values) > 0 {
			return a.Values[0], true
		}
	}
	return CatalogAttributeValue{}, false
}

// OfferExportClient talks to a platform that exports offers through an asynchronous job.
type OfferExportClient interface {
	// RequestOfferExport submits an export job and returns its process status id
	RequestOfferExport(ctx context.Context) (string, error)

	// GetProcessStatus performs a single status poll
	GetProcessStatus(ctx context.Context, processStatusID string) (ProcessStatus, error)

	// DownloadOfferExport fetches the finished export artifact
	DownloadOfferExport(ctx context.Context, entityID string) ([]byte, error)

	// GetCatalogProduct fetches catalog content for one EAN.
	// Returns ErrCatalogItemNotFound, *RateLimitedError, ErrPlatformAuthFailed or *PlatformError.
	GetCatalogProduct(ctx context.Context, ean string) (*CatalogProduct, error)
}

// ---------------------------------------------------------------------------
// Product catalog platform (WooCommerce)
// ---------------------------------------------------------------------------

// StoreProductKind distinguishes products that carry their own stock from
// products whose variations do.
type StoreProductKind string

const (
	StoreProductSimple   StoreProductKind = "simple"
	StoreProductVariable StoreProductKind = "variable"
)

// StoreProduct is one product of a web shop catalog.
type StoreProduct struct {
	ID            string
	Name          string
	Kind          StoreProductKind
	SKU           string
	Description   string
	Price         decimal.Decimal
	ManageStock   bool
	StockQuantity int
	Weight        string
	Dimensions    Dimensions
	ImageURL      string
}

// StoreVariation is one variation of a variable product.
type StoreVariation struct {
	ID            string
	SKU           string
	Price         decimal.Decimal
	ManageStock   bool
	StockQuantity int
	Weight        string
	Dimensions    Dimensions
	ImageURL      string
	// Options are the attribute option values, e.g. ["Red", "Large"]
	Options []string
}

// ProductPage is one page of a paginated product listing.
type ProductPage struct {
	Page     int
	PerPage  int
	Products []StoreProduct
}

// IsLast reports whether no further page should be requested.
func (p ProductPage) IsLast() bool {
	return len(p.Products) < p.PerPage
}

// ProductCatalogClient talks to a platform that lists its products synchronously.
type ProductCatalogClient interface {
	// ListProducts fetches one page (1-based) of the catalog
	ListProducts(ctx context.Context, page int) (ProductPage, error)

	// ListVariations fetches the variations of a variable product
	ListVariations(ctx context.Context, productID string) ([]StoreVariation, error)
}

// ---------------------------------------------------------------------------
// Client construction and staging
// ---------------------------------------------------------------------------

// MarketplaceClientFactory builds platform clients from stored credentials.
type MarketplaceClientFactory interface {
	OfferExportClient(integration *PlatformIntegration) (OfferExportClient, error)
	ProductCatalogClient(integration *PlatformIntegration) (ProductCatalogClient, error)
}

// StagedProductStore keeps the products of the latest fetch run until the user
// picks which ones to import.
type StagedProductStore interface {
	Stage(ctx context.Context, tenantID, clientID uuid.UUID, platform PlatformCode, products []EnrichedProduct, ttl time.Duration) error
	Load(ctx context.Context, tenantID, clientID uuid.UUID) ([]EnrichedProduct, error)
}

// ArtifactArchive stores raw export artifacts for later inspection.
type ArtifactArchive interface {
	Archive(ctx context.Context, tenantID, clientID uuid.UUID, platform PlatformCode, data []byte) (string, error)
}
