package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/wms/backend/internal/domain/catalog"
	"github.com/wms/backend/internal/domain/integration"
)

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindBySKUs(ctx context.Context, tenantID, clientID uuid.UUID, skus []string) (map[string]*catalog.Product, error) {
	args := m.Called(ctx, tenantID, clientID, skus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByID(ctx context.Context, tenantID, clientID, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, clientID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByPlatformLinks(ctx context.Context, tenantID, clientID uuid.UUID, refs []catalog.LinkRef) (map[catalog.LinkRef]*catalog.Product, error) {
	args := m.Called(ctx, tenantID, clientID, refs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[catalog.LinkRef]*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) CreateBatch(ctx context.Context, products []*catalog.Product) error {
	args := m.Called(ctx, products)
	return args.Error(0)
}

func (m *MockProductRepository) AddPlatformLink(ctx context.Context, tenantID, clientID, productID uuid.UUID, link catalog.PlatformLink) error {
	args := m.Called(ctx, tenantID, clientID, productID, link)
	return args.Error(0)
}

// MockIntegrationRepository is a mock implementation of integration.IntegrationRepository
type MockIntegrationRepository struct {
	mock.Mock
}

func (m *MockIntegrationRepository) FindActive(ctx context.Context, tenantID, clientID uuid.UUID, platform integration.PlatformCode, integrationID *uuid.UUID) (*integration.PlatformIntegration, error) {
	args := m.Called(ctx, tenantID, clientID, platform, integrationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.PlatformIntegration), args.Error(1)
}

func (m *MockIntegrationRepository) Save(ctx context.Context, i *integration.PlatformIntegration) error {
	args := m.Called(ctx, i)
	return args.Error(0)
}

// MockClientFactory is a mock implementation of integration.MarketplaceClientFactory
type MockClientFactory struct {
	mock.Mock
}

func (m *MockClientFactory) OfferExportClient(i *integration.PlatformIntegration) (integration.OfferExportClient, error) {
	args := m.Called(i)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(integration.OfferExportClient), args.Error(1)
}

func (m *MockClientFactory) ProductCatalogClient(i *integration.PlatformIntegration) (integration.ProductCatalogClient, error) {
	args := m.Called(i)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(integration.ProductCatalogClient), args.Error(1)
}

// MockOfferExportClient is a mock implementation of integration.OfferExportClient
type MockOfferExportClient struct {
	mock.Mock
}

func (m *MockOfferExportClient) RequestOfferExport(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockOfferExportClient) GetProcessStatus(ctx context.Context, processStatusID string) (integration.ProcessStatus, error) {
	args := m.Called(ctx, processStatusID)
	return args.Get(0).(integration.ProcessStatus), args.Error(1)
}

func (m *MockOfferExportClient) DownloadOfferExport(ctx context.Context, entityID string) ([]byte, error) {
	args := m.Called(ctx, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockOfferExportClient) GetCatalogProduct(ctx context.Context, ean string) (*integration.CatalogProduct, error) {
	args := m.Called(ctx, ean)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.CatalogProduct), args.Error(1)
}

// MockProductCatalogClient is a mock implementation of integration.ProductCatalogClient
type MockProductCatalogClient struct {
	mock.Mock
}

func (m *MockProductCatalogClient) ListProducts(ctx context.Context, page int) (integration.ProductPage, error) {
	args := m.Called(ctx, page)
	return args.Get(0).(integration.ProductPage), args.Error(1)
}

func (m *MockProductCatalogClient) ListVariations(ctx context.Context, productID string) ([]integration.StoreVariation, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.StoreVariation), args.Error(1)
}

// MockStagedProductStore is a mock implementation of integration.StagedProductStore
type MockStagedProductStore struct {
	mock.Mock
}

func (m *MockStagedProductStore) Stage(ctx context.Context, tenantID, clientID uuid.UUID, platform integration.PlatformCode, products []integration.EnrichedProduct, ttl time.Duration) error {
	args := m.Called(ctx, tenantID, clientID, platform, products, ttl)
	return args.Error(0)
}

func (m *MockStagedProductStore) Load(ctx context.Context, tenantID, clientID uuid.UUID) ([]integration.EnrichedProduct, error) {
	args := m.Called(ctx, tenantID, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.EnrichedProduct), args.Error(1)
}

// MockArtifactArchive is a mock implementation of integration.ArtifactArchive
type MockArtifactArchive struct {
	mock.Mock
}

func (m *MockArtifactArchive) Archive(ctx context.Context, tenantID, clientID uuid.UUID, platform integration.PlatformCode, data []byte) (string, error) {
	args := m.Called(ctx, tenantID, clientID, platform, data)
	return args.String(0), args.Error(1)
}

// sleepRecorder is a retry.SleepFunc that records the waits instead of sleeping
type sleepRecorder struct {
	waits []time.Duration
}

func (s *sleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return ctx.Err()
}

// newLinkedProduct builds a stored product whose primary slot holds the given item
func newLinkedProduct(tenantID, clientID uuid.UUID, sku, platform, externalID string) *catalog.Product {
	p, err := catalog.NewProduct(tenantID, clientID, sku, "Stored "+sku, platform, externalID)
	if err != nil {
		panic(err)
	}
	return p
}
