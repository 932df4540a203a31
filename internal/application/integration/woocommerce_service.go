package integration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/integration"
	"github.com/wms/backend/internal/infrastructure/telemetry"
)

// DefaultMaxPages stops paging a catalog that never returns a short page.
const DefaultMaxPages = 500

// WooCommerceService pages through a WooCommerce catalog, expands variable
// products into their variations and stages the reconciled result.
type WooCommerceService struct {
	integrations integration.IntegrationRepository
	clients      integration.MarketplaceClientFactory
	reconciler   *Reconciler
	staging      integration.StagedProductStore
	stagingTTL   time.Duration
	maxPages     int
	logger       *zap.Logger
	metrics      *telemetry.SyncMetrics
}

// WooCommerceOption configures a WooCommerceService
type WooCommerceOption func(*WooCommerceService)

// WithStagingTTL sets how long fetched products stay selectable
func WithStagingTTL(ttl time.Duration) WooCommerceOption {
	return func(s *WooCommerceService) {
		if ttl > 0 {
			s.stagingTTL = ttl
		}
	}
}

// WithMaxPages bounds the number of pages requested per fetch
func WithMaxPages(n int) WooCommerceOption {
	return func(s *WooCommerceService) {
		if n > 0 {
			s.maxPages = n
		}
	}
}

// WithWooCommerceMetrics records run metrics on m
func WithWooCommerceMetrics(m *telemetry.SyncMetrics) WooCommerceOption {
	return func(s *WooCommerceService) {
		s.metrics = m
	}
}

// NewWooCommerceService creates a new WooCommerceService
func NewWooCommerceService(
	integrations integration.IntegrationRepository,
	clients integration.MarketplaceClientFactory,
	reconciler *Reconciler,
	staging integration.StagedProductStore,
	logger *zap.Logger,
	opts ...WooCommerceOption,
) *WooCommerceService {
	s := &WooCommerceService{
		integrations: integrations,
		clients:      clients,
		reconciler:   reconciler,
		staging:      staging,
		stagingTTL:   DefaultStagingTTL,
		maxPages:     DefaultMaxPages,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchWooCommerceProducts fetches the store catalog of the client's active
// WooCommerce integration, or of integrationID when given.
func (s *WooCommerceService) FetchWooCommerceProducts(ctx context.Context, tenantID, clientID uuid.UUID, integrationID *uuid.UUID) (result *integration.FetchResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "woocommerce", "fetch_products",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrClientID, clientID.String()),
	)
	defer span.End()

	started := time.Now()
	log := s.logger.With(
		zap.String("tenant_id", tenantID.String()),
		zap.String("client_id", clientID.String()),
		zap.String("platform", integration.PlatformCodeWooCommerce.String()),
	)
	defer func() {
		count := 0
		if result != nil {
			count = result.Count
		}
		s.metrics.RecordFetch(ctx, tenantID, integration.PlatformCodeWooCommerce.String(), count, time.Since(started), err)
		if err != nil {
			telemetry.RecordError(span, err)
			log.Error("WooCommerce fetch failed", zap.Error(err))
			return
		}
		telemetry.SetOK(span)
	}()

	cfg, err := s.integrations.FindActive(ctx, tenantID, clientID, integration.PlatformCodeWooCommerce, integrationID)
	if err != nil {
		return nil, err
	}
	client, err := s.clients.ProductCatalogClient(cfg)
	if err != nil {
		return nil, err
	}

	products, err := s.collect(ctx, client, log)
	if err != nil {
		return nil, err
	}

	processed, err := s.reconciler.Reconcile(ctx, tenantID, clientID, products)
	if err != nil {
		return nil, err
	}

	if err := s.staging.Stage(ctx, tenantID, clientID, integration.PlatformCodeWooCommerce, products, s.stagingTTL); err != nil {
		return nil, fmt.Errorf("stage products: %w", err)
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrProductCount, len(processed))
	log.Info("WooCommerce fetch finished", zap.Int("products", len(processed)))

	return &integration.FetchResult{Products: processed, Count: len(processed)}, nil
}

// collect pages through the catalog until a short page. A variable product
// contributes its variations instead of itself.
func (s *WooCommerceService) collect(ctx context.Context, client integration.ProductCatalogClient, log *zap.Logger) ([]integration.EnrichedProduct, error) {
	var products []integration.EnrichedProduct

	for page := 1; page <= s.maxPages; page++ {
		result, err := client.ListProducts(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("list products page %d: %w", page, err)
		}
		log.Debug("Fetched product page", zap.Int("page", page), zap.Int("products", len(result.Products)))

		for _, p := range result.Products {
			if p.Kind != integration.StoreProductVariable {
				products = append(products, storeProduct(p))
				continue
			}

			variations, err := client.ListVariations(ctx, p.ID)
			if err != nil {
				return nil, fmt.Errorf("list variations of product %s: %w", p.ID, err)
			}
			for _, v := range variations {
				products = append(products, storeVariation(p, v))
			}
		}

		if result.IsLast() {
			return products, nil
		}
	}

	log.Warn("Stopped paging at page limit", zap.Int("max_pages", s.maxPages))
	return products, nil
}

func storeProduct(p integration.StoreProduct) integration.EnrichedProduct {
	return integration.EnrichedProduct{
		Platform:    integration.PlatformCodeWooCommerce,
		ExternalID:  p.ID,
		Type:        integration.ProductTypeSimple,
		SKU:         storeSKU(p.SKU, p.ID),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       managedStock(p.ManageStock, p.StockQuantity),
		ImageURL:    p.ImageURL,
		Weight:      p.Weight,
		Dimensions:  p.Dimensions,
	}
}

// storeVariation maps a variation; details it lacks are taken from its parent.
func storeVariation(parent integration.StoreProduct, v integration.StoreVariation) integration.EnrichedProduct {
	p := integration.EnrichedProduct{
		Platform:         integration.PlatformCodeWooCommerce,
		ExternalID:       v.ID,
		ParentExternalID: parent.ID,
		Type:             integration.ProductTypeVariation,
		SKU:              storeSKU(v.SKU, v.ID),
		Name:             variationName(parent.Name, v.Options),
		Description:      parent.Description,
		Price:            v.Price,
		Stock:            managedStock(v.ManageStock, v.StockQuantity),
		ImageURL:         v.ImageURL,
		Weight:           v.Weight,
		Dimensions:       v.Dimensions,
	}
	if p.ImageURL == "" {
		p.ImageURL = parent.ImageURL
	}
	if p.Weight == "" {
		p.Weight = parent.Weight
	}
	if p.Dimensions.IsZero() {
		p.Dimensions = parent.Dimensions
	}
	return p
}

// variationName renders "T-shirt - Red, Large" from the parent name and the
// non-empty option values.
func variationName(parent string, options []string) string {
	values := make([]string, 0, len(options))
	for _, o := range options {
		if o = strings.TrimSpace(o); o != "" {
			values = append(values, o)
		}
	}
	if len(values) == 0 {
		return parent
	}
	return parent + " - " + strings.Join(values, ", ")
}

func storeSKU(sku, id string) string {
	if sku = strings.TrimSpace(sku); sku != "" {
		return sku
	}
	return "WC-" + id
}

func managedStock(manage bool, qty int) int {
	if !manage {
		return 0
	}
	return qty
}
