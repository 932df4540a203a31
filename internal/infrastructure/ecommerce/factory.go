package ecommerce

import (
	"fmt"
	"net/http"
	"time"

	"github.com/wms/backend/internal/domain/integration"
)

// FactoryConfig carries the deployment-wide settings applied to every client
type FactoryConfig struct {
	BolComAPIURL       string
	BolComTokenURL     string
	BolComAPIVersion   string
	BolComMaxExport    int64
	WooPerPage         int
	WooWeightUnit      string
	WooDimensionUnit   string
	RequestTimeoutSecs int
}

// ClientFactory builds platform adapters from stored integration credentials
type ClientFactory struct {
	cfg        FactoryConfig
	httpClient HTTPDoer
}

// NewClientFactory creates a factory. A nil client gets a shared default one.
func NewClientFactory(cfg FactoryConfig, client HTTPDoer) *ClientFactory {
	if cfg.RequestTimeoutSecs <= 0 {
		cfg.RequestTimeoutSecs = 30
	}
	if client == nil {
		client = &http.Client{Timeout: time.Duration(cfg.RequestTimeoutSecs) * time.Second}
	}
	return &ClientFactory{cfg: cfg, httpClient: client}
}

// OfferExportClient builds a Bol.com adapter for the integration
func (f *ClientFactory) OfferExportClient(i *integration.PlatformIntegration) (integration.OfferExportClient, error) {
	if i.Platform != integration.PlatformCodeBolCom {
		return nil, fmt.Errorf("%w: %s does not export offers", integration.ErrInvalidPlatformCode, i.Platform.DisplayName())
	}
	if !i.HasCredentials() {
		return nil, fmt.Errorf("%w: missing %s client credentials", integration.ErrPlatformNotConfigured, i.Platform.DisplayName())
	}

	cfg := NewBolComConfig(i.APIKey, i.APISecret)
	cfg.TimeoutSeconds = f.cfg.RequestTimeoutSecs
	if f.cfg.BolComAPIURL != "" {
		cfg.APIBaseURL = f.cfg.BolComAPIURL
	}
	if i.BaseURL != "" {
		cfg.APIBaseURL = i.BaseURL
	}
	if f.cfg.BolComTokenURL != "" {
		cfg.TokenURL = f.cfg.BolComTokenURL
	}
	if f.cfg.BolComAPIVersion != "" {
		cfg.APIVersion = f.cfg.BolComAPIVersion
	}
	if f.cfg.BolComMaxExport > 0 {
		cfg.MaxExportBytes = f.cfg.BolComMaxExport
	}

	return NewBolComAdapter(cfg, WithBolComHTTPClient(f.httpClient))
}

// ProductCatalogClient builds a WooCommerce adapter for the integration
func (f *ClientFactory) ProductCatalogClient(i *integration.PlatformIntegration) (integration.ProductCatalogClient, error) {
	if i.Platform != integration.PlatformCodeWooCommerce {
		return nil, fmt.Errorf("%w: %s has no product catalog client", integration.ErrInvalidPlatformCode, i.Platform.DisplayName())
	}
	if !i.HasCredentials() {
		return nil, fmt.Errorf("%w: missing %s API key or secret", integration.ErrPlatformNotConfigured, i.Platform.DisplayName())
	}

	cfg := NewWooCommerceConfig(i.BaseURL, i.APIKey, i.APISecret)
	cfg.TimeoutSeconds = f.cfg.RequestTimeoutSecs
	if f.cfg.WooPerPage > 0 {
		cfg.PerPage = f.cfg.WooPerPage
	}
	if f.cfg.WooWeightUnit != "" {
		cfg.WeightUnit = f.cfg.WooWeightUnit
	}
	if f.cfg.WooDimensionUnit != "" {
		cfg.DimensionUnit = f.cfg.WooDimensionUnit
	}

	adapter, err := NewWooCommerceAdapter(cfg, f.httpClient)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformNotConfigured, err)
	}
	return adapter, nil
}

// Ensure ClientFactory implements MarketplaceClientFactory
var _ integration.MarketplaceClientFactory = (*ClientFactory)(nil)
