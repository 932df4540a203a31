package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// PlatformCode represents the type of external sales platform
// ---------------------------------------------------------------------------

// PlatformCode represents the type of external sales platform
type PlatformCode string

const (
	PlatformCodeBolCom      PlatformCode = "BOLCOM"
	PlatformCodeWooCommerce PlatformCode = "WOOCOMMERCE"
	PlatformCodeShopify     PlatformCode = "SHOPIFY"
)

// IsValid checks if the platform code is valid
func (p PlatformCode) IsValid() bool {
	switch p {
	case PlatformCodeBolCom, PlatformCodeWooCommerce, PlatformCodeShopify:
		return true
	default:
		return false
	}
}

// String returns the string representation of PlatformCode
func (p PlatformCode) String() string {
	return string(p)
}

// DisplayName returns the human-readable name of the platform
func (p PlatformCode) DisplayName() string {
	switch p {
	case PlatformCodeBolCom:
		return "Bol.com"
	case PlatformCodeWooCommerce:
		return "WooCommerce"
	case PlatformCodeShopify:
		return "Shopify"
	default:
		return string(p)
	}
}

// ---------------------------------------------------------------------------
// PlatformIntegration Entity
// ---------------------------------------------------------------------------

// PlatformIntegration holds the credentials of one client's connection to a platform.
// For Bol.com APIKey/APISecret are the OAuth client id/secret, for WooCommerce
// they are the REST consumer key/secret.
type PlatformIntegration struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	ClientID  uuid.UUID
	Platform  PlatformCode
	Name      string
	BaseURL   string
	APIKey    string
	APISecret string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasCredentials reports whether both halves of the credential pair are present.
func (i *PlatformIntegration) HasCredentials() bool {
	return i.APIKey != "" && i.APISecret != ""
}

// IntegrationRepository loads stored platform credentials.
type IntegrationRepository interface {
	// FindActive returns the active integration of the client for the platform.
	// When integrationID is set, exactly that integration is returned.
	FindActive(ctx context.Context, tenantID, clientID uuid.UUID, platform PlatformCode, integrationID *uuid.UUID) (*PlatformIntegration, error)

	// Save creates or updates an integration
	Save(ctx context.Context, integration *PlatformIntegration) error
}
