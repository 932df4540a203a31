package ecommerce

import (
	"errors"
	"strings"
)

// BolComConfig holds configuration for the Bol.com Retailer API
type BolComConfig struct {
	// ClientID is the API client id of the retailer account
	ClientID string
	// ClientSecret is the API client secret of the retailer account
	ClientSecret string
	// APIBaseURL is the base URL of the Retailer API
	APIBaseURL string
	// TokenURL is the OAuth2 client-credentials endpoint
	TokenURL string
	// APIVersion selects the versioned media type, e.g. "v10"
	APIVersion string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
	// MaxExportBytes caps the size of a downloaded offer export
	MaxExportBytes int64
}

const (
	// BolComAPIURL is the production Retailer API endpoint
	BolComAPIURL = "https://api.bol.com"
	// BolComTokenURL is the production token endpoint
	BolComTokenURL = "https://login.bol.com/token"
	// BolComAPIVersion is the Retailer API version the adapter speaks
	BolComAPIVersion = "v10"
	// DefaultMaxExportBytes is the offer export size limit (256MB)
	DefaultMaxExportBytes = 256 * 1024 * 1024
)

// Errors for Bol.com configuration
var (
	ErrBolComConfigMissingClientID     = errors.New("bolcom: client id is required")
	ErrBolComConfigMissingClientSecret = errors.New("bolcom: client secret is required")
)

// NewBolComConfig creates a new Bol.com configuration with defaults
func NewBolComConfig(clientID, clientSecret string) *BolComConfig {
	return &BolComConfig{
		ClientID:       clientID,
		ClientSecret:   clientSecret,
		APIBaseURL:     BolComAPIURL,
		TokenURL:       BolComTokenURL,
		APIVersion:     BolComAPIVersion,
		TimeoutSeconds: 30,
		MaxExportBytes: DefaultMaxExportBytes,
	}
}

// Validate validates the configuration and fills in defaults
func (c *BolComConfig) Validate() error {
	if c.ClientID == "" {
		return ErrBolComConfigMissingClientID
	}
	if c.ClientSecret == "" {
		return ErrBolComConfigMissingClientSecret
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = BolComAPIURL
	}
	c.APIBaseURL = strings.TrimRight(c.APIBaseURL, "/")
	if c.TokenURL == "" {
		c.TokenURL = BolComTokenURL
	}
	if c.APIVersion == "" {
		c.APIVersion = BolComAPIVersion
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	if c.MaxExportBytes <= 0 {
		c.MaxExportBytes = DefaultMaxExportBytes
	}
	return nil
}

// JSONMediaType is the versioned media type for JSON payloads
func (c *BolComConfig) JSONMediaType() string {
	return "application/vnd.retailer." + c.APIVersion + "+json"
}

// CSVMediaType is the versioned media type for CSV exports
func (c *BolComConfig) CSVMediaType() string {
	return "application/vnd.retailer." + c.APIVersion + "+csv"
}
