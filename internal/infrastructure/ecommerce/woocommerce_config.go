package ecommerce

import (
	"errors"
	"net/url"
	"strings"
)

// WooCommerceConfig holds configuration for the WooCommerce REST API
type WooCommerceConfig struct {
	// StoreURL is the root URL of the shop, e.g. https://shop.example.com
	StoreURL string
	// ConsumerKey is the REST API key
	ConsumerKey string
	// ConsumerSecret is the REST API secret
	ConsumerSecret string
	// PerPage is the page size for list calls (WooCommerce allows up to 100)
	PerPage int
	// WeightUnit is the store's weight unit; WooCommerce sends bare numbers
	WeightUnit string
	// DimensionUnit is the store's dimension unit
	DimensionUnit string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

const (
	wooAPIPath        = "/wp-json/wc/v3"
	wooMaxPerPage     = 100
	wooDefaultWeight  = "kg"
	wooDefaultDimUnit = "cm"
)

// Errors for WooCommerce configuration
var (
	ErrWooConfigMissingStoreURL = errors.New("woocommerce: store URL is required")
	ErrWooConfigInvalidStoreURL = errors.New("woocommerce: store URL must be an absolute http(s) URL")
	ErrWooConfigMissingKey      = errors.New("woocommerce: consumer key is required")
	ErrWooConfigMissingSecret   = errors.New("woocommerce: consumer secret is required")
)

// NewWooCommerceConfig creates a new WooCommerce configuration with defaults
func NewWooCommerceConfig(storeURL, consumerKey, consumerSecret string) *WooCommerceConfig {
	return &WooCommerceConfig{
		StoreURL:       storeURL,
		ConsumerKey:    consumerKey,
		ConsumerSecret: consumerSecret,
		PerPage:        wooMaxPerPage,
		WeightUnit:     wooDefaultWeight,
		DimensionUnit:  wooDefaultDimUnit,
		TimeoutSeconds: 30,
	}
}

// Validate validates the configuration and fills in defaults
func (c *WooCommerceConfig) Validate() error {
	if c.StoreURL == "" {
		return ErrWooConfigMissingStoreURL
	}
	u, err := url.Parse(c.StoreURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrWooConfigInvalidStoreURL
	}
	c.StoreURL = strings.TrimRight(c.StoreURL, "/")
	if c.ConsumerKey == "" {
		return ErrWooConfigMissingKey
	}
	if c.ConsumerSecret == "" {
		return ErrWooConfigMissingSecret
	}
	if c.PerPage <= 0 || c.PerPage > wooMaxPerPage {
		c.PerPage = wooMaxPerPage
	}
	if c.WeightUnit == "" {
		c.WeightUnit = wooDefaultWeight
	}
	if c.DimensionUnit == "" {
		c.DimensionUnit = wooDefaultDimUnit
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}

// endpoint returns the absolute URL of a REST resource
func (c *WooCommerceConfig) endpoint(resource string) string {
	return c.StoreURL + wooAPIPath + resource
}
