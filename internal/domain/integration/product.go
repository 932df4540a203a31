package integration

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidWeight     = errors.New("integration: invalid weight value")
	ErrUnknownWeightUnit = errors.New("integration: unknown weight unit")
)

// ---------------------------------------------------------------------------
// ExternalOfferRecord
// ---------------------------------------------------------------------------

// ExternalOfferRecord is one row of a platform offer export.
// Attributes keeps the whole decoded row, keyed by header name.
type ExternalOfferRecord struct {
	OfferID       string
	EAN           string
	ReferenceCode string
	Price         decimal.Decimal
	Stock         int
	Attributes    map[string]string
}

// SKU is the reference code the seller gave the offer, or the EAN when none was set.
func (r ExternalOfferRecord) SKU() string {
	if r.ReferenceCode != "" {
		return r.ReferenceCode
	}
	return r.EAN
}

// ---------------------------------------------------------------------------
// EnrichedProduct
// ---------------------------------------------------------------------------

// ProductType tags whether a platform item is a standalone product or one
// variation of a variable product.
type ProductType string

const (
	ProductTypeSimple    ProductType = "simple"
	ProductTypeVariation ProductType = "variation"
)

// Dimensions are kept as the platform sent them; Format renders them for storage.
type Dimensions struct {
	Length string `json:"length,omitempty"`
	Width  string `json:"width,omitempty"`
	Height string `json:"height,omitempty"`
	Unit   string `json:"unit,omitempty"`
}

// IsZero reports whether no dimension is known.
func (d Dimensions) IsZero() bool {
	return d.Length == "" && d.Width == "" && d.Height == ""
}

// Format renders the dimensions as "L x W x H unit". Unknown sides print as "-".
func (d Dimensions) Format() string {
	if d.IsZero() {
		return ""
	}
	side := func(v string) string {
		if v == "" {
			return "-"
		}
		return v
	}
	s := fmt.Sprintf("%s x %s x %s", side(d.Length), side(d.Width), side(d.Height))
	if d.Unit != "" {
		s += " " + d.Unit
	}
	return s
}

// EnrichedProduct is a platform item with the catalog details needed to
// create or link an internal product.
type EnrichedProduct struct {
	Platform         PlatformCode    `json:"platform"`
	ExternalID       string          `json:"external_id"`
	ParentExternalID string          `json:"parent_external_id,omitempty"`
	Type             ProductType     `json:"type"`
	SKU              string          `json:"sku"`
	EAN              string          `json:"ean,omitempty"`
	Name             string          `json:"name"`
	Description      string          `json:"description,omitempty"`
	Price            decimal.Decimal `json:"price"`
	Stock            int             `json:"stock"`
	ImageURL         string          `json:"image_url,omitempty"`
	// Weight is "<value> <unit>" or a bare value in kilograms; empty when unknown
	Weight     string     `json:"weight,omitempty"`
	Dimensions Dimensions `json:"dimensions"`
}

// Key identifies the item across a fetch and the following import selection.
func (p EnrichedProduct) Key() string {
	return ProductKey(p.Platform, p.ExternalID)
}

// ProductKey builds the selection key of a platform item.
func ProductKey(platform PlatformCode, externalID string) string {
	return platform.String() + ":" + externalID
}

// FallbackName is the product name used when the catalog has nothing for the EAN.
func FallbackName(ean string) string {
	return "Product " + ean
}

// ---------------------------------------------------------------------------
// Weight conversion
// ---------------------------------------------------------------------------

var gramsPerUnit = map[string]decimal.Decimal{
	"kg":        decimal.NewFromInt(1000),
	"kgm":       decimal.NewFromInt(1000),
	"kilogram":  decimal.NewFromInt(1000),
	"kilograms": decimal.NewFromInt(1000),
	"g":         decimal.NewFromInt(1),
	"gr":        decimal.NewFromInt(1),
	"grm":       decimal.NewFromInt(1),
	"gram":      decimal.NewFromInt(1),
	"grams":     decimal.NewFromInt(1),
	"lb":        decimal.RequireFromString("453.59237"),
	"lbs":       decimal.RequireFromString("453.59237"),
	"oz":        decimal.RequireFromString("28.349523125"),
}

// WeightToGrams converts a platform weight ("1.5 kg", "500 g", "1,5") to whole grams.
// A value without unit is taken as kilograms. Empty input yields nil.
func WeightToGrams(weight string) (*int64, error) {
	weight = strings.TrimSpace(weight)
	if weight == "" {
		return nil, nil
	}

	value, unit := weight, "kg"
	if i := strings.IndexAny(weight, " \t"); i > 0 {
		value = weight[:i]
		unit = strings.ToLower(strings.TrimSpace(weight[i+1:]))
	} else if i := strings.IndexFunc(weight, isUnitRune); i > 0 {
		value = weight[:i]
		unit = strings.ToLower(weight[i:])
	}

	amount, err := decimal.NewFromString(strings.ReplaceAll(value, ",", "."))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidWeight, weight)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidWeight, weight)
	}

	factor, ok := gramsPerUnit[unit]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWeightUnit, unit)
	}

	grams := amount.Mul(factor).Round(0).IntPart()
	return &grams, nil
}

func isUnitRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
