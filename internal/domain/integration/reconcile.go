package integration

import (
	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/catalog"
)

// LinkStatus is the reconciliation verdict of one platform item.
type LinkStatus string

const (
	// LinkStatusNew means no internal product carries the item's SKU
	LinkStatusNew LinkStatus = "new"
	// LinkStatusExisting means nothing has to be written for the item
	LinkStatusExisting LinkStatus = "existing"
	// LinkStatusLinkable means the item can be linked to an open slot of an
	// existing product ("koppelen")
	LinkStatusLinkable LinkStatus = "koppelen"
)

// Classification is the result of matching one platform item against the store.
type Classification struct {
	Status    LinkStatus
	ProductID *uuid.UUID
	// Slot is the slot a linkable item would occupy, zero otherwise
	Slot int
}

// Classify decides what importing the platform item would do to existing,
// the internal product sharing its SKU (nil when there is none).
//
// A product whose slots are all occupied by other items is reported as
// existing, never as an error.
func Classify(existing *catalog.Product, platform PlatformCode, externalID string) Classification {
	if existing == nil {
		return Classification{Status: LinkStatusNew}
	}

	id := existing.ID
	if existing.HasLink(platform.String(), externalID) {
		return Classification{Status: LinkStatusExisting, ProductID: &id}
	}

	slot, ok := existing.FreeSlot()
	if !ok {
		return Classification{Status: LinkStatusExisting, ProductID: &id}
	}
	return Classification{Status: LinkStatusLinkable, ProductID: &id, Slot: slot}
}

// ProcessedProduct is a fetched platform item together with its reconciliation verdict.
type ProcessedProduct struct {
	EnrichedProduct
	Key               string     `json:"key"`
	Status            LinkStatus `json:"status"`
	ExistingProductID *uuid.UUID `json:"existing_product_id,omitempty"`
	Slot              int        `json:"slot,omitempty"`
}

// NewProcessedProduct attaches a classification to a platform item.
func NewProcessedProduct(p EnrichedProduct, c Classification) ProcessedProduct {
	return ProcessedProduct{
		EnrichedProduct:   p,
		Key:               p.Key(),
		Status:            c.Status,
		ExistingProductID: c.ProductID,
		Slot:              c.Slot,
	}
}

// FetchResult is what a fetch run hands back to the caller.
type FetchResult struct {
	Products []ProcessedProduct `json:"products"`
	Count    int                `json:"count"`
}
