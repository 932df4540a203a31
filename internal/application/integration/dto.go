package integration

import (
	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// ImportProductsRequest carries the keys of the staged products to import
type ImportProductsRequest struct {
	ProductIDs []string `json:"product_ids" binding:"required,min=1,dive,required"`
}

// FetchProductsQuery selects which stored WooCommerce integration to fetch from
type FetchProductsQuery struct {
	IntegrationID string `form:"integration_id" binding:"omitempty,uuid"`
}

// ParsedIntegrationID returns the integration id, nil when none was given
func (q FetchProductsQuery) ParsedIntegrationID() *uuid.UUID {
	if q.IntegrationID == "" {
		return nil
	}
	id, err := uuid.Parse(q.IntegrationID)
	if err != nil {
		return nil
	}
	return &id
}

// ---------------------------------------------------------------------------
// Result DTOs
// ---------------------------------------------------------------------------

// ImportError describes one selected item that could not be imported or linked
type ImportError struct {
	Key     string `json:"key"`
	SKU     string `json:"sku,omitempty"`
	Message string `json:"message"`
}

// ImportResult reports what a commit wrote
type ImportResult struct {
	Imported int           `json:"imported"`
	Linked   int           `json:"linked"`
	Failed   int           `json:"failed"`
	Errors   []ImportError `json:"errors"`
}

func (r *ImportResult) fail(item integration.ProcessedProduct, err error) {
	r.Failed++
	r.Errors = append(r.Errors, ImportError{Key: item.Key, SKU: item.SKU, Message: err.Error()})
}

// FetchResponse is the API shape of a fetch run
type FetchResponse struct {
	Products []integration.ProcessedProduct `json:"products"`
	Count    int                            `json:"count"`
}

// ToFetchResponse converts a fetch result for the API
func ToFetchResponse(r *integration.FetchResult) FetchResponse {
	if r == nil || r.Products == nil {
		return FetchResponse{Products: []integration.ProcessedProduct{}}
	}
	return FetchResponse{Products: r.Products, Count: r.Count}
}
