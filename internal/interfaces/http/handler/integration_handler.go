package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appintegration "github.com/wms/backend/internal/application/integration"
	"github.com/wms/backend/internal/domain/integration"
	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// BolComImporter runs a Bol.com offer export for a client
type BolComImporter interface {
	RunBolComImport(ctx context.Context, tenantID, clientID uuid.UUID) (*integration.FetchResult, error)
}

// WooCommerceFetcher reads a client's WooCommerce catalog
type WooCommerceFetcher interface {
	FetchWooCommerceProducts(ctx context.Context, tenantID, clientID uuid.UUID, integrationID *uuid.UUID) (*integration.FetchResult, error)
}

// ProductImporter commits a selection of fetched products
type ProductImporter interface {
	ImportSelectedProducts(ctx context.Context, tenantID, clientID uuid.UUID, keys []string) (*appintegration.ImportResult, error)
}

// IntegrationHandler serves the marketplace fetch and import endpoints
type IntegrationHandler struct {
	BaseHandler
	bolcom      BolComImporter
	woocommerce WooCommerceFetcher
	importer    ProductImporter
}

// NewIntegrationHandler creates a new IntegrationHandler
func NewIntegrationHandler(bolcom BolComImporter, woocommerce WooCommerceFetcher, importer ProductImporter) *IntegrationHandler {
	return &IntegrationHandler{
		bolcom:      bolcom,
		woocommerce: woocommerce,
		importer:    importer,
	}
}

// RunBolComImport exports the client's Bol.com offers, enriches and reconciles
// them, and returns the classified products.
//
// POST /clients/:client_id/integrations/bolcom/import
func (h *IntegrationHandler) RunBolComImport(c *gin.Context) {
	ctx, tenantID, clientID, ok := h.scope(c)
	if !ok {
		return
	}

	result, err := h.bolcom.RunBolComImport(ctx, tenantID, clientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, appintegration.ToFetchResponse(result))
}

// FetchWooCommerceProducts reads the client's WooCommerce products and returns
// them classified against the internal catalog.
//
// GET /clients/:client_id/integrations/woocommerce/products?integration_id=
func (h *IntegrationHandler) FetchWooCommerceProducts(c *gin.Context) {
	ctx, tenantID, clientID, ok := h.scope(c)
	if !ok {
		return
	}

	var query appintegration.FetchProductsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.woocommerce.FetchWooCommerceProducts(ctx, tenantID, clientID, query.ParsedIntegrationID())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, appintegration.ToFetchResponse(result))
}

// ImportProducts imports or links the selected products of the last fetch.
// Item failures are reported in the result, not as an error status.
//
// POST /clients/:client_id/products/import
func (h *IntegrationHandler) ImportProducts(c *gin.Context) {
	ctx, tenantID, clientID, ok := h.scope(c)
	if !ok {
		return
	}

	var req appintegration.ImportProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.importer.ImportSelectedProducts(ctx, tenantID, clientID, req.ProductIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	logger.GetGinLogger(c).Info("Products imported",
		zap.String("client_id", clientID.String()),
		zap.Int("imported", result.Imported),
		zap.Int("linked", result.Linked),
		zap.Int("failed", result.Failed),
	)
	h.Success(c, result)
}

// scope resolves tenant and client of the request and returns a context whose
// logger carries the client. It writes the error response when ok is false.
func (h *IntegrationHandler) scope(c *gin.Context) (ctx context.Context, tenantID, clientID uuid.UUID, ok bool) {
	var uri dto.ClientRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.ValidationError(c, err)
		return nil, uuid.Nil, uuid.Nil, false
	}
	clientID, err := uuid.Parse(uri.ClientID)
	if err != nil {
		h.BadRequest(c, "client_id must be a valid UUID")
		return nil, uuid.Nil, uuid.Nil, false
	}

	tenantID, err = getTenantID(c)
	if err != nil {
		h.ErrorWithCode(c, dto.ErrCodeInvalidTenant, err.Error())
		return nil, uuid.Nil, uuid.Nil, false
	}

	ctx = c.Request.Context()
	ctx, _ = logger.WithClientID(ctx, logger.FromContext(ctx), clientID.String())
	return ctx, tenantID, clientID, true
}
