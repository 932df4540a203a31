package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	appintegration "github.com/wms/backend/internal/application/integration"
	"github.com/wms/backend/internal/domain/integration"
	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/interfaces/http/dto"
	"github.com/wms/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

type mockBolComImporter struct{ mock.Mock }

func (m *mockBolComImporter) RunBolComImport(ctx context.Context, tenantID, clientID uuid.UUID) (*integration.FetchResult, error) {
	args := m.Called(ctx, tenantID, clientID)
	if r := args.Get(0); r != nil {
		return r.(*integration.FetchResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockWooCommerceFetcher struct{ mock.Mock }

func (m *mockWooCommerceFetcher) FetchWooCommerceProducts(ctx context.Context, tenantID, clientID uuid.UUID, integrationID *uuid.UUID) (*integration.FetchResult, error) {
	args := m.Called(ctx, tenantID, clientID, integrationID)
	if r := args.Get(0); r != nil {
		return r.(*integration.FetchResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockProductImporter struct{ mock.Mock }

func (m *mockProductImporter) ImportSelectedProducts(ctx context.Context, tenantID, clientID uuid.UUID, keys []string) (*appintegration.ImportResult, error) {
	args := m.Called(ctx, tenantID, clientID, keys)
	if r := args.Get(0); r != nil {
		return r.(*appintegration.ImportResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type integrationFixture struct {
	bolcom   *mockBolComImporter
	woo      *mockWooCommerceFetcher
	importer *mockProductImporter
	router   *gin.Engine
	tenantID uuid.UUID
	clientID uuid.UUID
}

func newIntegrationFixture(t *testing.T) *integrationFixture {
	t.Helper()
	middleware.SetupValidator()

	f := &integrationFixture{
		bolcom:   &mockBolComImporter{},
		woo:      &mockWooCommerceFetcher{},
		importer: &mockProductImporter{},
		tenantID: uuid.New(),
		clientID: uuid.New(),
	}
	h := NewIntegrationHandler(f.bolcom, f.woo, f.importer)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(logger.GinMiddleware(zap.NewNop()))
	r.Use(middleware.TenantMiddleware())
	r.POST("/clients/:client_id/integrations/bolcom/import", h.RunBolComImport)
	r.GET("/clients/:client_id/integrations/woocommerce/products", h.FetchWooCommerceProducts)
	r.POST("/clients/:client_id/products/import", h.ImportProducts)
	f.router = r

	t.Cleanup(func() {
		f.bolcom.AssertExpectations(t)
		f.woo.AssertExpectations(t)
		f.importer.AssertExpectations(t)
	})
	return f
}

func (f *integrationFixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(middleware.TenantHeaderKey, f.tenantID.String())
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *integrationFixture) clientPath(suffix string) string {
	return "/clients/" + f.clientID.String() + suffix
}

func sampleFetchResult() *integration.FetchResult {
	existing := uuid.New()
	products := []integration.ProcessedProduct{
		integration.NewProcessedProduct(integration.EnrichedProduct{
			Platform:   integration.PlatformCodeBolCom,
			ExternalID: "871",
			SKU:        "SKU-1",
			EAN:        "871",
			Name:       "Desk lamp",
			Price:      decimal.RequireFromString("19.95"),
			Stock:      4,
		}, integration.Classification{Status: integration.LinkStatusNew}),
		integration.NewProcessedProduct(integration.EnrichedProduct{
			Platform:   integration.PlatformCodeBolCom,
			ExternalID: "872",
			SKU:        "SKU-2",
			Name:       "Chair",
		}, integration.Classification{Status: integration.LinkStatusLinkable, ProductID: &existing, Slot: 2}),
	}
	return &integration.FetchResult{Products: products, Count: len(products)}
}

type fetchEnvelope struct {
	Success bool                         `json:"success"`
	Data    appintegration.FetchResponse `json:"data"`
	Error   *dto.ErrorInfo               `json:"error"`
}

func TestIntegrationHandler_RunBolComImport(t *testing.T) {
	t.Run("returns classified products", func(t *testing.T) {
		f := newIntegrationFixture(t)
		f.bolcom.On("RunBolComImport", mock.Anything, f.tenantID, f.clientID).Return(sampleFetchResult(), nil)

		w := f.do(http.MethodPost, f.clientPath("/integrations/bolcom/import"), "")

		require.Equal(t, http.StatusOK, w.Code)
		var resp fetchEnvelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, 2, resp.Data.Count)
		require.Len(t, resp.Data.Products, 2)
		assert.Equal(t, "BOLCOM:871", resp.Data.Products[0].Key)
		assert.Equal(t, integration.LinkStatusNew, resp.Data.Products[0].Status)
		assert.Equal(t, integration.LinkStatusLinkable, resp.Data.Products[1].Status)
		assert.Equal(t, 2, resp.Data.Products[1].Slot)
		assert.True(t, decimal.RequireFromString("19.95").Equal(resp.Data.Products[0].Price))
	})

	t.Run("empty result is an empty list", func(t *testing.T) {
		f := newIntegrationFixture(t)
		f.bolcom.On("RunBolComImport", mock.Anything, f.tenantID, f.clientID).
			Return(&integration.FetchResult{}, nil)

		w := f.do(http.MethodPost, f.clientPath("/integrations/bolcom/import"), "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"products":[]`)
		assert.Contains(t, w.Body.String(), `"count":0`)
	})

	errorCases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"auth failure", fmt.Errorf("request offer export: %w", integration.ErrPlatformAuthFailed), http.StatusBadGateway, dto.ErrCodePlatformAuth},
		{"poll timeout", fmt.Errorf("%w: still pending after 60 polls", integration.ErrExportTimeout), http.StatusGatewayTimeout, dto.ErrCodeExportTimeout},
		{"no integration", integration.ErrIntegrationNotFound, http.StatusNotFound, dto.ErrCodeIntegrationNotFound},
		{"export failed", fmt.Errorf("%w: FAILURE", integration.ErrExportFailed), http.StatusBadGateway, dto.ErrCodeExportFailed},
	}
	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			f := newIntegrationFixture(t)
			f.bolcom.On("RunBolComImport", mock.Anything, f.tenantID, f.clientID).Return(nil, tt.err)

			w := f.do(http.MethodPost, f.clientPath("/integrations/bolcom/import"), "")

			assert.Equal(t, tt.status, w.Code)
			resp := decodeResponse(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.RequestID)
		})
	}

	t.Run("invalid client id", func(t *testing.T) {
		f := newIntegrationFixture(t)

		w := f.do(http.MethodPost, "/clients/not-a-uuid/integrations/bolcom/import", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "client_id", resp.Error.Details[0].Field)
	})

	t.Run("missing tenant", func(t *testing.T) {
		f := newIntegrationFixture(t)

		req := httptest.NewRequest(http.MethodPost, f.clientPath("/integrations/bolcom/import"), nil)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeInvalidTenant)
	})
}

func TestIntegrationHandler_FetchWooCommerceProducts(t *testing.T) {
	t.Run("without integration id", func(t *testing.T) {
		f := newIntegrationFixture(t)
		f.woo.On("FetchWooCommerceProducts", mock.Anything, f.tenantID, f.clientID, (*uuid.UUID)(nil)).
			Return(sampleFetchResult(), nil)

		w := f.do(http.MethodGet, f.clientPath("/integrations/woocommerce/products"), "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"count":2`)
	})

	t.Run("with integration id", func(t *testing.T) {
		f := newIntegrationFixture(t)
		integrationID := uuid.New()
		f.woo.On("FetchWooCommerceProducts", mock.Anything, f.tenantID, f.clientID,
			mock.MatchedBy(func(id *uuid.UUID) bool { return id != nil && *id == integrationID })).
			Return(&integration.FetchResult{}, nil)

		w := f.do(http.MethodGet, f.clientPath("/integrations/woocommerce/products?integration_id="+integrationID.String()), "")

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("malformed integration id", func(t *testing.T) {
		f := newIntegrationFixture(t)

		w := f.do(http.MethodGet, f.clientPath("/integrations/woocommerce/products?integration_id=abc"), "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "integration_id", resp.Error.Details[0].Field)
	})

	t.Run("platform failure", func(t *testing.T) {
		f := newIntegrationFixture(t)
		f.woo.On("FetchWooCommerceProducts", mock.Anything, f.tenantID, f.clientID, (*uuid.UUID)(nil)).
			Return(nil, fmt.Errorf("list products page 1: %w", &integration.PlatformError{StatusCode: 500}))

		w := f.do(http.MethodGet, f.clientPath("/integrations/woocommerce/products"), "")

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodePlatformUnavailable)
	})
}

func TestIntegrationHandler_ImportProducts(t *testing.T) {
	t.Run("reports counts and item failures", func(t *testing.T) {
		f := newIntegrationFixture(t)
		keys := []string{"BOLCOM:871", "BOLCOM:872", "BOLCOM:999"}
		f.importer.On("ImportSelectedProducts", mock.Anything, f.tenantID, f.clientID, keys).
			Return(&appintegration.ImportResult{
				Imported: 1,
				Linked:   1,
				Failed:   1,
				Errors:   []appintegration.ImportError{{Key: "BOLCOM:999", Message: integration.ErrStagedProductsExpired.Error()}},
			}, nil)

		w := f.do(http.MethodPost, f.clientPath("/products/import"), `{"product_ids":["BOLCOM:871","BOLCOM:872","BOLCOM:999"]}`)

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Success bool                        `json:"success"`
			Data    appintegration.ImportResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, 1, resp.Data.Imported)
		assert.Equal(t, 1, resp.Data.Linked)
		assert.Equal(t, 1, resp.Data.Failed)
		require.Len(t, resp.Data.Errors, 1)
		assert.Equal(t, "BOLCOM:999", resp.Data.Errors[0].Key)
	})

	t.Run("empty selection is rejected before the service", func(t *testing.T) {
		f := newIntegrationFixture(t)

		w := f.do(http.MethodPost, f.clientPath("/products/import"), `{"product_ids":[]}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeValidation)
		f.importer.AssertNotCalled(t, "ImportSelectedProducts")
	})

	t.Run("expired staging", func(t *testing.T) {
		f := newIntegrationFixture(t)
		f.importer.On("ImportSelectedProducts", mock.Anything, f.tenantID, f.clientID, []string{"BOLCOM:1"}).
			Return(nil, integration.ErrStagedProductsExpired)

		w := f.do(http.MethodPost, f.clientPath("/products/import"), `{"product_ids":["BOLCOM:1"]}`)

		assert.Equal(t, http.StatusGone, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeStagedExpired)
	})

	t.Run("malformed body", func(t *testing.T) {
		f := newIntegrationFixture(t)

		w := f.do(http.MethodPost, f.clientPath("/products/import"), `{"product_ids":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid request body")
	})
}
