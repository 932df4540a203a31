package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wms/backend/internal/domain/integration"
	csvimport "github.com/wms/backend/internal/infrastructure/import"
	"github.com/wms/backend/internal/interfaces/http/dto"
	"github.com/wms/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetTenantID(t *testing.T) {
	c, _ := newTestContext()
	_, err := getTenantID(c)
	assert.ErrorIs(t, err, errTenantMissing)

	tenantID := uuid.New()
	c.Set(middleware.TenantIDKey, tenantID)
	got, err := getTenantID(c)
	require.NoError(t, err)
	assert.Equal(t, tenantID, got)
}

func TestBaseHandlerSuccess(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.Success(c, map[string]int{"count": 2})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
}

func TestBaseHandlerErrorWithRequestID(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()
	c.Set(middleware.RequestIDKey, "req-42")

	h.ErrorWithCode(c, dto.ErrCodeInvalidTenant, "Tenant identification required")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeInvalidTenant, resp.Error.Code)
	assert.Equal(t, "req-42", resp.Error.RequestID)
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"no selection", integration.ErrNoProductsSelected, dto.ErrCodeNoSelection},
		{"staged expired", integration.ErrStagedProductsExpired, dto.ErrCodeStagedExpired},
		{"integration missing", fmt.Errorf("find integration: %w", integration.ErrIntegrationNotFound), dto.ErrCodeIntegrationNotFound},
		{"not configured", fmt.Errorf("%w: missing Bol.com client credentials", integration.ErrPlatformNotConfigured), dto.ErrCodePlatformNotConfigured},
		{"wrong platform", integration.ErrInvalidPlatformCode, dto.ErrCodePlatformNotConfigured},
		{"auth", fmt.Errorf("request offer export: %w", integration.ErrPlatformAuthFailed), dto.ErrCodePlatformAuth},
		{"rate limited", &integration.RateLimitedError{}, dto.ErrCodePlatformRateLimited},
		{"export timeout", fmt.Errorf("%w: still pending after 60 polls", integration.ErrExportTimeout), dto.ErrCodeExportTimeout},
		{"export failed", fmt.Errorf("%w: FAILURE", integration.ErrExportFailed), dto.ErrCodeExportFailed},
		{"decode", fmt.Errorf("%w: %w", integration.ErrArtifactDecode, csvimport.ErrNoDataRows), dto.ErrCodeArtifactDecode},
		{"platform error", &integration.PlatformError{StatusCode: 500}, dto.ErrCodePlatformUnavailable},
		{"invalid response", integration.ErrPlatformInvalidResp, dto.ErrCodePlatformUnavailable},
		{"deadline", fmt.Errorf("poll export status: %w", context.DeadlineExceeded), dto.ErrCodeTimeout},
		{"unknown", errors.New("connection reset"), dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, errorCode(tt.err))
		})
	}
}

func TestBaseHandlerHandleError(t *testing.T) {
	h := &BaseHandler{}

	t.Run("nil error writes nothing", func(t *testing.T) {
		c, w := newTestContext()
		h.HandleError(c, nil)
		assert.False(t, c.Writer.Written())
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("mapped error keeps its message", func(t *testing.T) {
		c, w := newTestContext()
		err := fmt.Errorf("%w: still pending after 60 polls", integration.ErrExportTimeout)

		h.HandleError(c, err)

		assert.Equal(t, http.StatusGatewayTimeout, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeExportTimeout, resp.Error.Code)
		assert.Equal(t, err.Error(), resp.Error.Message)
		assert.Len(t, c.Errors, 1)
	})

	t.Run("unknown error is hidden", func(t *testing.T) {
		c, w := newTestContext()

		h.HandleError(c, errors.New("pq: password authentication failed"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
		assert.Equal(t, "An unexpected error occurred", resp.Error.Message)
	})
}
