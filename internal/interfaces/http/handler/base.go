package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/integration"
	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/interfaces/http/dto"
	"github.com/wms/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// errTenantMissing is only seen when a route is mounted without the tenant middleware
var errTenantMissing = errors.New("tenant ID not found in context")

func getRequestID(c *gin.Context) string {
	return middleware.GetRequestID(c)
}

// getTenantID returns the tenant resolved by the tenant middleware
func getTenantID(c *gin.Context) (uuid.UUID, error) {
	id, ok := middleware.GetTenantID(c)
	if !ok {
		return uuid.Nil, errTenantMissing
	}
	return id, nil
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// ValidationError sends a 400 validation error response for a binding error
func (h *BaseHandler) ValidationError(c *gin.Context, err error) {
	middleware.HandleValidationError(c, err)
}

// errorMapping ties a domain sentinel to its API error code
type errorMapping struct {
	target error
	code   string
}

// errorMappings is checked in order; the first sentinel found in the chain wins.
var errorMappings = []errorMapping{
	{integration.ErrNoProductsSelected, dto.ErrCodeNoSelection},
	{integration.ErrStagedProductsExpired, dto.ErrCodeStagedExpired},
	{integration.ErrIntegrationNotFound, dto.ErrCodeIntegrationNotFound},
	{integration.ErrPlatformNotConfigured, dto.ErrCodePlatformNotConfigured},
	{integration.ErrInvalidPlatformCode, dto.ErrCodePlatformNotConfigured},
	{integration.ErrPlatformAuthFailed, dto.ErrCodePlatformAuth},
	{integration.ErrPlatformRateLimited, dto.ErrCodePlatformRateLimited},
	{integration.ErrExportTimeout, dto.ErrCodeExportTimeout},
	{integration.ErrExportFailed, dto.ErrCodeExportFailed},
	{integration.ErrArtifactDecode, dto.ErrCodeArtifactDecode},
	{integration.ErrPlatformRequestFailed, dto.ErrCodePlatformUnavailable},
	{integration.ErrPlatformInvalidResp, dto.ErrCodePlatformUnavailable},
	{integration.ErrCatalogItemNotFound, dto.ErrCodePlatformUnavailable},
	{context.DeadlineExceeded, dto.ErrCodeTimeout},
}

// errorCode returns the API error code for err, ErrCodeInternal when no sentinel matches
func errorCode(err error) string {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.code
		}
	}
	return dto.ErrCodeInternal
}

// HandleError converts a service error into the error envelope.
// Mapped errors carry their message to the caller; anything else is logged
// and answered with a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	code := errorCode(err)
	status := dto.GetHTTPStatus(code)
	log := logger.GetGinLogger(c)

	if code == dto.ErrCodeInternal {
		log.Error("Request failed", zap.Error(err))
		h.Error(c, status, code, "An unexpected error occurred")
		return
	}

	if status >= http.StatusInternalServerError {
		log.Warn("Platform request failed", zap.String("code", code), zap.Error(err))
	} else {
		log.Info("Request rejected", zap.String("code", code), zap.Error(err))
	}
	h.Error(c, status, code, err.Error())
}
