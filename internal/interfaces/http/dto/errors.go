package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeTimeout is used when the request deadline passed before the work finished
	ErrCodeTimeout = "ERR_TIMEOUT"
)

// Validation and input error codes
const (
	// ErrCodeValidation is used when request binding or validation fails
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidTenant is used when the tenant header is missing or malformed
	ErrCodeInvalidTenant = "ERR_INVALID_TENANT"
	// ErrCodeNoSelection is used when an import names no products
	ErrCodeNoSelection = "ERR_NO_SELECTION"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeIntegrationNotFound is used when the client has no active integration for the platform
	ErrCodeIntegrationNotFound = "ERR_INTEGRATION_NOT_FOUND"
	// ErrCodeStagedExpired is used when no fetched products are available for import
	ErrCodeStagedExpired = "ERR_STAGED_EXPIRED"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
)

// Platform error codes
const (
	// ErrCodePlatformNotConfigured is used when the stored integration lacks credentials or settings
	ErrCodePlatformNotConfigured = "ERR_PLATFORM_NOT_CONFIGURED"
	// ErrCodePlatformAuth is used when the platform rejected the stored credentials
	ErrCodePlatformAuth = "ERR_PLATFORM_AUTH"
	// ErrCodePlatformUnavailable is used when a platform call failed
	ErrCodePlatformUnavailable = "ERR_PLATFORM_UNAVAILABLE"
	// ErrCodePlatformRateLimited is used when the platform kept rate limiting the run
	ErrCodePlatformRateLimited = "ERR_PLATFORM_RATE_LIMITED"
	// ErrCodeExportTimeout is used when an export job did not finish in time
	ErrCodeExportTimeout = "ERR_EXPORT_TIMEOUT"
	// ErrCodeExportFailed is used when the platform reported the export job as failed
	ErrCodeExportFailed = "ERR_EXPORT_FAILED"
	// ErrCodeArtifactDecode is used when the export artifact could not be read
	ErrCodeArtifactDecode = "ERR_ARTIFACT_DECODE"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when this API's own rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,
	ErrCodeTimeout:  http.StatusGatewayTimeout,

	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidTenant:   http.StatusBadRequest,
	ErrCodeNoSelection:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeIntegrationNotFound: http.StatusNotFound,
	ErrCodeStagedExpired:       http.StatusGone,
	ErrCodeConflict:            http.StatusConflict,

	ErrCodePlatformNotConfigured: http.StatusUnprocessableEntity,
	ErrCodePlatformAuth:          http.StatusBadGateway,
	ErrCodePlatformUnavailable:   http.StatusBadGateway,
	ErrCodePlatformRateLimited:   http.StatusServiceUnavailable,
	ErrCodeExportTimeout:         http.StatusGatewayTimeout,
	ErrCodeExportFailed:          http.StatusBadGateway,
	ErrCodeArtifactDecode:        http.StatusBadGateway,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
