package integration

import (
	"errors"
	"fmt"
	"time"
)

var (
	// Platform errors
	ErrPlatformNotConfigured = errors.New("integration: platform not configured")
	ErrPlatformRequestFailed = errors.New("integration: platform request failed")
	ErrPlatformAuthFailed    = errors.New("integration: platform authentication failed")
	ErrPlatformRateLimited   = errors.New("integration: platform rate limited")
	ErrPlatformInvalidResp   = errors.New("integration: invalid platform response")
	ErrResponseTooLarge      = errors.New("integration: platform response exceeds size limit")
	ErrCatalogItemNotFound   = errors.New("integration: catalog item not found")

	// Export job errors
	ErrExportTimeout         = errors.New("integration: export job did not finish in time")
	ErrExportFailed          = errors.New("integration: export job failed")
	ErrInvalidJobTransition  = errors.New("integration: invalid export job transition")
	ErrArtifactDecode        = errors.New("integration: export artifact could not be decoded")
	ErrIntegrationNotFound   = errors.New("integration: no active integration for client")
	ErrInvalidPlatformCode   = errors.New("integration: invalid platform code")
	ErrPersistenceFailed     = errors.New("integration: persisting products failed")
	ErrNoProductsSelected    = errors.New("integration: no products selected")
	ErrStagedProductsExpired = errors.New("integration: no fetched products available, run the fetch again")
)

// RateLimitedError is returned when the platform answers 429.
// RetryAfter is zero when the platform did not send a Retry-After value.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: retry after %s", ErrPlatformRateLimited, e.RetryAfter)
	}
	return ErrPlatformRateLimited.Error()
}

func (e *RateLimitedError) Unwrap() error { return ErrPlatformRateLimited }

// PlatformError is a non-2xx answer that has no more specific meaning.
type PlatformError struct {
	StatusCode int
	Body       string
}

func (e *PlatformError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: HTTP %d", ErrPlatformRequestFailed, e.StatusCode)
	}
	return fmt.Sprintf("%s: HTTP %d - %s", ErrPlatformRequestFailed, e.StatusCode, e.Body)
}

func (e *PlatformError) Unwrap() error { return ErrPlatformRequestFailed }

// IsFatal reports whether err must abort a whole sync run rather than degrade one item.
func IsFatal(err error) bool {
	return errors.Is(err, ErrPlatformAuthFailed)
}

// RetryAfter extracts the back-off hint of a rate-limited error.
func RetryAfter(err error) (time.Duration, bool) {
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return rl.RetryAfter, true
	}
	return 0, false
}
