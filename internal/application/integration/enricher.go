package integration

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/wms/backend/internal/domain/integration"
	"github.com/wms/backend/internal/infrastructure/retry"
	"github.com/wms/backend/internal/infrastructure/telemetry"
)

// Fallback reasons reported to metrics and logs.
const (
	fallbackNotFound    = "not_found"
	fallbackRateLimited = "rate_limited"
	fallbackError       = "error"
	fallbackNoEAN       = "no_ean"
)

var (
	weightAttributeKeys = []string{"weight", "gewicht"}
	lengthAttributeKeys = []string{"length", "lengte"}
	widthAttributeKeys  = []string{"width", "breedte"}
	heightAttributeKeys = []string{"height", "hoogte"}

	// catalog unit codes rendered the way shops write them
	unitAliases = map[string]string{
		"cmt": "cm",
		"mmt": "mm",
		"mtr": "m",
	}
)

// CatalogEnricher turns decoded export rows into enriched products by looking
// every EAN up in the platform catalog, one row at a time.
type CatalogEnricher struct {
	limiter *rate.Limiter
	policy  retry.Policy
	logger  *zap.Logger
	metrics *telemetry.SyncMetrics
}

// EnricherOption configures a CatalogEnricher
type EnricherOption func(*CatalogEnricher)

// WithItemDelay sets the minimum spacing between two catalog calls.
// Zero or less disables the spacing.
func WithItemDelay(d time.Duration) EnricherOption {
	return func(e *CatalogEnricher) {
		if d <= 0 {
			e.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		e.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithRetryPolicy replaces the rate-limit retry policy
func WithRetryPolicy(p retry.Policy) EnricherOption {
	return func(e *CatalogEnricher) {
		e.policy = p
	}
}

// WithEnricherMetrics records fallbacks on m
func WithEnricherMetrics(m *telemetry.SyncMetrics) EnricherOption {
	return func(e *CatalogEnricher) {
		e.metrics = m
	}
}

// NewCatalogEnricher creates an enricher with a 100ms item delay and the default retry policy.
func NewCatalogEnricher(logger *zap.Logger, opts ...EnricherOption) *CatalogEnricher {
	e := &CatalogEnricher{
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
		policy:  retry.DefaultPolicy(),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich fetches catalog details for every row, preserving row order.
// A row whose catalog lookup fails gets fallback details; only an
// authentication failure or a cancelled context aborts the run.
func (e *CatalogEnricher) Enrich(ctx context.Context, client integration.OfferExportClient, rows []integration.ExternalOfferRecord) ([]integration.EnrichedProduct, error) {
	products := make([]integration.EnrichedProduct, 0, len(rows))

	for i, row := range rows {
		if row.EAN == "" {
			e.logger.Warn("Offer without EAN, using fallback details",
				zap.Int("row", i+1),
				zap.String("offer_id", row.OfferID),
			)
			e.metrics.RecordEnrichFallback(ctx, integration.PlatformCodeBolCom.String(), fallbackNoEAN)
			products = append(products, buildOfferProduct(row, nil))
			continue
		}

		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		policy := e.policy
		policy.OnRetry = func(attempt int, delay time.Duration, err error) {
			e.logger.Info("Catalog rate limited, backing off",
				zap.String("ean", row.EAN),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
			)
		}
		item, err := retry.Do(ctx, policy, func(ctx context.Context) (*integration.CatalogProduct, error) {
			return client.GetCatalogProduct(ctx, row.EAN)
		})

		switch {
		case err == nil:
			products = append(products, buildOfferProduct(row, item))
			continue
		case integration.IsFatal(err):
			return nil, err
		case ctx.Err() != nil:
			return nil, ctx.Err()
		}

		reason := fallbackError
		switch {
		case errors.Is(err, integration.ErrCatalogItemNotFound):
			reason = fallbackNotFound
			e.logger.Debug("EAN not in catalog, using fallback details", zap.String("ean", row.EAN))
		case errors.Is(err, integration.ErrPlatformRateLimited):
			reason = fallbackRateLimited
			e.logger.Warn("Catalog still rate limited after retry, using fallback details",
				zap.String("ean", row.EAN),
				zap.Error(err),
			)
		default:
			e.logger.Warn("Catalog lookup failed, using fallback details",
				zap.String("ean", row.EAN),
				zap.Error(err),
			)
		}
		e.metrics.RecordEnrichFallback(ctx, integration.PlatformCodeBolCom.String(), reason)
		products = append(products, buildOfferProduct(row, nil))
	}

	return products, nil
}

// buildOfferProduct maps one export row and its catalog record (nil when the
// catalog had nothing) to an enriched product.
func buildOfferProduct(row integration.ExternalOfferRecord, item *integration.CatalogProduct) integration.EnrichedProduct {
	externalID := row.OfferID
	if externalID == "" {
		externalID = row.EAN
	}
	fallbackKey := row.EAN
	if fallbackKey == "" {
		fallbackKey = row.OfferID
	}

	p := integration.EnrichedProduct{
		Platform:   integration.PlatformCodeBolCom,
		ExternalID: externalID,
		Type:       integration.ProductTypeSimple,
		SKU:        row.SKU(),
		EAN:        row.EAN,
		Name:       integration.FallbackName(fallbackKey),
		Price:      row.Price,
		Stock:      row.Stock,
	}
	if p.SKU == "" {
		p.SKU = externalID
	}
	if item == nil {
		return p
	}

	if title, ok := item.Attribute("Title"); ok && strings.TrimSpace(title.Value) != "" {
		p.Name = strings.TrimSpace(title.Value)
	}
	if desc, ok := item.Attribute("Description"); ok {
		p.Description = desc.Value
	}
	if len(item.ImageURLs) > 0 {
		p.ImageURL = item.ImageURLs[0]
	}
	if w, ok := findAttribute(item, weightAttributeKeys); ok {
		p.Weight = w.Value
		if w.Unit != "" {
			p.Weight += " " + w.Unit
		}
	}
	p.Dimensions = catalogDimensions(item)
	return p
}

// findAttribute returns the first value of the first attribute whose id
// contains one of keys, case-insensitively.
func findAttribute(item *integration.CatalogProduct, keys []string) (integration.CatalogAttributeValue, bool) {
	for _, a := range item.Attributes {
		if len(a.Values) == 0 {
			continue
		}
		id := strings.ToLower(a.ID)
		for _, k := range keys {
			if strings.Contains(id, k) {
				return a.Values[0], true
			}
		}
	}
	return integration.CatalogAttributeValue{}, false
}

func catalogDimensions(item *integration.CatalogProduct) integration.Dimensions {
	var d integration.Dimensions
	for _, side := range []struct {
		keys []string
		dst  *string
	}{
		{lengthAttributeKeys, &d.Length},
		{widthAttributeKeys, &d.Width},
		{heightAttributeKeys, &d.Height},
	} {
		v, ok := findAttribute(item, side.keys)
		if !ok {
			continue
		}
		*side.dst = v.Value
		if d.Unit == "" && v.Unit != "" {
			d.Unit = normalizeUnit(v.Unit)
		}
	}
	return d
}

func normalizeUnit(unit string) string {
	u := strings.ToLower(unit)
	if alias, ok := unitAliases[u]; ok {
		return alias
	}
	return u
}
