package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewSyncMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// Outcome labels of a fetch run.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// SyncMetrics records marketplace fetch and import activity.
// A nil *SyncMetrics is valid and records nothing.
type SyncMetrics struct {
	fetchRuns         *Counter
	fetchedProducts   *Counter
	fetchDuration     *Histogram
	exportPolls       *Histogram
	enrichFallbacks   *Counter
	importedProducts  *Counter
	linkedProducts    *Counter
	failedImportItems *Counter
}

// NewSyncMetrics registers the synchronization instruments on meter.
func NewSyncMetrics(meter metric.Meter) (*SyncMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &SyncMetrics{}
	var err error

	if m.fetchRuns, err = NewCounter(meter, "wms_sync_fetch_runs_total", "Marketplace fetch runs", "{runs}"); err != nil {
		return nil, err
	}
	if m.fetchedProducts, err = NewCounter(meter, "wms_sync_fetched_products_total", "Products returned by fetch runs", "{products}"); err != nil {
		return nil, err
	}
	if m.fetchDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "wms_sync_fetch_duration_seconds",
		Description: "Duration of marketplace fetch runs",
		Unit:        "s",
		Boundaries:  SyncDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.exportPolls, err = NewHistogram(meter, HistogramOpts{
		Name:        "wms_sync_export_polls",
		Description: "Status polls needed per offer export",
		Unit:        "{polls}",
		Boundaries:  []float64{1, 2, 5, 10, 20, 40, 60},
	}); err != nil {
		return nil, err
	}
	if m.enrichFallbacks, err = NewCounter(meter, "wms_sync_enrich_fallbacks_total", "Offers enriched with fallback data", "{offers}"); err != nil {
		return nil, err
	}
	if m.importedProducts, err = NewCounter(meter, "wms_sync_imported_products_total", "Internal products created by imports", "{products}"); err != nil {
		return nil, err
	}
	if m.linkedProducts, err = NewCounter(meter, "wms_sync_linked_products_total", "Platform links added by imports", "{links}"); err != nil {
		return nil, err
	}
	if m.failedImportItems, err = NewCounter(meter, "wms_sync_failed_import_items_total", "Selected items that could not be imported or linked", "{items}"); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordFetch records one finished fetch run.
func (m *SyncMetrics) RecordFetch(ctx context.Context, tenantID uuid.UUID, platform string, products int, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}

	m.fetchRuns.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrPlatform.String(platform),
		AttrOutcome.String(outcome),
	)
	m.fetchDuration.RecordDuration(ctx, d, AttrPlatform.String(platform), AttrOutcome.String(outcome))
	if products > 0 {
		m.fetchedProducts.Add(ctx, int64(products),
			AttrTenantID.String(tenantID.String()),
			AttrPlatform.String(platform),
		)
	}
}

// RecordExportPolls records how many polls an offer export took.
func (m *SyncMetrics) RecordExportPolls(ctx context.Context, platform string, polls int) {
	if m == nil {
		return
	}
	m.exportPolls.Record(ctx, float64(polls), AttrPlatform.String(platform))
}

// RecordEnrichFallback records an offer that got fallback catalog data.
func (m *SyncMetrics) RecordEnrichFallback(ctx context.Context, platform, reason string) {
	if m == nil {
		return
	}
	m.enrichFallbacks.Inc(ctx, AttrPlatform.String(platform), AttrReason.String(reason))
}

// RecordImport records the outcome of one import selection.
func (m *SyncMetrics) RecordImport(ctx context.Context, tenantID uuid.UUID, imported, linked, failed int) {
	if m == nil {
		return
	}
	tenant := AttrTenantID.String(tenantID.String())
	if imported > 0 {
		m.importedProducts.Add(ctx, int64(imported), tenant)
	}
	if linked > 0 {
		m.linkedProducts.Add(ctx, int64(linked), tenant)
	}
	if failed > 0 {
		m.failedImportItems.Add(ctx, int64(failed), tenant)
	}
}
