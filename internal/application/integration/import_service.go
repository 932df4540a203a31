package integration

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/integration"
	"github.com/wms/backend/internal/infrastructure/telemetry"
)

// ImportService imports a selection of the products staged by the latest fetch.
type ImportService struct {
	staging    integration.StagedProductStore
	reconciler *Reconciler
	committer  *ImportCommitter
	logger     *zap.Logger
	metrics    *telemetry.SyncMetrics
}

// NewImportService creates a new ImportService
func NewImportService(
	staging integration.StagedProductStore,
	reconciler *Reconciler,
	committer *ImportCommitter,
	logger *zap.Logger,
	metrics *telemetry.SyncMetrics,
) *ImportService {
	return &ImportService{
		staging:    staging,
		reconciler: reconciler,
		committer:  committer,
		logger:     logger,
		metrics:    metrics,
	}
}

// ImportSelectedProducts imports the staged products whose keys were selected.
// Items are re-reconciled first, so a product created or linked since the
// fetch is not written twice. Keys that match nothing staged are reported as
// failed items.
func (s *ImportService) ImportSelectedProducts(ctx context.Context, tenantID, clientID uuid.UUID, keys []string) (*ImportResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "product_import", "import_selected",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrClientID, clientID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrSelectedCount, len(keys)),
	)
	defer span.End()

	if len(keys) == 0 {
		return nil, integration.ErrNoProductsSelected
	}

	staged, err := s.staging.Load(ctx, tenantID, clientID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if len(staged) == 0 {
		return nil, integration.ErrStagedProductsExpired
	}

	wanted := make(map[string]bool, len(keys))
	for _, k := range keys {
		wanted[k] = false
	}

	selected := make([]integration.EnrichedProduct, 0, len(keys))
	for _, p := range staged {
		key := p.Key()
		if found, ok := wanted[key]; ok && !found {
			wanted[key] = true
			selected = append(selected, p)
		}
	}
	if len(selected) == 0 {
		return nil, integration.ErrStagedProductsExpired
	}

	processed, err := s.reconciler.Reconcile(ctx, tenantID, clientID, selected)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result := s.committer.Commit(ctx, tenantID, clientID, processed)

	for _, k := range keys {
		if found, ok := wanted[k]; ok && !found {
			wanted[k] = true
			result.Failed++
			result.Errors = append(result.Errors, ImportError{Key: k, Message: integration.ErrStagedProductsExpired.Error()})
		}
	}

	s.metrics.RecordImport(ctx, tenantID, result.Imported, result.Linked, result.Failed)
	telemetry.SetAttributes(span,
		"imported", result.Imported,
		"linked", result.Linked,
		"failed", result.Failed,
	)
	telemetry.SetOK(span)

	s.logger.Info("Imported selected products",
		zap.String("tenant_id", tenantID.String()),
		zap.String("client_id", clientID.String()),
		zap.Int("selected", len(keys)),
		zap.Int("imported", result.Imported),
		zap.Int("linked", result.Linked),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}
