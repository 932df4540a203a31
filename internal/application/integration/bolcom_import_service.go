package integration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/integration"
	csvimport "github.com/wms/backend/internal/infrastructure/import"
	"github.com/wms/backend/internal/infrastructure/retry"
	"github.com/wms/backend/internal/infrastructure/telemetry"
)

// Defaults of a Bol.com offer export run.
const (
	DefaultPollInterval = 2 * time.Second
	DefaultMaxPolls     = 60
	DefaultStagingTTL   = time.Hour
)

// ExportSettings bounds the export polling and the lifetime of staged products
type ExportSettings struct {
	PollInterval time.Duration
	MaxPolls     int
	StagingTTL   time.Duration
}

// DefaultExportSettings returns 2s polling, at most 60 polls and one hour of staging
func DefaultExportSettings() ExportSettings {
	return ExportSettings{
		PollInterval: DefaultPollInterval,
		MaxPolls:     DefaultMaxPolls,
		StagingTTL:   DefaultStagingTTL,
	}
}

func (s ExportSettings) withDefaults() ExportSettings {
	if s.PollInterval <= 0 {
		s.PollInterval = DefaultPollInterval
	}
	if s.MaxPolls <= 0 {
		s.MaxPolls = DefaultMaxPolls
	}
	if s.StagingTTL <= 0 {
		s.StagingTTL = DefaultStagingTTL
	}
	return s
}

// BolComImportService drives a Bol.com offer export from request to staged,
// reconciled products.
type BolComImportService struct {
	integrations integration.IntegrationRepository
	clients      integration.MarketplaceClientFactory
	enricher     *CatalogEnricher
	reconciler   *Reconciler
	staging      integration.StagedProductStore
	archive      integration.ArtifactArchive
	settings     ExportSettings
	decodeOpts   []csvimport.DecoderOption
	sleep        retry.SleepFunc
	logger       *zap.Logger
	metrics      *telemetry.SyncMetrics
}

// BolComOption configures a BolComImportService
type BolComOption func(*BolComImportService)

// WithExportSettings overrides polling and staging settings
func WithExportSettings(s ExportSettings) BolComOption {
	return func(svc *BolComImportService) {
		svc.settings = s.withDefaults()
	}
}

// WithArtifactArchive stores every downloaded export artifact
func WithArtifactArchive(a integration.ArtifactArchive) BolComOption {
	return func(svc *BolComImportService) {
		svc.archive = a
	}
}

// WithDecoderOptions passes options to the export decoder
func WithDecoderOptions(opts ...csvimport.DecoderOption) BolComOption {
	return func(svc *BolComImportService) {
		svc.decodeOpts = opts
	}
}

// WithPollSleep replaces the wait between two status polls
func WithPollSleep(sleep retry.SleepFunc) BolComOption {
	return func(svc *BolComImportService) {
		svc.sleep = sleep
	}
}

// WithBolComMetrics records run metrics on m
func WithBolComMetrics(m *telemetry.SyncMetrics) BolComOption {
	return func(svc *BolComImportService) {
		svc.metrics = m
	}
}

// NewBolComImportService creates a new BolComImportService
func NewBolComImportService(
	integrations integration.IntegrationRepository,
	clients integration.MarketplaceClientFactory,
	enricher *CatalogEnricher,
	reconciler *Reconciler,
	staging integration.StagedProductStore,
	logger *zap.Logger,
	opts ...BolComOption,
) *BolComImportService {
	svc := &BolComImportService{
		integrations: integrations,
		clients:      clients,
		enricher:     enricher,
		reconciler:   reconciler,
		staging:      staging,
		settings:     DefaultExportSettings(),
		sleep:        retry.Sleep,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// RunBolComImport exports the client's Bol.com offers, enriches them from the
// catalog, reconciles them against the store and stages them for selection.
func (s *BolComImportService) RunBolComImport(ctx context.Context, tenantID, clientID uuid.UUID) (result *integration.FetchResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "bolcom_import", "run",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrClientID, clientID.String()),
	)
	defer span.End()

	started := time.Now()
	log := s.logger.With(
		zap.String("tenant_id", tenantID.String()),
		zap.String("client_id", clientID.String()),
		zap.String("platform", integration.PlatformCodeBolCom.String()),
	)
	defer func() {
		count := 0
		if result != nil {
			count = result.Count
		}
		s.metrics.RecordFetch(ctx, tenantID, integration.PlatformCodeBolCom.String(), count, time.Since(started), err)
		if err != nil {
			telemetry.RecordError(span, err)
			log.Error("Bol.com import failed", zap.Error(err))
			return
		}
		telemetry.SetOK(span)
	}()

	cfg, err := s.integrations.FindActive(ctx, tenantID, clientID, integration.PlatformCodeBolCom, nil)
	if err != nil {
		return nil, err
	}
	client, err := s.clients.OfferExportClient(cfg)
	if err != nil {
		return nil, err
	}

	artifact, err := s.runExport(ctx, client, log)
	if err != nil {
		return nil, err
	}
	s.archiveArtifact(ctx, tenantID, clientID, artifact, log)

	rows, rowErrs, err := csvimport.DecodeOffers(artifact, s.decodeOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", integration.ErrArtifactDecode, err)
	}
	for _, re := range rowErrs {
		log.Warn("Skipping unreadable export row", zap.Error(re))
	}
	log.Info("Offer export decoded", zap.Int("rows", len(rows)), zap.Int("skipped", len(rowErrs)))

	enriched, err := s.enricher.Enrich(ctx, client, rows)
	if err != nil {
		return nil, err
	}

	processed, err := s.reconciler.Reconcile(ctx, tenantID, clientID, enriched)
	if err != nil {
		return nil, err
	}

	if err := s.staging.Stage(ctx, tenantID, clientID, integration.PlatformCodeBolCom, enriched, s.settings.StagingTTL); err != nil {
		return nil, fmt.Errorf("stage products: %w", err)
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrProductCount, len(processed))
	log.Info("Bol.com import finished", zap.Int("products", len(processed)))

	return &integration.FetchResult{Products: processed, Count: len(processed)}, nil
}

// runExport requests an offer export, polls it until it settles and downloads
// the artifact. A job still pending after MaxPolls polls fails with
// ErrExportTimeout and is never downloaded.
func (s *BolComImportService) runExport(ctx context.Context, client integration.OfferExportClient, log *zap.Logger) ([]byte, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "bolcom_import", "export")
	defer span.End()

	job := integration.NewExportJob()

	processStatusID, err := client.RequestOfferExport(ctx)
	if err != nil {
		job.Fail(err.Error())
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("request offer export: %w", err)
	}
	if err := job.Requested(processStatusID); err != nil {
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrProcessStatusID, processStatusID)
	log.Info("Offer export requested", zap.String("process_status_id", processStatusID))

	for {
		status, err := client.GetProcessStatus(ctx, processStatusID)
		if err != nil {
			job.Fail(err.Error())
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("poll export status: %w", err)
		}

		done, err := job.Observe(status)
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		if job.Polls >= s.settings.MaxPolls {
			job.Fail("export still pending")
			s.metrics.RecordExportPolls(ctx, integration.PlatformCodeBolCom.String(), job.Polls)
			telemetry.RecordError(span, integration.ErrExportTimeout)
			return nil, fmt.Errorf("%w: still pending after %d polls", integration.ErrExportTimeout, job.Polls)
		}

		log.Debug("Offer export pending", zap.Int("poll", job.Polls))
		if err := s.sleep(ctx, s.settings.PollInterval); err != nil {
			job.Fail(err.Error())
			return nil, err
		}
	}

	s.metrics.RecordExportPolls(ctx, integration.PlatformCodeBolCom.String(), job.Polls)
	telemetry.SetAttributes(span, telemetry.SpanAttrPolls, job.Polls)

	if job.State == integration.ExportStateFailed {
		err := fmt.Errorf("%w: %s", integration.ErrExportFailed, job.FailureReason)
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrEntityID, job.EntityID)
	data, err := client.DownloadOfferExport(ctx, job.EntityID)
	if err != nil {
		job.Fail(err.Error())
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("download offer export: %w", err)
	}
	if err := job.Complete(); err != nil {
		return nil, err
	}

	log.Info("Offer export downloaded",
		zap.String("entity_id", job.EntityID),
		zap.Int("polls", job.Polls),
		zap.Int("bytes", len(data)),
	)
	telemetry.SetOK(span)
	return data, nil
}

func (s *BolComImportService) archiveArtifact(ctx context.Context, tenantID, clientID uuid.UUID, data []byte, log *zap.Logger) {
	if s.archive == nil {
		return
	}
	key, err := s.archive.Archive(ctx, tenantID, clientID, integration.PlatformCodeBolCom, data)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Warn("Archiving offer export failed", zap.Error(err))
		}
		return
	}
	if key != "" {
		log.Debug("Offer export archived", zap.String("key", key))
	}
}
