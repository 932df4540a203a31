package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/wms/backend/internal/application/integration"
	"github.com/wms/backend/internal/infrastructure/cache"
	"github.com/wms/backend/internal/infrastructure/config"
	"github.com/wms/backend/internal/infrastructure/ecommerce"
	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/infrastructure/persistence"
	"github.com/wms/backend/internal/infrastructure/retry"
	"github.com/wms/backend/internal/infrastructure/storage"
	"github.com/wms/backend/internal/infrastructure/telemetry"
	"github.com/wms/backend/internal/interfaces/http/handler"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting WMS Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	if err := run(cfg, log); err != nil {
		log.Fatal("Server stopped with error", zap.Error(err))
	}
	log.Info("Server exited gracefully")
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return err
	}
	defer shutdownProvider(log, "tracer", func(ctx context.Context) error {
		if err := tracerProvider.ForceFlush(ctx); err != nil {
			log.Warn("Flushing pending spans failed", zap.Error(err))
		}
		return tracerProvider.Shutdown(ctx)
	})

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return err
	}
	defer shutdownProvider(log, "meter", meterProvider.Shutdown)

	meter := meterProvider.Meter(telemetry.TracerName)
	syncMetrics, err := telemetry.NewSyncMetrics(meter)
	if err != nil {
		return err
	}

	// Database, with the zap-backed GORM logger and otelgorm tracing
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(gormLog),
		persistence.WithPlugin(telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         cfg.Telemetry.DBTraceEnabled,
			LogFullSQL:      !cfg.IsProduction(),
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		}, log)),
	)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	productRepo := persistence.NewGormProductRepository(db.DB)
	integrationRepo := persistence.NewGormIntegrationRepository(db.DB)

	// Staging store and export archive
	staging, err := cache.NewStagedStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := staging.Close(); err != nil {
			log.Error("Error closing staged product store", zap.Error(err))
		}
	}()

	archive, err := storage.NewArtifactArchive(ctx, &cfg.Storage, log)
	if err != nil {
		return err
	}

	// Platform clients
	bol := cfg.Integration.BolCom
	woo := cfg.Integration.WooCommerce
	clients := ecommerce.NewClientFactory(ecommerce.FactoryConfig{
		BolComAPIURL:       bol.APIURL,
		BolComTokenURL:     bol.TokenURL,
		BolComAPIVersion:   bol.APIVersion,
		BolComMaxExport:    bol.MaxExportSize,
		WooPerPage:         woo.PerPage,
		WooWeightUnit:      woo.WeightUnit,
		WooDimensionUnit:   woo.DimensionUnit,
		RequestTimeoutSecs: int(cfg.Integration.RequestTimeout / time.Second),
	}, nil)

	// Application services
	enricher := integration.NewCatalogEnricher(log,
		integration.WithItemDelay(bol.ItemDelay),
		integration.WithRetryPolicy(retry.Policy{
			MaxAttempts:  bol.RateLimitRetries + 1,
			DefaultDelay: bol.RateLimitDefault,
			Sleep:        retry.Sleep,
			OnRetry: func(attempt int, delay time.Duration, err error) {
				log.Warn("Catalog request rate limited, retrying",
					zap.Int("attempt", attempt),
					zap.Duration("delay", delay),
					zap.Error(err),
				)
			},
		}),
		integration.WithEnricherMetrics(syncMetrics),
	)
	reconciler := integration.NewReconciler(productRepo)
	committer := integration.NewImportCommitter(productRepo, log)

	bolcomService := integration.NewBolComImportService(integrationRepo, clients, enricher, reconciler, staging, log,
		integration.WithExportSettings(integration.ExportSettings{
			PollInterval: bol.PollInterval,
			MaxPolls:     bol.MaxPollAttempts,
			StagingTTL:   cfg.Integration.StagingTTL,
		}),
		integration.WithArtifactArchive(archive),
		integration.WithBolComMetrics(syncMetrics),
	)
	wooService := integration.NewWooCommerceService(integrationRepo, clients, reconciler, staging, log,
		integration.WithStagingTTL(cfg.Integration.StagingTTL),
		integration.WithWooCommerceMetrics(syncMetrics),
	)
	importService := integration.NewImportService(staging, reconciler, committer, log, syncMetrics)

	// HTTP
	integrationHandler := handler.NewIntegrationHandler(bolcomService, wooService, importService)
	healthHandler := handler.NewHealthHandler().
		WithCheck("database", func(context.Context) error { return db.Ping() }).
		WithCheck("staging", staging.Ping)

	engine := newEngine(cfg, log, meter, integrationHandler, healthHandler)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func shutdownProvider(log *zap.Logger, name string, shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		log.Error("Error shutting down telemetry provider", zap.String("provider", name), zap.Error(err))
	}
}
