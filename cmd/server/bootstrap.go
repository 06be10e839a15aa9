package main

import (
	"context"
	"fmt"

	"github.com/facultymis/backend/internal/application/report"
	domain "github.com/facultymis/backend/internal/domain/report"
	"github.com/facultymis/backend/internal/infrastructure/cache"
	"github.com/facultymis/backend/internal/infrastructure/config"
	"github.com/facultymis/backend/internal/infrastructure/logger"
	"github.com/facultymis/backend/internal/infrastructure/persistence"
	"github.com/facultymis/backend/internal/infrastructure/printing"
	"github.com/facultymis/backend/internal/infrastructure/source"
	"github.com/facultymis/backend/internal/infrastructure/storage"
	"github.com/facultymis/backend/internal/infrastructure/telemetry"
	"github.com/facultymis/backend/internal/interfaces/http/handler"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// telemetryStack holds the OpenTelemetry providers, the profiler and the logger bridged
// into OTLP logs
type telemetryStack struct {
	logger        *zap.Logger
	tracer        *telemetry.TracerProvider
	meters        *telemetry.MeterProvider
	logs          *telemetry.LoggerProvider
	profiler      *telemetry.Profiler
	meter         metric.Meter
	reportMetrics *telemetry.ReportMetrics
}

func setupTelemetry(ctx context.Context, cfg *config.Config, base *zap.Logger) (*telemetryStack, error) {
	tc := cfg.Telemetry
	t := &telemetryStack{logger: base}

	var err error
	t.tracer, err = telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           tc.Enabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		SamplingRatio:     tc.SamplingRatio,
		ServiceName:       tc.ServiceName,
		Insecure:          tc.Insecure,
	}, base)
	if err != nil {
		return nil, fmt.Errorf("tracer provider: %w", err)
	}

	t.meters, err = telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           tc.MetricsEnabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		ExportInterval:    tc.MetricsExportInterval,
		ServiceName:       tc.ServiceName,
		Insecure:          tc.Insecure,
	}, base)
	if err != nil {
		return nil, fmt.Errorf("meter provider: %w", err)
	}
	t.reportMetrics = telemetry.NopReportMetrics()
	if t.meters.IsEnabled() {
		t.meter = t.meters.Meter(tc.ServiceName)
		if t.reportMetrics, err = telemetry.NewReportMetrics(t.meter); err != nil {
			return nil, fmt.Errorf("report metrics: %w", err)
		}
	}

	t.logs, err = telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           tc.LogsEnabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		ServiceName:       tc.ServiceName,
		Insecure:          tc.Insecure,
	}, base)
	if err != nil {
		return nil, fmt.Errorf("logger provider: %w", err)
	}
	if t.logs.IsEnabled() {
		t.logger = telemetry.NewBridgedLogger(base, telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
			ServiceName:    tc.ServiceName,
			LoggerProvider: t.logs,
			Level:          logger.ParseLevel(tc.LogsLevel),
		}))
	}

	t.profiler, err = telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           tc.ProfilingEnabled,
		ServerAddress:     tc.ProfilingServerAddress,
		ApplicationName:   tc.ServiceName,
		BasicAuthUser:     tc.ProfilingBasicAuthUser,
		BasicAuthPassword: tc.ProfilingBasicAuthPass,
		ProfileTypes:      tc.ProfilingProfileTypes,
	}, base)
	if err != nil {
		return nil, fmt.Errorf("profiler: %w", err)
	}
	if tc.ProfilingEnabled && tc.SpanProfilesEnabled {
		if err := t.tracer.EnableSpanProfiles(); err != nil {
			return nil, fmt.Errorf("span profiles: %w", err)
		}
	}
	return t, nil
}

// shutdown flushes every provider; failures are logged, not returned
func (t *telemetryStack) shutdown(ctx context.Context) {
	if err := t.profiler.Stop(); err != nil {
		t.logger.Warn("Profiler stop failed", zap.Error(err))
	}
	if err := t.tracer.Shutdown(ctx); err != nil {
		t.logger.Warn("Tracer provider shutdown failed", zap.Error(err))
	}
	if err := t.meters.Shutdown(ctx); err != nil {
		t.logger.Warn("Meter provider shutdown failed", zap.Error(err))
	}
	if err := t.logs.Shutdown(ctx); err != nil {
		t.logger.Warn("Logger provider shutdown failed", zap.Error(err))
	}
}

// reportDeps are the collaborators of the report service and the records API
type reportDeps struct {
	registry     *domain.Registry
	units        domain.UnitDirectory
	source       domain.Source
	records      handler.RecordReader
	renderer     printing.PDFRenderer
	archive      report.ExportArchive
	healthChecks []handler.HealthCheck
	closers      []func() error
}

func (d *reportDeps) close(log *zap.Logger) {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			log.Warn("Error closing dependency", zap.Error(err))
		}
	}
	d.closers = nil
}

func setupReportDeps(ctx context.Context, cfg *config.Config, log *zap.Logger, tel *telemetryStack) (*reportDeps, error) {
	d := &reportDeps{registry: domain.DefaultRegistry()}
	fail := func(err error) (*reportDeps, error) {
		d.close(log)
		return nil, err
	}

	switch cfg.Source.Mode {
	case config.SourceModeDatabase:
		db, err := persistence.NewDatabase(&cfg.Database, persistence.Options{
			Logger:   log,
			LogLevel: cfg.Log.Level,
			Tracing: telemetry.DBTracingConfig{
				Enabled:         cfg.Telemetry.DBTraceEnabled,
				LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
				SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			},
		})
		if err != nil {
			return fail(fmt.Errorf("records database: %w", err))
		}
		d.closers = append(d.closers, db.Close)
		d.healthChecks = append(d.healthChecks, handler.HealthCheck{
			Name:  "database",
			Check: func(context.Context) error { return db.Ping() },
		})
		store := persistence.NewRecordStore(db.DB)
		d.source, d.units, d.records = store, store, store
		log.Info("Reading records from the database", zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.DBName))

	default:
		src, err := source.NewHTTPSource(cfg.Source, log)
		if err != nil {
			return fail(fmt.Errorf("records API: %w", err))
		}
		d.source, d.units = src, src
		log.Info("Reading records from the records API", zap.String("base_url", cfg.Source.BaseURL))
	}

	if cfg.Cache.Enabled {
		rc, err := cache.NewRowCacheFactory(cfg.Redis,
			cache.WithLogger(log),
			cache.WithInMemoryFallback(cfg.App.Env != "production"),
		).CreateCache(ctx)
		if err != nil {
			return fail(fmt.Errorf("row cache: %w", err))
		}
		d.closers = append(d.closers, rc.Close)
		d.source = source.NewCachedSource(d.source, rc, cfg.Cache.RowTTL, log, tel.reportMetrics)
	}

	if cfg.Printing.Enabled {
		renderer := printing.NewChromedpRenderer(cfg.Printing, log)
		d.closers = append(d.closers, renderer.Close)
		d.renderer = renderer
	}

	if cfg.Storage.Enabled {
		archive, err := storage.NewS3ExportArchive(ctx, cfg.Storage, storage.WithLogger(log))
		if err != nil {
			return fail(fmt.Errorf("export archive: %w", err))
		}
		d.archive = archive
	}
	return d, nil
}
