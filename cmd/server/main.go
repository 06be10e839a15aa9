package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/facultymis/backend/docs"
	appreport "github.com/facultymis/backend/internal/application/report"
	"github.com/facultymis/backend/internal/domain/report"
	"github.com/facultymis/backend/internal/infrastructure/auth"
	"github.com/facultymis/backend/internal/infrastructure/config"
	"github.com/facultymis/backend/internal/infrastructure/logger"
	"github.com/facultymis/backend/internal/interfaces/http/handler"
	"github.com/facultymis/backend/internal/interfaces/http/middleware"
	"github.com/facultymis/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is stamped at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Faculty MIS Reports API
//	@version		1.0
//	@description	Faculty records reporting: entity views, filters and CSV/PDF export

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	baseLog, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := setupTelemetry(ctx, cfg, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	log := tel.logger
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Faculty MIS backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("source_mode", cfg.Source.Mode),
		zap.String("version", version),
	)

	deps, err := setupReportDeps(ctx, cfg, log, tel)
	if err != nil {
		log.Fatal("Failed to initialize report dependencies", zap.Error(err))
	}
	defer deps.close(log)

	reportService := appreport.NewReportService(appreport.ServiceDeps{
		Registry: deps.registry,
		Units:    deps.units,
		Source:   deps.source,
		Renderer: deps.renderer,
		Archive:  deps.archive,
		Views:    cfg.Views,
		Export: report.ExportOptions{
			IncludeBOM: cfg.Export.IncludeBOM,
			DateSuffix: cfg.Export.DateSuffix,
		},
		ArchiveExpiry: cfg.Export.ArchiveExpiry,
		Metrics:       tel.reportMetrics,
		Logger:        log,
	})
	views := reportService.Views()
	views.Start(ctx)

	handlers := router.Handlers{
		System: handler.NewSystemHandler(version, deps.healthChecks...),
		Report: handler.NewReportHandler(reportService),
	}
	if deps.records != nil {
		handlers.Records = handler.NewRecordsHandler(deps.registry, deps.records)
	}

	engineCfg := router.EngineConfig{
		Logger:      log,
		JWTService:  auth.NewJWTService(cfg.JWT),
		Meter:       tel.meter,
		MaxBodySize: cfg.HTTP.MaxBodySize,
		CORS: middleware.CORSConfig{
			AllowOrigins:  cfg.HTTP.CORSAllowOrigins,
			AllowMethods:  cfg.HTTP.CORSAllowMethods,
			AllowHeaders:  cfg.HTTP.CORSAllowHeaders,
			ExposeHeaders: []string{middleware.RequestIDHeader, handler.HeaderRowCount, handler.HeaderColumnCount, "Content-Disposition"},
			MaxAge:        12 * time.Hour,
		},
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		},
		Profiling: middleware.ProfilingConfig{
			Enabled:   cfg.Telemetry.ProfilingEnabled,
			SkipPaths: []string{"/health", "/ready"},
		},
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Swagger: middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		},
	}
	if cfg.HTTP.RateLimitEnabled {
		engineCfg.RateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow, 0)
		go engineCfg.RateLimiter.Run(ctx, cfg.HTTP.RateLimitWindow)
	}
	if cfg.HTTP.ExportRatePerMinute > 0 {
		engineCfg.ExportLimiter = middleware.NewRateLimiter(cfg.HTTP.ExportRatePerMinute, time.Minute, cfg.HTTP.ExportBurst)
		go engineCfg.ExportLimiter.Run(ctx, time.Minute)
	}

	engine, err := router.NewEngine(engineCfg, handlers)
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	failed := false
	select {
	case <-ctx.Done():
		log.Info("Shutting down server...")
	case err := <-serveErr:
		if err != nil {
			log.Error("Server failed", zap.Error(err))
			failed = true
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := views.Stop(shutdownCtx); err != nil {
		log.Warn("View janitor did not stop in time", zap.Error(err))
	}
	tel.shutdown(shutdownCtx)

	if failed {
		deps.close(log)
		_ = log.Sync()
		os.Exit(1)
	}
	log.Info("Server exited gracefully")
}
