package router

import (
	"github.com/facultymis/backend/internal/domain/report"
	"github.com/facultymis/backend/internal/infrastructure/auth"
	"github.com/facultymis/backend/internal/infrastructure/logger"
	"github.com/facultymis/backend/internal/interfaces/http/handler"
	"github.com/facultymis/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers the engine mounts. Records is nil unless the
// records database is attached.
type Handlers struct {
	System  *handler.SystemHandler
	Report  *handler.ReportHandler
	Records *handler.RecordsHandler
}

// EngineConfig wires the middleware chain
type EngineConfig struct {
	Logger         *zap.Logger
	JWTService     *auth.JWTService
	Meter          metric.Meter
	CORS           middleware.CORSConfig
	MaxBodySize    int64
	Tracing        middleware.TracingConfig
	Profiling      middleware.ProfilingConfig
	TrustedProxies []string
	Swagger        middleware.SwaggerConfig

	// RateLimiter throttles every request per client IP; nil disables it
	RateLimiter *middleware.RateLimiter
	// ExportLimiter throttles export endpoints per caller; nil disables it
	ExportLimiter *middleware.RateLimiter
}

// NewEngine builds the gin engine with the full middleware chain and every route
func NewEngine(cfg EngineConfig, h Handlers) (*gin.Engine, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		logger.Recovery(cfg.Logger),
		middleware.RequestID(),
		logger.GinMiddleware(cfg.Logger),
		middleware.Secure(),
		middleware.CORSWithConfig(cfg.CORS),
	)
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}
	engine.Use(
		middleware.TracingWithConfig(cfg.Tracing),
		middleware.SpanErrorMarker(),
		middleware.HTTPMetrics(cfg.Meter, cfg.Logger),
	)
	if cfg.RateLimiter != nil {
		engine.Use(middleware.RateLimitByKey(cfg.RateLimiter, middleware.ClientIPKey))
	}

	if h.System != nil {
		engine.GET("/health", h.System.Health)
		engine.GET("/ready", h.System.Health)
	}

	authenticated := []gin.HandlerFunc{
		middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService: cfg.JWTService,
			Logger:     cfg.Logger,
		}),
		middleware.TracingAttributeInjector(),
		middleware.ProfilingWithConfig(cfg.Profiling),
	}

	if cfg.Swagger.Enabled {
		engine.GET("/swagger/*any",
			middleware.SwaggerProtection(cfg.Swagger, authenticated[0]),
			ginSwagger.WrapHandler(swaggerFiles.Handler),
		)
	}

	var groups []*DomainGroup
	r := NewRouter(engine)
	if h.System != nil {
		groups = append(groups, SystemRoutes(h.System))
		r.Register(groups[len(groups)-1])
	}
	if h.Report != nil {
		groups = append(groups, ReportRoutes(h.Report, cfg.ExportLimiter).Use(authenticated...))
		r.Register(groups[len(groups)-1])
	}
	r.Setup()

	if h.Records != nil {
		records := RecordsRoutes(h.Records).Use(authenticated...)
		records.RegisterRoutes(engine.Group("/api"))
		groups = append(groups, records)
	}
	for _, g := range groups {
		cfg.Logger.Debug("Routes registered", zap.String("group", g.Name()), zap.Int("routes", g.RouteCount()))
	}
	return engine, nil
}

// SystemRoutes are the unauthenticated system endpoints
func SystemRoutes(h *handler.SystemHandler) *DomainGroup {
	return NewDomainGroup("system", "/system").
		GET("/ping", h.Ping).
		GET("/info", h.GetSystemInfo)
}

// ReportRoutes are the catalogue, view and export endpoints. Exports are throttled
// per caller when exportLimiter is set.
func ReportRoutes(h *handler.ReportHandler, exportLimiter *middleware.RateLimiter) *DomainGroup {
	export := func(final gin.HandlerFunc) []gin.HandlerFunc {
		if exportLimiter == nil {
			return []gin.HandlerFunc{final}
		}
		return []gin.HandlerFunc{middleware.RateLimitByKey(exportLimiter, middleware.CallerKey), final}
	}

	reports := NewDomainGroup("reports", "")
	reports.GET("/entities", h.ListEntities).
		GET("/entities/:entity", h.GetEntity).
		GET("/entities/:entity/export", export(h.ExportEntity)...).
		GET("/units", h.ListUnits).
		GET("/summary", h.Summary)

	reports.Group("views", "/views").
		POST("", h.OpenView).
		GET("/:id", h.GetView).
		PUT("/:id/entity", h.SelectEntity).
		PUT("/:id/scope", h.SetScope).
		PUT("/:id/filter", h.SetFilter).
		PUT("/:id/columns", h.SetColumns).
		POST("/:id/refresh", h.Refresh).
		GET("/:id/export", export(h.ExportView)...).
		DELETE("/:id", h.CloseView)
	return reports
}

// RecordsRoutes are the raw record endpoints the HTTP source reads from
func RecordsRoutes(h *handler.RecordsHandler) *DomainGroup {
	records := NewDomainGroup("records", "")
	records.Group("hod", "/hod").
		Use(middleware.RequireRoles(report.RoleAdmin, report.RolePrincipal, report.RoleHOD)).
		GET("/branches", h.ListBranches).
		GET("/:entity", h.ListBranchRecords)
	records.Group("principal", "/principal").
		Use(middleware.RequireRoles(report.RoleAdmin, report.RolePrincipal)).
		GET("/:entity", h.ListAllRecords)
	return records
}
