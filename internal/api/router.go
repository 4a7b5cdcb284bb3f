package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/acme/catalog-system/docs"
	"github.com/acme/catalog-system/internal/api/handler"
	"github.com/acme/catalog-system/internal/api/middleware"
	"github.com/acme/catalog-system/internal/core/domain"
	"github.com/acme/catalog-system/internal/core/ports"
	"github.com/acme/catalog-system/internal/core/validation"
	"github.com/acme/catalog-system/internal/infrastructure/http/handlers"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Log       zerolog.Logger
	Realm     string
	Validator *validation.Validator

	Auth      ports.AuthService
	Books     ports.CatalogService[*domain.Book]
	Films     ports.CatalogService[*domain.Film]
	BookFiles ports.FileService
	FilmFiles ports.FileService

	// Limiter is optional; nil disables rate limiting.
	Limiter         middleware.Limiter
	RateLimitMax    int
	RateLimitWindow time.Duration

	UploadMaxSize   string
	ReadinessChecks map[string]handlers.Check

	// Registry receives the HTTP metrics and backs /metrics. Nil means the
	// default Prometheus registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log, d.Realm)
	e.Validator = handler.NewValidator(d.Validator)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.RequestLoggerWithConfig(requestLogger(d.Log)))

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "catalog",
		Registerer: registerer,
	}))

	// --- Health probes and metrics (no auth, no rate limit) ---
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	e.GET("/health/ready", handlers.NewReadinessHandler(d.ReadinessChecks).Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	g := e.Group("/api")
	if d.Limiter != nil {
		g.Use(middleware.RateLimit(d.Limiter, d.RateLimitMax, d.RateLimitWindow, d.Log))
	}

	g.POST("/login", handler.NewAuthHandler(d.Auth).Login)

	authn := middleware.Authenticate(d.Auth)
	routes := catalogRoutes{
		authn:    authn,
		writers:  middleware.RequireRoles(d.Auth, domain.RoleAdmin, domain.RoleStaff),
		admins:   middleware.RequireRoles(d.Auth, domain.RoleAdmin),
		bodySize: echomiddleware.BodyLimit(uploadLimit(d.UploadMaxSize)),
	}

	bookPath := "/api/" + domain.BookSchema.Collection
	registerCatalog(g.Group("/"+domain.BookSchema.Collection), routes,
		handler.NewCatalogHandler(d.Books, domain.BookSchema, bookPath),
		handler.NewFileHandler(d.BookFiles))

	filmPath := "/api/" + domain.FilmSchema.Collection
	registerCatalog(g.Group("/"+domain.FilmSchema.Collection), routes,
		handler.NewCatalogHandler(d.Films, domain.FilmSchema, filmPath),
		handler.NewFileHandler(d.FilmFiles))

	return e
}

type catalogRoutes struct {
	authn    echo.MiddlewareFunc
	writers  echo.MiddlewareFunc
	admins   echo.MiddlewareFunc
	bodySize echo.MiddlewareFunc
}

func registerCatalog[E domain.Entity](g *echo.Group, r catalogRoutes, h *handler.CatalogHandler[E], files *handler.FileHandler) {
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create, r.authn, r.writers)
	g.PUT("/:id", h.Update, r.authn, r.writers)
	g.DELETE("/:id", h.Delete, r.authn, r.admins)

	g.GET("/:id/file", files.Download)
	g.PUT("/:id/file", files.Upload, r.authn, r.writers, r.bodySize)
}

func uploadLimit(size string) string {
	if size == "" {
		return "10M"
	}
	return size
}

func requestLogger(log zerolog.Logger) echomiddleware.RequestLoggerConfig {
	return echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	}
}
