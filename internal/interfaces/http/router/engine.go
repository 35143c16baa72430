package router

import (
	"net/http"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/config"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/logger"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/interfaces/http/dto"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/heptiolabs/healthcheck"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// EngineConfig configures the gin engine and its global middleware
type EngineConfig struct {
	ServiceName string
	HTTP        config.HTTPConfig
	Security    middleware.SecurityConfig
	Swagger     middleware.SwaggerConfig
	// Meter records HTTP metrics. Nil disables them.
	Meter     metric.Meter
	Profiling bool
	// Health serves /health/live and /health/ready. Nil serves 200 on both.
	Health healthcheck.Handler
	// Limiter throttles every API request when HTTP.RateLimitEnabled is set
	Limiter middleware.Limiter
	Logger  *zap.Logger
}

// NewEngine builds the engine with the middleware stack applied in order:
// request id, access log, recovery, tracing, metrics, profiling labels,
// CORS, security headers, body limit and request timeout.
func NewEngine(cfg EngineConfig) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			return nil, err
		}
	}

	metrics, err := middleware.HTTPMetrics(cfg.Meter)
	if err != nil {
		return nil, err
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log, "/health"),
		logger.Recovery(log),
		middleware.Tracing(cfg.ServiceName),
		middleware.SpanEnricher(),
		metrics,
		middleware.Profiling(cfg.Profiling),
		middleware.CORSWithConfig(cors),
		middleware.SecureWithConfig(cfg.Security),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)
	if cfg.HTTP.RequestTimeout > 0 {
		engine.Use(middleware.Timeout(cfg.HTTP.RequestTimeout))
	}
	if cfg.HTTP.RateLimitEnabled && cfg.Limiter != nil {
		engine.Use(middleware.RateLimit(cfg.Limiter, log))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.Limiter.Limit()),
			zap.Duration("window", cfg.HTTP.RateLimitWindow))
	}

	engine.NoRoute(notFound)
	engine.NoMethod(methodNotAllowed)

	health := cfg.Health
	if health == nil {
		health = healthcheck.NewHandler()
	}
	engine.GET("/health/live", gin.WrapF(health.LiveEndpoint))
	engine.GET("/health/ready", gin.WrapF(health.ReadyEndpoint))

	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger),
		ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.PersistAuthorization(true)))

	return engine, nil
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeNotFound, "Route not found", middleware.GetRequestID(c)))
}

func methodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeBadRequest, "Method not allowed", middleware.GetRequestID(c)))
}
