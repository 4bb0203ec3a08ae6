package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/arklim/tourism-api/internal/infra/config"
	"github.com/arklim/tourism-api/internal/infra/telemetry"
	"github.com/arklim/tourism-api/internal/transport/http/handlers"
	"github.com/arklim/tourism-api/internal/transport/http/middleware"
)

// ServiceSet groups the services the HTTP layer depends on. Nil members leave
// their routes unregistered.
type ServiceSet struct {
	Accounts    handlers.AccountService
	Attractions handlers.AttractionCatalogue
	Trips       handlers.TripPlanner
	Reviews     handlers.ReviewBook
	Analytics   handlers.TrafficReporter
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config         *config.AppConfig
	Logger         *zap.Logger
	Tokens         middleware.TokenVerifier
	Blacklist      middleware.BlacklistChecker
	AuthMetrics    *telemetry.AuthMetrics
	HTTPMetrics    *middleware.HTTPMetrics
	MetricsHandler http.Handler
	RateLimiter    *middleware.RateLimiter
	Services       ServiceSet
	Database       DatabaseChecker
	Cache          CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if deps.Config != nil && deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	handlers.ConfigureValidator()

	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("trace_id", middleware.GetTraceID(c)),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, handlers.NewErrorResponse(c, handlers.UnexpectedErrorMessage))
	}))
	r.Use(middleware.RequestID())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.Logger(log))
	r.Use(deps.HTTPMetrics.Handler())

	if deps.Config != nil && len(deps.Config.CORS.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(deps.Config.CORS.AllowedOrigins))
	}

	if deps.Tokens != nil && deps.Blacklist != nil {
		r.Use(middleware.Authenticate(deps.Tokens, deps.Blacklist, deps.AuthMetrics, log))
	} else {
		log.Warn("token verifier not configured, every request is anonymous")
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handlers.NewErrorResponse(c, "Endpoint not found"))
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, handlers.NewErrorResponse(c, "Method not allowed"))
	})

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("postgres", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}
	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	metricsHandler := deps.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.GET("/metrics", gin.WrapH(metricsHandler))

	api := r.Group("/api")
	{
		if deps.Services.Accounts != nil {
			handlers.NewUserHandler(deps.Services.Accounts).RegisterRoutes(api.Group("/users"), buildLoginMiddlewares(deps)...)
		}
		if deps.Services.Attractions != nil {
			handlers.NewAttractionHandler(deps.Services.Attractions).RegisterRoutes(api.Group("/attractions"))
		}
		if deps.Services.Trips != nil {
			handlers.NewTripHandler(deps.Services.Trips).RegisterRoutes(api.Group("/trips"))
		}
		if deps.Services.Reviews != nil {
			handlers.NewReviewHandler(deps.Services.Reviews).RegisterRoutes(api.Group("/reviews"))
		}
		if deps.Services.Analytics != nil {
			handlers.NewAnalyticsHandler(deps.Services.Analytics).RegisterRoutes(api.Group("/admin"))
		}
	}

	return r
}

func buildLoginMiddlewares(deps Dependencies) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil {
		return nil
	}

	limit := deps.Config.RateLimit.LoginMaxAttempts
	if limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Name:       "login_ip",
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}
