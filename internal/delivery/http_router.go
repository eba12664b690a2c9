package delivery

import (
	"time"

	"attrgo/internal/delivery/middleware"
	"attrgo/pkg/logger"
	"attrgo/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type HTTPRouter struct {
	handlers *HTTPHandlers
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewHTTPRouter(handlers *HTTPHandlers, logger *logger.Logger, metrics *metrics.Metrics) *HTTPRouter {
	return &HTTPRouter{
		handlers: handlers,
		logger:   logger,
		metrics:  metrics,
	}
}

func (r *HTTPRouter) SetupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.Recovery(r.logger))
	router.Use(middleware.Metrics(r.metrics))
	router.Use(middleware.Timeout(30 * time.Second))

	// Funnel sites live on arbitrary tenant domains, and the tracking calls
	// carry cookies, so origins must be reflected rather than wildcarded.
	config := cors.DefaultConfig()
	config.AllowOriginFunc = func(origin string) bool { return true }
	config.AllowCredentials = true
	config.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Content-Type", "X-Request-ID"}
	config.ExposeHeaders = []string{"X-Request-ID"}

	router.Use(cors.New(config))

	// Health endpoint
	router.GET("/health", r.handlers.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/", r.handlers.GetAPIInfo)
		v1.GET("", r.handlers.GetAPIInfo)

		// Form endpoints
		forms := v1.Group("/forms")
		{
			forms.POST("/submit", r.handlers.SubmitForm)
		}

		// Tracking endpoints
		tracking := v1.Group("/tracking")
		{
			tracking.POST("/pageview", r.handlers.TrackPageview)
			tracking.POST("/conversion", r.handlers.TrackConversion)
			tracking.GET("/attribution", r.handlers.GetAttribution)
			tracking.DELETE("/attribution", r.handlers.ClearAttribution)
		}

		// Lead endpoints
		leads := v1.Group("/leads")
		{
			leads.GET("", r.handlers.GetLeads)
		}
	}

	// Prometheus metrics endpoint
	router.GET("/metrics", middleware.PrometheusHandler())

	return router
}
