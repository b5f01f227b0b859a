package httpserver

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"meetscribe-server/internal/config"
	authvalidator "meetscribe-server/internal/infrastructure/auth"
	"meetscribe-server/internal/infrastructure/metrics"
	middleware "meetscribe-server/internal/interfaces/httpserver/middlewares"
	"meetscribe-server/internal/interfaces/httpserver/routes/cron"
	v1 "meetscribe-server/internal/interfaces/httpserver/routes/v1"
)

type HTTPServer struct {
	engine    *gin.Engine
	v1Route   *v1.V1Route
	cronRoute *cron.CronRoute
	validator *authvalidator.SessionValidator
	logger    zerolog.Logger
	config    *config.Config
}

func NewHTTPServer(
	v1Route *v1.V1Route,
	cronRoute *cron.CronRoute,
	validator *authvalidator.SessionValidator,
	logger zerolog.Logger,
	cfg *config.Config,
) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)
	server := &HTTPServer{
		gin.New(),
		v1Route,
		cronRoute,
		validator,
		logger,
		cfg,
	}
	server.engine.Use(middleware.RequestID())
	server.engine.Use(middleware.TracingMiddleware(cfg.ServiceName))
	server.engine.Use(middleware.LoggingMiddleware(logger))
	server.engine.Use(middleware.CORSMiddleware())
	server.engine.Use(middleware.MetricsMiddleware())

	server.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Ready once the JWKS key set has been fetched; until then auth would
	// reject every session token.
	server.engine.GET("/readyz", func(c *gin.Context) {
		if !server.validator.Ready() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "starting"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	server.engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	return server
}

func (httpServer *HTTPServer) Run() error {
	// Protected routes (session auth applied)
	protected := httpServer.engine.Group("/")
	protected.Use(
		middleware.AuthMiddleware(httpServer.validator, httpServer.logger),
	)
	httpServer.v1Route.RegisterRouter(protected)

	// Scheduler entry points share one bearer secret instead of user sessions.
	internal := httpServer.engine.Group("/")
	internal.Use(
		middleware.CronAuthMiddleware(httpServer.config.CronSecret, httpServer.logger),
	)
	httpServer.cronRoute.RegisterRouter(internal)

	if err := httpServer.engine.Run(fmt.Sprintf(":%d", httpServer.config.HTTPPort)); err != nil {
		return err
	}
	return nil
}
