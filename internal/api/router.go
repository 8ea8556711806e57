package api

import (
	"github.com/gin-gonic/gin"

	"github.com/nkjh2020/investment-manager/internal/api/handlers"
	portfolioHandlers "github.com/nkjh2020/investment-manager/internal/api/handlers/portfolio"
	signalsHandlers "github.com/nkjh2020/investment-manager/internal/api/handlers/signals"
	"github.com/nkjh2020/investment-manager/internal/api/middleware"
	"github.com/nkjh2020/investment-manager/internal/api/routes"
	"github.com/nkjh2020/investment-manager/internal/pkg/config"
	"github.com/nkjh2020/investment-manager/internal/pkg/logger"
)

// Deps services the router exposes
type Deps struct {
	Signals   signalsHandlers.SignalService
	Portfolio portfolioHandlers.Service
	Health    handlers.HealthDeps
	Version   string
}

// Router holds all dependencies for API routing
type Router struct {
	engine *gin.Engine
	config *config.Config

	healthHandler    *handlers.HealthHandler
	signalsHandler   *signalsHandlers.Handler
	portfolioHandler *portfolioHandlers.Handler
}

// NewRouter creates a new API router with all dependencies
func NewRouter(cfg *config.Config, deps Deps) *Router {
	gin.SetMode(cfg.Server.Mode)

	r := &Router{
		engine:           gin.New(),
		config:           cfg,
		healthHandler:    handlers.NewHealthHandler(deps.Health, deps.Version),
		signalsHandler:   signalsHandlers.NewHandler(deps.Signals),
		portfolioHandler: portfolioHandlers.NewHandler(deps.Portfolio),
	}

	r.setupMiddlewares()
	r.setupRoutes()

	return r
}

// setupMiddlewares configures all global middlewares
func (r *Router) setupMiddlewares() {
	// RequestID 먼저: Recovery 응답에도 request_id 포함
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Recovery())

	accessLogger := logger.NewAccessLogger(logger.Config{
		FileEnabled:   r.config.Logging.FileEnabled,
		FilePath:      r.config.Logging.FilePath,
		RotationSize:  r.config.Logging.RotationSize,
		RetentionDays: r.config.Logging.RetentionDays,
	})
	r.engine.Use(middleware.Logging(middleware.LoggingConfig{
		AccessLogger: &accessLogger,
		SkipPaths:    []string{"/health", "/health/ready"},
	}))

	r.engine.Use(middleware.CORS(middleware.NewCORSConfig(r.config.Server.AllowOrigins)))
}

// setupRoutes configures all API routes
func (r *Router) setupRoutes() {
	// Health checks (no /api prefix)
	r.engine.GET("/health", r.healthHandler.Health)
	r.engine.GET("/health/ready", r.healthHandler.Ready)

	api := r.engine.Group("/api")
	api.GET("/health/detailed", r.healthHandler.Detailed)

	user := api.Group("", middleware.Identity())
	routes.RegisterSignalsRoutes(user, r.signalsHandler)
	routes.RegisterPortfolioRoutes(user, r.portfolioHandler)
}

// Engine returns the underlying Gin engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
