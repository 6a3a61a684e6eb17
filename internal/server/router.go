package server

import (
	"github.com/abduss/docadmin/internal/admin"
	"github.com/abduss/docadmin/internal/auth"
	"github.com/abduss/docadmin/internal/config"
	"github.com/abduss/docadmin/internal/logger"
	"github.com/abduss/docadmin/internal/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies groups the services required by the HTTP router.
type Dependencies struct {
	Config       config.Config
	Logger       *zap.Logger
	Checks       []ReadinessCheck
	AuthService  *auth.Service
	AdminHandler *admin.Handler
}

// NewRouter builds a Gin engine with foundational middleware and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.Middleware(log))
	router.Use(metrics.Middleware())

	registerHealthRoutes(router, deps.Checks)
	metrics.InitMetrics()
	metrics.Register(router, deps.Config.Metrics.PrometheusPath)

	api := router.Group("/admin")
	if deps.AuthService != nil {
		auth.RegisterRoutes(api, deps.AuthService, log)

		protected := api.Group("")
		protected.Use(auth.RequireAdmin(deps.AuthService))

		if deps.AdminHandler != nil {
			deps.AdminHandler.RegisterRoutes(protected)
		}
	}

	return router
}
