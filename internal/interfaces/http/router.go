package http

import (
	"github.com/gin-gonic/gin"

	"github.com/metashield/jirasync/internal/interfaces/http/middleware"
	"github.com/metashield/jirasync/internal/interfaces/http/routes"
)

// SetupRoutes configures all HTTP routes
func (c *Container) SetupRoutes() {
	c.engine.Use(middleware.RequestLogger(c.log.Named("http")))
	c.engine.Use(middleware.Recovery(c.log.Named("http.recovery")))
	c.engine.Use(middleware.CORS(c.cfg.Server.AllowedOrigins))
	c.engine.Use(middleware.SecurityHeaders())

	routes.SetupSystemRoutes(c.engine, &routes.SystemRouteConfig{
		HealthHandler: c.hdlrs.healthHandler,
	})

	routes.SetupSyncRoutes(c.engine, &routes.SyncRouteConfig{
		SyncHandler:          c.hdlrs.syncHandler,
		ServiceKeyMiddleware: c.serviceKeyMiddleware,
		RateLimiter:          c.rateLimiter,
	})

	routes.SetupTicketRoutes(c.engine, &routes.TicketRouteConfig{
		TicketHandler: c.hdlrs.ticketHandler,
	})
}

// GetEngine returns the Gin engine
func (c *Container) GetEngine() *gin.Engine {
	return c.engine
}

// UseCases returns the wired sync use cases.
func (c *Container) UseCases() *SyncUseCases {
	return c.ucs
}

// StartScheduler starts the periodic sync jobs.
func (c *Container) StartScheduler() {
	c.schedulerManager.Start()
}

// Shutdown stops the scheduler, waiting for running jobs, and closes Redis.
func (c *Container) Shutdown() {
	if c.schedulerManager != nil {
		if err := c.schedulerManager.Stop(); err != nil {
			c.log.Errorw("failed to stop scheduler", "error", err)
		}
	}

	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.log.Warnw("failed to close redis client", "error", err)
		}
	}
}
