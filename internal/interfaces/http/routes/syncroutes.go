package routes

import (
	"github.com/gin-gonic/gin"

	synchandlers "github.com/metashield/jirasync/internal/interfaces/http/handlers/ticketsync"
	"github.com/metashield/jirasync/internal/interfaces/http/middleware"
)

type SyncRouteConfig struct {
	SyncHandler          *synchandlers.SyncHandler
	ServiceKeyMiddleware *middleware.ServiceKeyMiddleware
	RateLimiter          *middleware.RateLimiter
}

func SetupSyncRoutes(engine *gin.Engine, config *SyncRouteConfig) {
	sync := engine.Group("/api/sync")
	{
		// Read-only snapshot for the dashboard, no credential
		sync.GET("/status", config.SyncHandler.Status)

		// Trigger endpoints, rate limited before the credential check
		sync.POST("/full-sync",
			config.RateLimiter.Limit(),
			config.ServiceKeyMiddleware.RequireServiceKey(),
			config.SyncHandler.FullSync)
		sync.POST("/incremental-sync",
			config.RateLimiter.Limit(),
			config.ServiceKeyMiddleware.RequireServiceKey(),
			config.SyncHandler.IncrementalSync)
		sync.POST("/realtime-sync",
			config.RateLimiter.Limit(),
			config.ServiceKeyMiddleware.RequireServiceKeyUnlessManual(),
			config.SyncHandler.RealtimeSync)
		sync.POST("/setup",
			config.ServiceKeyMiddleware.RequireServiceKey(),
			config.SyncHandler.Setup)
		sync.POST("/update-ticket",
			config.RateLimiter.Limit(),
			config.ServiceKeyMiddleware.RequireServiceKey(),
			config.SyncHandler.UpdateTicket)
	}
}
