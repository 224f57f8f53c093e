package routes

import (
	"github.com/gin-gonic/gin"

	synchandlers "github.com/metashield/jirasync/internal/interfaces/http/handlers/ticketsync"
)

type TicketRouteConfig struct {
	TicketHandler *synchandlers.TicketHandler
}

func SetupTicketRoutes(engine *gin.Engine, config *TicketRouteConfig) {
	tickets := engine.Group("/api/tickets")
	{
		tickets.GET("", config.TicketHandler.ListTickets)
		tickets.GET("/:key/history", config.TicketHandler.GetTicketHistory)
	}
}
