package http

import (
	"github.com/metashield/jirasync/internal/interfaces/http/handlers"
	syncHandlers "github.com/metashield/jirasync/internal/interfaces/http/handlers/ticketsync"
)

// allHandlers holds all HTTP handler instances used by the application.
type allHandlers struct {
	healthHandler *handlers.HealthHandler
	syncHandler   *syncHandlers.SyncHandler
	ticketHandler *syncHandlers.TicketHandler
}
