package http

import (
	"github.com/metashield/jirasync/internal/application/ticketsync/usecases"
)

// SyncUseCases holds the orchestrators and queries of the sync engine.
type SyncUseCases struct {
	FullSync         *usecases.FullSyncUseCase
	IncrementalSync  *usecases.IncrementalSyncUseCase
	RealtimeSync     *usecases.RealtimeSyncUseCase
	Setup            *usecases.SetupUseCase
	GetSyncStatus    *usecases.GetSyncStatusUseCase
	RefreshTicket    *usecases.RefreshTicketUseCase
	ListTickets      *usecases.ListTicketsUseCase
	GetTicketHistory *usecases.GetTicketHistoryUseCase
}
