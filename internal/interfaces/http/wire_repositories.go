package http

import (
	"gorm.io/gorm"

	"github.com/metashield/jirasync/internal/domain/syncrun"
	"github.com/metashield/jirasync/internal/domain/syncsetting"
	"github.com/metashield/jirasync/internal/domain/ticket"
	"github.com/metashield/jirasync/internal/infrastructure/repository"
	"github.com/metashield/jirasync/internal/shared/logger"
)

// repositories holds all repository instances used by the application.
type repositories struct {
	ticketRepo  ticket.Repository
	historyRepo ticket.HistoryRepository
	syncRunRepo syncrun.Repository
	settingRepo syncsetting.Repository
}

// newRepositories creates all repository instances from the database connection.
func newRepositories(db *gorm.DB, log logger.Interface) *repositories {
	return &repositories{
		ticketRepo:  repository.NewJiraTicketRepository(db, log),
		historyRepo: repository.NewJiraTicketHistoryRepository(db, log),
		syncRunRepo: repository.NewSyncRunRepository(db, log),
		settingRepo: repository.NewSyncSettingRepository(db, log),
	}
}
