package models

import (
	"time"

	"gorm.io/datatypes"
)

// SyncRunModel is the GORM model for sync_runs table
type SyncRunModel struct {
	ID               uint           `gorm:"primaryKey;autoIncrement"`
	SyncType         string         `gorm:"column:sync_type;type:varchar(20);not null;index:idx_sync_runs_type_status"`
	SyncSource       string         `gorm:"column:sync_source;type:varchar(20);not null"`
	Status           string         `gorm:"column:status;type:varchar(20);not null;index:idx_sync_runs_type_status"`
	StartedAt        time.Time      `gorm:"column:started_at;not null;index"`
	CompletedAt      *time.Time     `gorm:"column:completed_at"`
	DateFrom         *time.Time     `gorm:"column:date_from"`
	DateTo           *time.Time     `gorm:"column:date_to"`
	TicketsProcessed int            `gorm:"column:tickets_processed;not null;default:0"`
	TicketsCreated   int            `gorm:"column:tickets_created;not null;default:0"`
	TicketsUpdated   int            `gorm:"column:tickets_updated;not null;default:0"`
	TicketsFailed    int            `gorm:"column:tickets_failed;not null;default:0"`
	TicketsResolved  int            `gorm:"column:tickets_resolved;not null;default:0"`
	DurationSeconds  int            `gorm:"column:duration_seconds;not null;default:0"`
	ErrorMessage     *string        `gorm:"column:error_message;type:text"`
	Details          datatypes.JSON `gorm:"column:details;type:json"`
}

// TableName returns the table name for GORM
func (SyncRunModel) TableName() string {
	return "sync_runs"
}
