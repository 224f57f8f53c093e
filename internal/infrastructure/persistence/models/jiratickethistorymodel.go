package models

import (
	"time"
)

// JiraTicketHistoryModel is the GORM model for jira_ticket_history table
type JiraTicketHistoryModel struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"`
	TicketID       uint      `gorm:"column:ticket_id;not null;index"`
	JiraKey        string    `gorm:"column:jira_key;type:varchar(50);not null;index:idx_jira_ticket_history_jira_key"`
	FieldName      string    `gorm:"column:field_name;type:varchar(100);not null"`
	FieldType      string    `gorm:"column:field_type;type:varchar(50);not null;default:'string'"`
	OldValue       *string   `gorm:"column:old_value;type:text"`
	NewValue       *string   `gorm:"column:new_value;type:text"`
	ChangedByName  string    `gorm:"column:changed_by_name;type:varchar(255)"`
	ChangedByEmail *string   `gorm:"column:changed_by_email;type:varchar(255)"`
	ChangedAt      time.Time `gorm:"column:changed_at;not null;index"`
	ChangeSource   string    `gorm:"column:change_source;type:varchar(30);not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the table name for GORM
func (JiraTicketHistoryModel) TableName() string {
	return "jira_ticket_history"
}
