package models

import (
	"time"

	"gorm.io/datatypes"
)

// JiraTicketModel is the GORM model for jira_tickets table.
// RemoteCreatedAt and RemoteUpdatedAt hold the remote timestamps and are
// never touched by GORM auto time tracking.
type JiraTicketModel struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"`
	JiraKey     string  `gorm:"column:jira_key;type:varchar(50);not null;uniqueIndex"`
	JiraID      string  `gorm:"column:jira_id;type:varchar(50)"`
	ProjectKey  string  `gorm:"column:project_key;type:varchar(50);index:idx_jira_tickets_project_key"`
	ProjectName string  `gorm:"column:project_name;type:varchar(255)"`
	Summary     string  `gorm:"column:summary;type:text"`
	Description string  `gorm:"column:description;type:text"`
	IssueType   string  `gorm:"column:issue_type;type:varchar(100)"`
	Status      string  `gorm:"column:status;type:varchar(100);index:idx_jira_tickets_status"`
	Priority    string  `gorm:"column:priority;type:varchar(50)"`
	Resolution  *string `gorm:"column:resolution;type:varchar(100)"`

	AssigneeName  *string `gorm:"column:assignee_name;type:varchar(255)"`
	AssigneeEmail *string `gorm:"column:assignee_email;type:varchar(255)"`
	ReporterName  *string `gorm:"column:reporter_name;type:varchar(255)"`
	ReporterEmail *string `gorm:"column:reporter_email;type:varchar(255)"`

	RemoteCreatedAt time.Time  `gorm:"column:created_at;not null"`
	RemoteUpdatedAt time.Time  `gorm:"column:updated_at;not null;index:idx_jira_tickets_updated_at"`
	ResolvedAt      *time.Time `gorm:"column:resolved_at"`
	DueDate         *time.Time `gorm:"column:due_date"`

	Customer           string     `gorm:"column:customer;type:varchar(255)"`
	CustomerCode       string     `gorm:"column:customer_code;type:varchar(50)"`
	Country            string     `gorm:"column:country;type:varchar(100);default:'Unknown'"`
	Severity           string     `gorm:"column:severity;type:varchar(50);default:'Unknown'"`
	DetectionTime      *time.Time `gorm:"column:detection_time"`
	DetectionDevice    string     `gorm:"column:detection_device;type:varchar(255)"`
	DetectionDeviceID  string     `gorm:"column:detection_device_id;type:varchar(255)"`
	SourceIP           *string    `gorm:"column:source_ip;type:varchar(255)"`
	DestinationIP      string     `gorm:"column:destination_ip;type:varchar(255)"`
	AttackType         string     `gorm:"column:attack_type;type:varchar(255)"`
	AttackCategory     string     `gorm:"column:attack_category;type:varchar(255)"`
	ScenarioName       string     `gorm:"column:scenario_name;type:varchar(500)"`
	ActionTaken        string     `gorm:"column:action_taken;type:text"`
	ThreatMatched      string     `gorm:"column:threat_matched;type:varchar(10);default:'N'"`
	ImpactAnalysis     string     `gorm:"column:impact_analysis;type:text"`
	ThreatIntelligence string     `gorm:"column:threat_intelligence;type:text"`
	EventCount         int        `gorm:"column:event_count;default:1"`

	CustomFields datatypes.JSON `gorm:"column:custom_fields;type:json"`

	LastSyncedAt time.Time `gorm:"column:last_synced_at;not null;index:idx_jira_tickets_last_synced_at"`
	SyncVersion  int       `gorm:"column:sync_version;not null;default:1"`
	IsDeleted    bool      `gorm:"column:is_deleted;not null;default:false;index:idx_jira_tickets_is_deleted"`
}

// TableName returns the table name for GORM
func (JiraTicketModel) TableName() string {
	return "jira_tickets"
}
