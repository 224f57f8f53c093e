package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/metashield/jirasync/internal/domain/ticket"
	"github.com/metashield/jirasync/internal/infrastructure/persistence/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// Every pooled connection would otherwise see its own empty database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.JiraTicketModel{},
		&models.JiraTicketHistoryModel{},
		&models.SyncRunModel{},
		&models.SyncSettingModel{},
	)
	require.NoError(t, err)

	return db
}

func strPtr(s string) *string {
	return &s
}

func newTestTicket(t *testing.T, key, status string, updatedAt time.Time) *ticket.Ticket {
	t.Helper()

	tk, err := ticket.NewTicket(ticket.Attributes{
		JiraKey:      key,
		JiraID:       "10001",
		ProjectKey:   "GOODRICH",
		ProjectName:  "Goodrich",
		Summary:      "Suspicious login from " + key,
		IssueType:    "보안이벤트",
		Status:       status,
		Priority:     "High",
		AssigneeName: strPtr("Kim Analyst"),
		CreatedAt:    updatedAt.Add(-time.Hour),
		UpdatedAt:    updatedAt,
		SourceIP:     strPtr("10.0.0.1"),
		CustomFields: map[string]string{"customer": "Goodrich"},
	}, updatedAt.Add(time.Minute))
	require.NoError(t, err)
	return tk
}
