package models

import (
	"time"
)

// SyncSettingModel is the GORM model for sync_settings table
type SyncSettingModel struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	SettingKey   string    `gorm:"column:setting_key;type:varchar(100);not null;uniqueIndex"`
	SettingValue string    `gorm:"column:setting_value;type:text"`
	ValueType    string    `gorm:"column:value_type;type:varchar(20);not null;default:'string'"`
	Description  string    `gorm:"column:description;type:varchar(500)"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the table name for GORM
func (SyncSettingModel) TableName() string {
	return "sync_settings"
}
