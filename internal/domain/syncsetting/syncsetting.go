// Package syncsetting holds the key/value settings that steer the sync
// engine: checkpoints written by successful runs and the scheduling knobs
// seeded by setup.
package syncsetting

import (
	"fmt"
	"strconv"
	"time"
)

// ValueType defines the type of a setting value
type ValueType string

const (
	ValueTypeString ValueType = "string"
	ValueTypeInt    ValueType = "int"
	ValueTypeBool   ValueType = "bool"
	ValueTypeTime   ValueType = "time"
)

// Well-known keys.
const (
	KeyLastFullSync                   = "last_full_sync"
	KeyLastIncrementalSync            = "last_incremental_sync"
	KeyLastRealtimeSync               = "last_realtime_sync"
	KeySyncEnabled                    = "sync_enabled"
	KeyFullSyncIntervalHours          = "full_sync_interval_hours"
	KeyIncrementalSyncIntervalMinutes = "incremental_sync_interval_minutes"
	KeyRealtimeSyncIntervalMinutes    = "realtime_sync_interval_minutes"
	KeyMaxTicketsPerSync              = "max_tickets_per_sync"
	KeySyncLookbackDays               = "sync_lookback_days"
)

// Fallback intervals used when the settings have not been seeded.
const (
	DefaultFullSyncIntervalHours          = 24
	DefaultIncrementalSyncIntervalMinutes = 5
	DefaultRealtimeSyncIntervalMinutes    = 1
)

// Setting is one sync setting row.
type Setting struct {
	id          uint
	key         string
	value       string
	valueType   ValueType
	description string
	updatedAt   time.Time
}

// NewSetting creates a setting with a raw value.
func NewSetting(key, value string, valueType ValueType, description string) (*Setting, error) {
	if key == "" {
		return nil, ErrInvalidSettingKey
	}
	if !isValidValueType(valueType) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidValueType, valueType)
	}
	return &Setting{
		key:         key,
		value:       value,
		valueType:   valueType,
		description: description,
		updatedAt:   time.Now().UTC(),
	}, nil
}

// NewTimeSetting creates a time-valued setting such as a checkpoint.
func NewTimeSetting(key string, t time.Time) (*Setting, error) {
	return NewSetting(key, t.UTC().Format(time.RFC3339Nano), ValueTypeTime, "")
}

// ReconstructSetting reconstructs a Setting from persistence layer
func ReconstructSetting(id uint, key, value string, valueType ValueType, description string, updatedAt time.Time) *Setting {
	return &Setting{
		id:          id,
		key:         key,
		value:       value,
		valueType:   valueType,
		description: description,
		updatedAt:   updatedAt,
	}
}

// Getters
func (s *Setting) ID() uint             { return s.id }
func (s *Setting) Key() string          { return s.key }
func (s *Setting) Value() string        { return s.value }
func (s *Setting) ValueType() ValueType { return s.valueType }
func (s *Setting) Description() string  { return s.description }
func (s *Setting) UpdatedAt() time.Time { return s.updatedAt }

// SetID sets the setting ID (only for persistence layer use)
func (s *Setting) SetID(id uint) {
	s.id = id
}

// GetIntValue returns the value as an integer
func (s *Setting) GetIntValue() (int, error) {
	if s.value == "" {
		return 0, nil
	}
	return strconv.Atoi(s.value)
}

// GetBoolValue returns the value as a boolean
func (s *Setting) GetBoolValue() (bool, error) {
	if s.value == "" {
		return false, nil
	}
	return strconv.ParseBool(s.value)
}

// GetTimeValue returns the value as a UTC time. Both RFC 3339 and the
// space-separated layout written by older tooling are accepted.
func (s *Setting) GetTimeValue() (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s.value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q is not a timestamp", ErrInvalidValueType, s.value)
}

func isValidValueType(vt ValueType) bool {
	switch vt {
	case ValueTypeString, ValueTypeInt, ValueTypeBool, ValueTypeTime:
		return true
	default:
		return false
	}
}

// Defaults returns the settings seeded by setup.
func Defaults() []*Setting {
	defs := []struct {
		key, value  string
		valueType   ValueType
		description string
	}{
		{KeySyncEnabled, "true", ValueTypeBool, "Enable scheduled synchronization"},
		{KeyFullSyncIntervalHours, strconv.Itoa(DefaultFullSyncIntervalHours), ValueTypeInt, "Hours between full syncs"},
		{KeyIncrementalSyncIntervalMinutes, strconv.Itoa(DefaultIncrementalSyncIntervalMinutes), ValueTypeInt, "Minutes between incremental syncs"},
		{KeyRealtimeSyncIntervalMinutes, strconv.Itoa(DefaultRealtimeSyncIntervalMinutes), ValueTypeInt, "Minutes between realtime syncs"},
		{KeyMaxTicketsPerSync, "1000", ValueTypeInt, "Maximum tickets processed per incremental sync"},
		{KeySyncLookbackDays, "90", ValueTypeInt, "Days of history covered by a full sync"},
	}

	settings := make([]*Setting, 0, len(defs))
	for _, d := range defs {
		settings = append(settings, &Setting{
			key:         d.key,
			value:       d.value,
			valueType:   d.valueType,
			description: d.description,
			updatedAt:   time.Now().UTC(),
		})
	}
	return settings
}
