package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port" validate:"min=1,max=65535"`
	Mode           string   `mapstructure:"mode" validate:"oneof=debug release test"`
	Timezone       string   `mapstructure:"timezone"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver" validate:"oneof=mysql sqlite"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	Path            string `mapstructure:"path"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	if d.Driver == "sqlite" {
		return d.Path
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&collation=utf8mb4_general_ci&parseTime=true&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JiraConfig holds the remote tracker connection and query settings.
type JiraConfig struct {
	BaseURL          string        `mapstructure:"base_url" validate:"required,url"`
	Email            string        `mapstructure:"email" validate:"required,email"`
	APIToken         string        `mapstructure:"api_token" validate:"required"`
	IssueType        string        `mapstructure:"issue_type" validate:"required"`
	FieldsFile       string        `mapstructure:"fields_file"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout" validate:"min=1s"`
	RealtimeProjects []string      `mapstructure:"realtime_projects"`
	Breaker          BreakerConfig `mapstructure:"breaker"`
}

// BreakerConfig configures the circuit breaker around remote calls.
type BreakerConfig struct {
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MinRequests  uint32        `mapstructure:"min_requests"`
	FailureRatio float64       `mapstructure:"failure_ratio" validate:"gt=0,lte=1"`
}

type FullSyncConfig struct {
	BatchSize    int `mapstructure:"batch_size" validate:"min=1,max=100"`
	MaxResults   int `mapstructure:"max_results" validate:"min=1"`
	DaysLookback int `mapstructure:"days_lookback" validate:"min=1"`
}

type IncrementalSyncConfig struct {
	BatchSize  int           `mapstructure:"batch_size" validate:"min=1"`
	MaxRecords int           `mapstructure:"max_records" validate:"min=1"`
	Lookback   time.Duration `mapstructure:"lookback"`
}

type RealtimeSyncConfig struct {
	MaxResults     int           `mapstructure:"max_results" validate:"min=1"`
	Window         time.Duration `mapstructure:"window"`
	RetryAttempts  int           `mapstructure:"retry_attempts" validate:"min=1"`
	RetryDelay     time.Duration `mapstructure:"retry_delay"`
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout"`
	TimeoutStep    time.Duration `mapstructure:"timeout_step"`
	RefetchTimeout time.Duration `mapstructure:"refetch_timeout"`
}

type SchedulerConfig struct {
	Enabled             bool          `mapstructure:"enabled"`
	FullInterval        time.Duration `mapstructure:"full_interval"`
	IncrementalInterval time.Duration `mapstructure:"incremental_interval"`
	RealtimeInterval    time.Duration `mapstructure:"realtime_interval"`
}

// SyncConfig holds orchestrator defaults and scheduling.
type SyncConfig struct {
	Full        FullSyncConfig        `mapstructure:"full"`
	Incremental IncrementalSyncConfig `mapstructure:"incremental"`
	Realtime    RealtimeSyncConfig    `mapstructure:"realtime"`
	Scheduler   SchedulerConfig       `mapstructure:"scheduler"`
}

type AuthConfig struct {
	ServiceKey string `mapstructure:"service_key"`
}

type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Limit   int           `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
}
