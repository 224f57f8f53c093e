package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	sharedConfig "github.com/metashield/jirasync/internal/shared/config"
)

// ErrJiraNotConfigured is returned when a command needs the remote tracker
// but its credentials are missing or invalid.
var ErrJiraNotConfigured = errors.New("jira connection is not configured")

type Config struct {
	Server    sharedConfig.ServerConfig    `mapstructure:"server"`
	Database  sharedConfig.DatabaseConfig  `mapstructure:"database"`
	Logger    sharedConfig.LoggerConfig    `mapstructure:"logger"`
	Redis     sharedConfig.RedisConfig     `mapstructure:"redis"`
	Jira      sharedConfig.JiraConfig      `mapstructure:"jira"`
	Sync      sharedConfig.SyncConfig      `mapstructure:"sync"`
	Auth      sharedConfig.AuthConfig      `mapstructure:"auth"`
	RateLimit sharedConfig.RateLimitConfig `mapstructure:"rate_limit"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex

	validate = validator.New()
)

// Load loads configuration from file and environment variables.
// configPath overrides the default search paths when set.
func Load(env, configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
	}

	v.SetEnvPrefix("JIRASYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		v.Set("server.mode", modeForEnv(env))
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

// Validate checks everything except the Jira section, which only the
// commands talking to the remote tracker require.
func (c *Config) Validate() error {
	if err := validate.StructExcept(c, "Jira"); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ValidateJira checks the remote tracker connection settings.
func (c *Config) ValidateJira() error {
	if err := validate.Struct(c.Jira); err != nil {
		return fmt.Errorf("%w: %v", ErrJiraNotConfigured, err)
	}
	return nil
}

func modeForEnv(env string) string {
	switch env {
	case "production", "prod", "release":
		return "release"
	case "test", "testing":
		return "test"
	default:
		return "debug"
	}
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.timezone", "Asia/Seoul")

	// Database defaults
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "jirasync")
	v.SetDefault("database.path", "jirasync.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.conn_max_lifetime", 60)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Jira defaults
	v.SetDefault("jira.issue_type", "보안이벤트")
	v.SetDefault("jira.request_timeout", "30s")
	v.SetDefault("jira.realtime_projects", []string{"GOODRICH", "FINDA", "SAMKOO", "WCVS", "GLN", "KURLY", "ISU"})
	v.SetDefault("jira.breaker.max_requests", 3)
	v.SetDefault("jira.breaker.interval", "1m")
	v.SetDefault("jira.breaker.timeout", "2m")
	v.SetDefault("jira.breaker.min_requests", 10)
	v.SetDefault("jira.breaker.failure_ratio", 0.6)

	// Sync defaults
	v.SetDefault("sync.full.batch_size", 100)
	v.SetDefault("sync.full.max_results", 10000)
	v.SetDefault("sync.full.days_lookback", 90)
	v.SetDefault("sync.incremental.batch_size", 50)
	v.SetDefault("sync.incremental.max_records", 1000)
	v.SetDefault("sync.incremental.lookback", "24h")
	v.SetDefault("sync.realtime.max_results", 500)
	v.SetDefault("sync.realtime.window", "24h")
	v.SetDefault("sync.realtime.retry_attempts", 3)
	v.SetDefault("sync.realtime.retry_delay", "2s")
	v.SetDefault("sync.realtime.attempt_timeout", "5s")
	v.SetDefault("sync.realtime.timeout_step", "2s")
	v.SetDefault("sync.realtime.refetch_timeout", "5s")
	v.SetDefault("sync.scheduler.enabled", true)
	v.SetDefault("sync.scheduler.full_interval", "24h")
	v.SetDefault("sync.scheduler.incremental_interval", "5m")
	v.SetDefault("sync.scheduler.realtime_interval", "1m")

	// Auth defaults
	v.SetDefault("auth.service_key", "")

	// Rate limit defaults
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.limit", 30)
	v.SetDefault("rate_limit.window", "1m")
}
