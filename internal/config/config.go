package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Environment string `toml:"-"`

	Host                  string `toml:"host"`
	Port                  int    `toml:"port"`
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`

	// analysis sessions
	SessionStore         string        `toml:"session_store"`
	SessionTTL           time.Duration `toml:"session_ttl"`
	MemoryStoreSizeMB    int           `toml:"memory_store_size_mb"`
	AnalyzeRateLimit     int           `toml:"analyze_rate_limit_per_min"`
	AllowedOrigins       []string      `toml:"allowed_origins"`
	RecordSetsMinReps    int           `toml:"record_sets_min_reps"`
	ShutdownWaitDuration time.Duration `toml:"shutdown_wait_duration"`
}

type Toml struct {
	Development *Config
	Production  *Config
	DockerDev   *Config `toml:"dockerdev"`
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	case "ddev", "dockerdev":
		cfg = t.DockerDev
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config for env: %s", env)
	}
	return cfg, nil
}

// Load reads the TOML file at path and returns the config of the given env,
// with defaults applied.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file [%s]: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	cfg.Environment = strings.ToLower(env)
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.SessionStore == "" {
		c.SessionStore = SessionStoreRedis
	}
	if c.SessionTTL == 0 {
		c.SessionTTL = 30 * time.Minute
	}
	if c.MemoryStoreSizeMB == 0 {
		c.MemoryStoreSizeMB = 32
	}
	if c.RecordSetsMinReps == 0 {
		c.RecordSetsMinReps = 1
	}
	if c.ShutdownWaitDuration == 0 {
		c.ShutdownWaitDuration = 15 * time.Second
	}
}

func (c *Config) Validate() error {
	if c.Port <= 0 {
		return fmt.Errorf("%w: port must be positive", ErrInvalidConfig)
	}
	switch c.SessionStore {
	case SessionStoreRedis, SessionStoreMemory:
	default:
		return fmt.Errorf("%w: unknown session store [%s]", ErrInvalidConfig, c.SessionStore)
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("%w: negative session ttl", ErrInvalidConfig)
	}
	if c.AnalyzeRateLimit < 0 {
		return fmt.Errorf("%w: negative analyze rate limit", ErrInvalidConfig)
	}
	return nil
}
