package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string          `yaml:"environment"`
	Upstream    UpstreamConfig  `yaml:"upstream"`
	Cache       CacheConfig     `yaml:"cache"`
	Database    DatabaseConfig  `yaml:"database"`
	Redis       RedisConfig     `yaml:"redis"`
	Messaging   MessagingConfig `yaml:"messaging"`
	Web         WebConfig       `yaml:"web"`
}

// UpstreamConfig points at the maintenance backend REST API. Either a static
// token or service-account credentials (exchanged for a token at startup).
type UpstreamConfig struct {
	BaseURL  string        `yaml:"base_url"`
	Token    string        `yaml:"token"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	Timeout  time.Duration `yaml:"timeout"`
}

type CacheConfig struct {
	StaleAfter    time.Duration `yaml:"stale_after"`
	InactiveAfter time.Duration `yaml:"inactive_after"`
	Retry         int           `yaml:"retry"`
}

type DatabaseConfig struct {
	Driver   string         `yaml:"driver"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// MessagingConfig selects the push-invalidation backend. An empty backend
// disables push invalidation entirely.
type MessagingConfig struct {
	Backend     string   `yaml:"backend"` // "mqtt", "kafka" or ""
	BrokerURL   string   `yaml:"broker_url"`
	Brokers     []string `yaml:"brokers"`
	Topic       string   `yaml:"topic"`
	ClientID    string   `yaml:"client_id"`
	GroupID     string   `yaml:"group_id"`
	Username    string   `yaml:"username"`
	Password    string   `yaml:"password"`
	QoS         byte     `yaml:"qos"`
	KafkaMinGap int      `yaml:"kafka_min_gap"` // ms between handled notices, paces replay storms
}

type WebConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	SessionSecret string `yaml:"session_secret"`
	JWTSecret     string `yaml:"jwt_secret"`
}

// Load reads the YAML config file, applies .env / environment overrides for
// secrets, and fills defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// .env is optional; real environment variables still win.
	_ = godotenv.Load()
	applyEnvOverrides(cfg)

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MAINTDECK_UPSTREAM_TOKEN"); v != "" {
		cfg.Upstream.Token = v
	}
	if v := os.Getenv("MAINTDECK_UPSTREAM_PASSWORD"); v != "" {
		cfg.Upstream.Password = v
	}
	if v := os.Getenv("MAINTDECK_SESSION_SECRET"); v != "" {
		cfg.Web.SessionSecret = v
	}
	if v := os.Getenv("MAINTDECK_JWT_SECRET"); v != "" {
		cfg.Web.JWTSecret = v
	}
	if v := os.Getenv("MAINTDECK_DB_PASSWORD"); v != "" {
		cfg.Database.Postgres.Password = v
	}
	if v := os.Getenv("MAINTDECK_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("MAINTDECK_ENV"); v != "" {
		cfg.Environment = v
	}
}

func (c *Config) applyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Upstream.Timeout == 0 {
		c.Upstream.Timeout = 10 * time.Second
	}
	if c.Cache.StaleAfter == 0 {
		c.Cache.StaleAfter = 30 * time.Second
	}
	if c.Cache.InactiveAfter == 0 {
		c.Cache.InactiveAfter = 5 * time.Minute
	}
	if c.Cache.Retry == 0 {
		c.Cache.Retry = 3
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.SQLite.Path == "" {
		c.Database.SQLite.Path = "maintdeck.db"
	}
	if c.Database.Postgres.Port == 0 {
		c.Database.Postgres.Port = 5432
	}
	if c.Database.Postgres.SSLMode == "" {
		c.Database.Postgres.SSLMode = "disable"
	}
	if c.Messaging.Topic == "" {
		c.Messaging.Topic = "maintdeck/invalidations"
	}
	if c.Messaging.ClientID == "" {
		c.Messaging.ClientID = "maintdeck"
	}
	if c.Messaging.GroupID == "" {
		c.Messaging.GroupID = "maintdeck"
	}
	if c.Web.Host == "" {
		c.Web.Host = "0.0.0.0"
	}
	if c.Web.Port == 0 {
		c.Web.Port = 8084
	}
}

func (c *Config) validate() error {
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("config: upstream.base_url is required")
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("config: unsupported database driver %q", c.Database.Driver)
	}
	switch c.Messaging.Backend {
	case "", "mqtt", "kafka":
	default:
		return fmt.Errorf("config: unsupported messaging backend %q", c.Messaging.Backend)
	}
	return nil
}

// Production reports whether the gateway runs with production behavior
// (notification dedup is disabled in production, matching the dashboard).
func (c *Config) Production() bool {
	return c.Environment == "production"
}
