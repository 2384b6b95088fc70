package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Logging     LoggingConfig
	RateLimit   RateLimitConfig
	Moderation  ModerationConfig
	Stats       StatsClientConfig
	Environment string
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL            string
	MaxConnections int
}

type LoggingConfig struct {
	Level  string
	Format string
}

type RateLimitConfig struct {
	PublicPerMinute int
	Burst           int
}

// ModerationConfig carries the lead-time rules for event creation and
// publication.
type ModerationConfig struct {
	MinLeadTime        time.Duration
	MinPublishLeadTime time.Duration
}

// StatsClientConfig points the main server at the hit-counting
// collaborator.
type StatsClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConnections: getEnvInt("DATABASE_MAX_CONNECTIONS", 25),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		RateLimit: RateLimitConfig{
			PublicPerMinute: getEnvInt("RATE_LIMIT_PUBLIC", 120),
			Burst:           getEnvInt("RATE_LIMIT_BURST", 20),
		},
		Moderation: ModerationConfig{
			MinLeadTime:        getEnvDuration("EVENT_MIN_LEAD_TIME", 2*time.Hour),
			MinPublishLeadTime: getEnvDuration("EVENT_MIN_PUBLISH_LEAD_TIME", time.Hour),
		},
		Stats: StatsClientConfig{
			BaseURL: getEnv("STATS_BASE_URL", "http://localhost:9090"),
			Timeout: getEnvDuration("STATS_TIMEOUT", 2*time.Second),
		},
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	if cfg.Database.URL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

// StatsServerConfig configures the hit-counting service binary.
type StatsServerConfig struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Logging     LoggingConfig
	Environment string
}

func LoadStatsServer() (StatsServerConfig, error) {
	cfg := StatsServerConfig{
		Server: ServerConfig{
			Host: getEnv("STATS_SERVER_HOST", "0.0.0.0"),
			Port: getEnvInt("STATS_SERVER_PORT", 9090),
		},
		Database: DatabaseConfig{
			URL:            getEnv("STATS_DATABASE_URL", ""),
			MaxConnections: getEnvInt("STATS_DATABASE_MAX_CONNECTIONS", 10),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	if cfg.Database.URL == "" {
		return StatsServerConfig{}, fmt.Errorf("STATS_DATABASE_URL is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
