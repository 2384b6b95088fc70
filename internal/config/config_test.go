package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()

	require.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/explore")

	cfg, err := Load()

	require.NoError(t, err)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Logging.Format)
	require.Equal(t, 2*time.Hour, cfg.Moderation.MinLeadTime)
	require.Equal(t, time.Hour, cfg.Moderation.MinPublishLeadTime)
	require.Equal(t, "http://localhost:9090", cfg.Stats.BaseURL)
	require.Equal(t, "development", cfg.Environment)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/explore")
	t.Setenv("SERVER_PORT", "8081")
	t.Setenv("EVENT_MIN_LEAD_TIME", "30m")
	t.Setenv("EVENT_MIN_PUBLISH_LEAD_TIME", "15m")
	t.Setenv("RATE_LIMIT_PUBLIC", "600")

	cfg, err := Load()

	require.NoError(t, err)
	require.Equal(t, 8081, cfg.Server.Port)
	require.Equal(t, 30*time.Minute, cfg.Moderation.MinLeadTime)
	require.Equal(t, 15*time.Minute, cfg.Moderation.MinPublishLeadTime)
	require.Equal(t, 600, cfg.RateLimit.PublicPerMinute)
}

func TestLoadIgnoresMalformedDuration(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/explore")
	t.Setenv("EVENT_MIN_LEAD_TIME", "soon")

	cfg, err := Load()

	require.NoError(t, err)
	require.Equal(t, 2*time.Hour, cfg.Moderation.MinLeadTime)
}

func TestLoadStatsServerRequiresDatabaseURL(t *testing.T) {
	t.Setenv("STATS_DATABASE_URL", "")

	_, err := LoadStatsServer()

	require.Error(t, err)
}

func TestLoadStatsServerDefaults(t *testing.T) {
	t.Setenv("STATS_DATABASE_URL", "postgres://localhost/explore_stats")

	cfg, err := LoadStatsServer()

	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, 10, cfg.Database.MaxConnections)
}
