package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"APP_ENV", "APP_NAME", "HTTP_ADDR", "DATABASE_URL", "DB_MAX_CONNS",
	"STATS_URL", "STATS_TIMEOUT", "RABBIT_URL", "RABBIT_EXCHANGE", "RABBIT_QUEUE", "OUTBOX_ENABLED",
	"REDIS_URL", "CACHE_TTL_DETAILS", "RL_ENABLED", "RL_IP_LIMIT", "RL_IP_WINDOW",
	"HTTP_READ_TIMEOUT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("should_return_error_if_database_url_is_missing", func(t *testing.T) {
		clearEnv(t)
		cfg, err := Load()
		assert.Nil(t, cfg)
		assert.EqualError(t, err, "missing DATABASE_URL")
	})

	t.Run("should_apply_defaults", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DATABASE_URL", "postgres://localhost:5432/ewm")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "dev", cfg.AppEnv)
		assert.Equal(t, "ewm-main-service", cfg.AppName)
		assert.Equal(t, ":8080", cfg.HTTPAddr)
		assert.Equal(t, "http://localhost:9090", cfg.StatsURL)
		assert.Equal(t, 800*time.Millisecond, cfg.StatsTimeout)
		assert.Equal(t, "ewm.events", cfg.RabbitExchange)
		assert.Equal(t, "ewm.events.lifecycle", cfg.RabbitQueue)
		assert.Equal(t, 5*time.Minute, cfg.CacheTTLDetails)
		assert.True(t, cfg.RLEnabled)
		assert.True(t, cfg.OutboxEnabled)
		assert.Empty(t, cfg.RedisURL)
	})

	t.Run("should_fail_in_prod_if_rabbit_url_is_missing", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("APP_ENV", "prod")
		t.Setenv("DATABASE_URL", "postgres://localhost")

		cfg, err := Load()
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "RABBIT_URL")
	})

	t.Run("prod_without_outbox_needs_no_rabbit", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("APP_ENV", "prod")
		t.Setenv("DATABASE_URL", "postgres://localhost")
		t.Setenv("OUTBOX_ENABLED", "false")

		cfg, err := Load()
		require.NoError(t, err)
		assert.False(t, cfg.OutboxEnabled)
	})

	t.Run("should_parse_overrides", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DATABASE_URL", "postgres://localhost")
		t.Setenv("STATS_TIMEOUT", "250ms")
		t.Setenv("RL_IP_LIMIT", "7")
		t.Setenv("RL_ENABLED", "false")
		t.Setenv("HTTP_READ_TIMEOUT", "3s")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 250*time.Millisecond, cfg.StatsTimeout)
		assert.Equal(t, 7, cfg.RLLimit)
		assert.False(t, cfg.RLEnabled)
		assert.Equal(t, 3*time.Second, cfg.HTTPReadTimeout)
	})

	t.Run("should_fallback_on_invalid_values", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DATABASE_URL", "postgres://localhost")
		t.Setenv("RL_IP_LIMIT", "many")
		t.Setenv("CACHE_TTL_DETAILS", "soon")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 100, cfg.RLLimit)
		assert.Equal(t, 5*time.Minute, cfg.CacheTTLDetails)
	})
}
