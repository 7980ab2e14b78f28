package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "CACHE_DRIVER", "STATS_SNAPSHOT_TTL", "STATS_HISTORY_TTL", "USER_SERVICE_URL"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "memory", cfg.CacheDriver)
	assert.Equal(t, 300*time.Second, cfg.SnapshotTTL)
	assert.Equal(t, 600*time.Second, cfg.HistoryTTL)
	assert.Empty(t, cfg.UserServiceURL)
	assert.False(t, cfg.IsProduction())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("APP_ENV", "Production")
	t.Setenv("DB_DRIVER", "POSTGRES")
	t.Setenv("CACHE_DRIVER", "redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("STATS_SNAPSHOT_TTL", "120")
	t.Setenv("STATS_HISTORY_TTL", "15m")
	t.Setenv("USER_SERVICE_TIMEOUT", "not-a-duration")

	cfg := FromEnv()

	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "redis", cfg.CacheDriver)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 120*time.Second, cfg.SnapshotTTL)
	assert.Equal(t, 15*time.Minute, cfg.HistoryTTL)
	assert.Equal(t, 5*time.Second, cfg.UserServiceTimeout)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(Config{Env: "test", LogLevel: "debug"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1))

	logger, err = NewLogger(Config{Env: "production", LogLevel: "nonsense"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))
}
