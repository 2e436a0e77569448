package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"PORT", "STORMGLASS_API_KEY", "OPENWEATHERMAP_API_KEY", "OPENMETEO_ENABLED",
	"HTTP_TIMEOUT", "PROVIDER_TIMEOUT", "PROVIDER_RATE_LIMIT", "FORECAST_CACHE_DURATION",
	"FORECAST_WINDOW", "RANK_WORKERS", "STORE_BACKEND", "DB_PATH", "CACHE_WARM_INTERVAL",
	"LOG_LEVEL", "LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.StormglassAPIKey)
	assert.True(t, cfg.OpenMeteoEnabled)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 8*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 5.0, cfg.ProviderRateLimit)
	assert.Equal(t, 2*time.Hour, cfg.CacheDuration)
	assert.Equal(t, 72*time.Hour, cfg.ForecastWindow)
	assert.Equal(t, 4, cfg.RankWorkers)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, "data/surf-spots.db", cfg.DBPath)
	assert.Equal(t, 30*time.Minute, cfg.CacheWarmInterval)
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("STORMGLASS_API_KEY", "sg-key")
	t.Setenv("OPENMETEO_ENABLED", "false")
	t.Setenv("STORE_BACKEND", "SQLite")
	t.Setenv("RANK_WORKERS", "8")
	t.Setenv("CACHE_WARM_INTERVAL", "0")
	t.Setenv("FORECAST_CACHE_DURATION", "45m")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "sg-key", cfg.StormglassAPIKey)
	assert.False(t, cfg.OpenMeteoEnabled)
	assert.Equal(t, BackendSQLite, cfg.StoreBackend)
	assert.Equal(t, 8, cfg.RankWorkers)
	assert.Zero(t, cfg.CacheWarmInterval)
	assert.Equal(t, 45*time.Minute, cfg.CacheDuration)
}

func TestCacheDurationAcceptsMilliseconds(t *testing.T) {
	clearEnv(t)
	t.Setenv("FORECAST_CACHE_DURATION", "7200000")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, cfg.CacheDuration)
}

func TestFromEnvRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"STORE_BACKEND":           "postgres",
		"HTTP_TIMEOUT":            "soon",
		"OPENMETEO_ENABLED":       "maybe",
		"PROVIDER_RATE_LIMIT":     "-1",
		"FORECAST_CACHE_DURATION": "0",
		"CACHE_WARM_INTERVAL":     "-5m",
		"RANK_WORKERS":            "four",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, val)

			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
