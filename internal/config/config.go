package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

type AppConfig struct {
	Port string

	StormglassAPIKey  string
	OpenWeatherAPIKey string
	OpenMeteoEnabled  bool

	// HTTPTimeout is the outbound HTTP client timeout.
	HTTPTimeout time.Duration
	// ProviderTimeout bounds a single provider fetch.
	ProviderTimeout time.Duration
	// ProviderRateLimit is the per-provider request rate in requests per second.
	ProviderRateLimit float64

	// CacheDuration is how long a fetched forecast stays fresh.
	CacheDuration time.Duration
	// ForecastWindow is how far ahead forecasts are requested.
	ForecastWindow time.Duration

	RankWorkers int

	StoreBackend string
	DBPath       string

	// CacheWarmInterval controls how often every spot is refreshed; 0 disables the warmer.
	CacheWarmInterval time.Duration

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Info().Err(err).Msg("no .env file loaded")
	}
	return FromEnv()
}

// FromEnv builds the configuration from the current environment only.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{
		Port:              getenvDefault("PORT", "8080"),
		StormglassAPIKey:  os.Getenv("STORMGLASS_API_KEY"),
		OpenWeatherAPIKey: os.Getenv("OPENWEATHERMAP_API_KEY"),
		StoreBackend:      strings.ToLower(getenvDefault("STORE_BACKEND", BackendMemory)),
		DBPath:            getenvDefault("DB_PATH", "data/surf-spots.db"),
		LogLevel:          getenvDefault("LOG_LEVEL", "info"),
		LogFormat:         getenvDefault("LOG_FORMAT", "console"),
	}

	var err error
	if cfg.OpenMeteoEnabled, err = getenvBool("OPENMETEO_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.ProviderTimeout, err = getenvDuration("PROVIDER_TIMEOUT", 8*time.Second); err != nil {
		return nil, err
	}
	if cfg.ProviderRateLimit, err = getenvFloat("PROVIDER_RATE_LIMIT", 5); err != nil {
		return nil, err
	}
	if cfg.CacheDuration, err = getenvCacheDuration("FORECAST_CACHE_DURATION", 2*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ForecastWindow, err = getenvDuration("FORECAST_WINDOW", 72*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CacheWarmInterval, err = getenvDuration("CACHE_WARM_INTERVAL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RankWorkers, err = getenvInt("RANK_WORKERS", 4); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) validate() error {
	switch c.StoreBackend {
	case BackendMemory, BackendSQLite:
	default:
		return fmt.Errorf("invalid STORE_BACKEND %q: want %s or %s", c.StoreBackend, BackendMemory, BackendSQLite)
	}
	if c.CacheDuration <= 0 {
		return fmt.Errorf("invalid FORECAST_CACHE_DURATION: must be positive")
	}
	if c.ProviderTimeout <= 0 || c.HTTPTimeout <= 0 {
		return fmt.Errorf("invalid timeout: HTTP_TIMEOUT and PROVIDER_TIMEOUT must be positive")
	}
	if c.ForecastWindow <= 0 {
		return fmt.Errorf("invalid FORECAST_WINDOW: must be positive")
	}
	if c.ProviderRateLimit <= 0 {
		return fmt.Errorf("invalid PROVIDER_RATE_LIMIT: must be positive")
	}
	if c.CacheWarmInterval < 0 {
		return fmt.Errorf("invalid CACHE_WARM_INTERVAL: must not be negative")
	}
	if c.RankWorkers <= 0 {
		return fmt.Errorf("invalid RANK_WORKERS: must be positive")
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// getenvCacheDuration also accepts a bare integer, read as milliseconds.
func getenvCacheDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
