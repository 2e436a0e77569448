package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	httpapi "github.com/i474232898/surf-spot-ranking/internal/api/http"
	"github.com/i474232898/surf-spot-ranking/internal/config"
	"github.com/i474232898/surf-spot-ranking/internal/logging"
	"github.com/i474232898/surf-spot-ranking/internal/scheduler"
	"github.com/i474232898/surf-spot-ranking/internal/store"
	"github.com/i474232898/surf-spot-ranking/internal/surf"
	"github.com/i474232898/surf-spot-ranking/internal/surf/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Every provider gets its own request budget.
	limiter := func() *rate.Limiter {
		return rate.NewLimiter(rate.Limit(cfg.ProviderRateLimit), max(1, int(cfg.ProviderRateLimit)))
	}

	provs := []surf.Provider{
		providers.NewStormglassProvider(httpClient, cfg.StormglassAPIKey, providers.Options{Limiter: limiter()}),
		providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey, providers.Options{Limiter: limiter()}),
	}
	if cfg.OpenMeteoEnabled {
		provs = append(provs, providers.NewOpenMeteoMarineProvider(httpClient, providers.Options{Limiter: limiter()}))
	}

	var (
		catalog surf.Catalog
		prefs   surf.PreferenceStore
		cache   surf.ForecastCache
	)
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		db, err := store.OpenSQLite(cfg.DBPath, cfg.CacheDuration)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
		}
		defer db.Close()

		added, err := db.Seed(context.Background(), store.CaliforniaSpots)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to seed surf spots")
		}
		log.Info().Int("added", added).Str("path", cfg.DBPath).Msg("sqlite store ready")
		catalog, prefs, cache = db, db, db.ForecastCache()
	default:
		catalog = store.NewMemoryCatalog(store.CaliforniaSpots)
		prefs = store.NewMemoryPreferences()
		cache = store.NewMemoryForecastCache(cfg.CacheDuration)
	}

	// Core service: aggregation, ranking and lookups.
	aggregator := surf.NewAggregator(cache, provs, surf.AggregatorConfig{
		ProviderTimeout: cfg.ProviderTimeout,
		Horizon:         cfg.ForecastWindow,
	})
	ranker := surf.NewRanker(aggregator, cfg.RankWorkers, nil)
	service := surf.NewService(catalog, prefs, aggregator, ranker)

	// Scheduler that keeps the forecast cache warm.
	sched := scheduler.New(service, cfg.CacheWarmInterval, cfg.RankWorkers)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "surf-spot-ranking",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"service":   "surf-spot-ranking",
			"timestamp": time.Now().UTC(),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API routes.
	httpapi.RegisterRoutes(app, service)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("fiber server stopped")
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
}
