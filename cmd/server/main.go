package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dharmasatrya/travelsearch/internal/analytics"
	"github.com/dharmasatrya/travelsearch/internal/cache"
	"github.com/dharmasatrya/travelsearch/internal/config"
	"github.com/dharmasatrya/travelsearch/internal/handler"
	"github.com/dharmasatrya/travelsearch/internal/obs"
	"github.com/dharmasatrya/travelsearch/internal/providers"
	"github.com/dharmasatrya/travelsearch/internal/ratelimit"
	"github.com/dharmasatrya/travelsearch/internal/search"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	store := newStore(cfg, logger)
	defer store.Close()

	sink := newSink(cfg, logger)
	defer sink.Close()

	metrics := obs.NewMetrics(prometheus.NewRegistry())

	rateLimiter := newRateLimiter(cfg)

	flightProviders := buildFlightProviders(cfg, logger)
	hotelProviders := buildHotelProviders(cfg, logger)
	logger.Info("providers initialized",
		"flights", len(flightProviders),
		"hotels", len(hotelProviders))

	flightService := search.NewFlightService(search.FlightServiceConfig{
		Providers: flightProviders,
		Cache:     cache.NewFlightCache(store, cfg.Cache.FlightTTL, logger),
		Limiter:   rateLimiter,
		Analytics: sink,
		Metrics:   metrics,
		Timeout:   cfg.Search.Timeout,
		Logger:    logger,
	})
	hotelService := search.NewHotelService(search.HotelServiceConfig{
		Providers: hotelProviders,
		Cache:     cache.NewHotelCache(store, cfg.Cache.HotelTTL, logger),
		Limiter:   rateLimiter,
		Analytics: sink,
		Metrics:   metrics,
		Timeout:   cfg.Search.Timeout,
		Logger:    logger,
	})

	searchHandler := handler.NewSearchHandler(flightService, hotelService)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())

	api := e.Group("/api/v1")
	api.POST("/flights/search", searchHandler.SearchFlights)
	api.GET("/flights/search", searchHandler.SearchFlights)
	api.POST("/hotels/search", searchHandler.SearchHotels)
	api.GET("/hotels/search", searchHandler.SearchHotels)
	e.GET("/health", handler.HealthHandler)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	go func() {
		logger.Info("starting travel search server", "port", cfg.HTTP.Port)
		if err := e.Start(":" + cfg.HTTP.Port); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// newStore connects to Redis when caching is on, degrading to the
// no-op store when Redis is unreachable so the service still serves.
func newStore(cfg *config.Config, logger *slog.Logger) cache.Store {
	if !cfg.Cache.Enabled {
		logger.Info("cache disabled")
		return cache.NewNoOpStore()
	}

	store, err := cache.NewRedisStore(cache.RedisConfig{
		Addr:     cfg.Cache.RedisAddr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
	})
	if err != nil {
		logger.Warn("redis unavailable, running without cache", "addr", cfg.Cache.RedisAddr, "error", err)
		return cache.NewNoOpStore()
	}

	logger.Info("redis cache connected", "addr", cfg.Cache.RedisAddr)
	return store
}

// newRateLimiter builds the provider pacer. Skyscanner's poll-based
// API has a tighter quota than the rest, so it carries a built-in
// override; config overrides win over built-ins.
func newRateLimiter(cfg *config.Config) *ratelimit.ProviderLimiter {
	overrides := map[string]ratelimit.Limit{
		"skyscanner": {RPS: 5, Burst: 10},
	}
	for name, pr := range cfg.RateLimit.Providers {
		overrides[name] = ratelimit.Limit{RPS: pr.RPS, Burst: pr.Burst}
	}
	return ratelimit.New(
		ratelimit.Limit{RPS: cfg.RateLimit.RPS, Burst: cfg.RateLimit.Burst},
		overrides,
	)
}

func newSink(cfg *config.Config, logger *slog.Logger) analytics.Sink {
	switch cfg.Analytics.Sink {
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		sink, err := analytics.NewPostgresSink(ctx, cfg.Analytics.PostgresDSN)
		if err != nil {
			logger.Warn("postgres analytics unavailable, dropping search logs", "error", err)
			return analytics.NopSink{}
		}
		logger.Info("analytics sink: postgres")
		return sink
	case "kafka":
		logger.Info("analytics sink: kafka", "brokers", cfg.Analytics.KafkaBrokers, "topic", cfg.Analytics.KafkaTopic)
		return analytics.NewKafkaSink(cfg.Analytics.KafkaBrokers, cfg.Analytics.KafkaTopic)
	default:
		return analytics.NopSink{}
	}
}

func buildFlightProviders(cfg *config.Config, logger *slog.Logger) []providers.FlightProvider {
	list := []providers.FlightProvider{
		providers.NewAmadeusProvider(providers.AmadeusConfig{
			ClientID:     cfg.Providers.AmadeusClientID,
			ClientSecret: cfg.Providers.AmadeusClientSecret,
			Logger:       logger,
		}),
		providers.NewSkyscannerProvider(providers.SkyscannerConfig{
			APIKey: cfg.Providers.SkyscannerAPIKey,
			Logger: logger,
		}),
		providers.NewTravelpayoutsProvider(providers.TravelpayoutsConfig{
			Token:  cfg.Providers.TravelpayoutsToken,
			Marker: cfg.Providers.TravelpayoutsMarker,
			Logger: logger,
		}),
		providers.NewMockFlightProvider(cfg.Providers.MockEnabled),
	}
	return list
}

func buildHotelProviders(cfg *config.Config, logger *slog.Logger) []providers.HotelProvider {
	return []providers.HotelProvider{
		providers.NewBookingProvider(providers.BookingConfig{
			APIKey: cfg.Providers.BookingAPIKey,
			Logger: logger,
		}),
		providers.NewMockHotelProvider(cfg.Providers.MockEnabled),
	}
}
