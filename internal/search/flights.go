// Package search orchestrates a search invocation end to end:
// validation, cache lookup, concurrent provider fan-out, result
// processing, cache write, and analytics.
package search

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dharmasatrya/travelsearch/internal/analytics"
	"github.com/dharmasatrya/travelsearch/internal/cache"
	"github.com/dharmasatrya/travelsearch/internal/models"
	"github.com/dharmasatrya/travelsearch/internal/obs"
	"github.com/dharmasatrya/travelsearch/internal/providers"
	"github.com/dharmasatrya/travelsearch/internal/ratelimit"
	"github.com/dharmasatrya/travelsearch/internal/results"
	"github.com/dharmasatrya/travelsearch/pkg/currency"
)

// DefaultSearchTimeout bounds the whole fan-out/collect phase when no
// timeout is configured.
const DefaultSearchTimeout = 15 * time.Second

var errProviderPanic = errors.New("provider panicked")

type FlightService struct {
	providers []providers.FlightProvider
	cache     *cache.FlightCache
	limiter   *ratelimit.ProviderLimiter
	analytics analytics.Sink
	metrics   *obs.Metrics
	timeout   time.Duration
	logger    *slog.Logger
}

type FlightServiceConfig struct {
	Providers []providers.FlightProvider
	Cache     *cache.FlightCache
	Limiter   *ratelimit.ProviderLimiter
	Analytics analytics.Sink
	Metrics   *obs.Metrics
	Timeout   time.Duration
	Logger    *slog.Logger
}

func NewFlightService(cfg FlightServiceConfig) *FlightService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultSearchTimeout
	}
	if cfg.Limiter == nil {
		cfg.Limiter = ratelimit.NewDefault()
	}
	if cfg.Analytics == nil {
		cfg.Analytics = analytics.NopSink{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.NewFlightCache(cache.NewNoOpStore(), 0, cfg.Logger)
	}
	return &FlightService{
		providers: cfg.Providers,
		cache:     cfg.Cache,
		limiter:   cfg.Limiter,
		analytics: cfg.Analytics,
		metrics:   cfg.Metrics,
		timeout:   cfg.Timeout,
		logger:    cfg.Logger,
	}
}

// Search runs one flight search. Validation failure is the only error
// path; every downstream failure degrades to fewer results instead.
func (s *FlightService) Search(ctx context.Context, req models.FlightSearchRequest) (*models.FlightSearchResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	if s.metrics != nil {
		s.metrics.IncSearches("flights")
	}

	if cached, ok := s.cache.Get(ctx, req); ok {
		cached.CacheHit = true
		cached.SearchTimeMS = time.Since(start).Milliseconds()
		if s.metrics != nil {
			s.metrics.IncCacheHits("flights")
		}
		s.logAnalytics(ctx, req, cached)
		return cached, nil
	}

	resp, cacheable := s.dispatch(ctx, req, start)

	// Degraded responses are transient; caching one would serve the
	// failure for the whole TTL.
	if cacheable {
		if err := s.cache.Set(ctx, req, resp); err != nil {
			s.logger.Warn("flight cache write failed", "error", err)
		}
	}
	s.logAnalytics(ctx, req, resp)

	return resp, nil
}

// dispatch fans the search out to every enabled provider and merges
// whatever arrives before the deadline. The providers list names every
// consulted provider, failed ones included, so an empty result still
// explains which upstreams were asked. The returned bool reports
// whether the response may be cached; a response where no provider
// delivered is transient and must not be. A panic anywhere inside is
// recovered into an empty degraded response.
func (s *FlightService) dispatch(ctx context.Context, req models.FlightSearchRequest, start time.Time) (resp *models.FlightSearchResponse, cacheable bool) {
	searchID := uuid.NewString()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("flight search panicked", "panic", r, "search_id", searchID)
			resp = &models.FlightSearchResponse{
				Flights:      []models.Flight{},
				SearchID:     searchID,
				SearchParams: req,
				Providers:    []string{models.ProviderTagSearchFailed},
				SearchTimeMS: time.Since(start).Milliseconds(),
			}
			cacheable = false
		}
	}()

	enabled := make([]providers.FlightProvider, 0, len(s.providers))
	for _, p := range s.providers {
		if p.Enabled() {
			enabled = append(enabled, p)
		}
	}

	if len(enabled) == 0 {
		s.logger.Warn("no flight provider configured")
		return &models.FlightSearchResponse{
			Flights:      []models.Flight{},
			SearchID:     searchID,
			SearchParams: req,
			Providers:    []string{models.ProviderTagNoneConfigured},
			SearchTimeMS: time.Since(start).Milliseconds(),
		}, false
	}

	// Recorded up front so the response names the consulted providers
	// even when every one of them fails.
	consulted := make([]string, 0, len(enabled))
	for _, p := range enabled {
		consulted = append(consulted, p.Name())
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type providerResult struct {
		provider string
		flights  []models.Flight
		err      error
	}

	resultCh := make(chan providerResult, len(enabled))

	for _, p := range enabled {
		go func(p providers.FlightProvider) {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("flight provider panicked", "provider", p.Name(), "panic", r)
					resultCh <- providerResult{provider: p.Name(), err: errProviderPanic}
				}
			}()

			if err := s.limiter.Wait(ctx, p.Name()); err != nil {
				resultCh <- providerResult{provider: p.Name(), err: err}
				return
			}

			dispatchStart := time.Now()
			flights, err := p.Search(ctx, req)
			if s.metrics != nil {
				s.metrics.ObserveProviderLatency(p.Name(), time.Since(dispatchStart).Seconds())
			}
			resultCh <- providerResult{provider: p.Name(), flights: flights, err: err}
		}(p)
	}

	var merged []models.Flight
	delivered := 0

	for range enabled {
		res := <-resultCh
		if res.err != nil {
			s.logger.Warn("flight provider failed", "provider", res.provider, "error", res.err)
			if s.metrics != nil {
				s.metrics.IncProviderFailure(res.provider)
			}
			continue
		}
		merged = append(merged, res.flights...)
		delivered++
	}

	processed, total := results.ProcessFlights(merged, req)

	cheapest := ""
	if len(processed) > 0 {
		cheapest = currency.Format(processed[0].Price, processed[0].Currency)
	}
	s.logger.Info("flight search complete",
		"search_id", searchID,
		"providers", consulted,
		"delivered", delivered,
		"results", total,
		"cheapest", cheapest,
		"duration_ms", time.Since(start).Milliseconds())

	return &models.FlightSearchResponse{
		Flights:      processed,
		SearchID:     searchID,
		TotalResults: total,
		SearchParams: req,
		Providers:    consulted,
		SearchTimeMS: time.Since(start).Milliseconds(),
	}, delivered > 0
}

func (s *FlightService) logAnalytics(ctx context.Context, req models.FlightSearchRequest, resp *models.FlightSearchResponse) {
	rec := analytics.Record{
		SearchID:      resp.SearchID,
		SearchType:    "flights",
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureDate: req.DepartureDate,
		ReturnDate:    req.ReturnDate,
		Adults:        req.Adults,
		Children:      req.Children,
		ResultsCount:  resp.TotalResults,
		CacheHit:      resp.CacheHit,
		SearchTimeMS:  resp.SearchTimeMS,
		Providers:     resp.Providers,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.analytics.LogSearch(ctx, rec); err != nil {
		s.logger.Warn("flight analytics write failed", "search_id", resp.SearchID, "error", err)
	}
}
