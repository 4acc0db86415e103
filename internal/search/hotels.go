package search

import (
	"context"
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

type HotelService struct {
	providers []providers.HotelProvider
	cache     *cache.HotelCache
	limiter   *ratelimit.ProviderLimiter
	analytics analytics.Sink
	metrics   *obs.Metrics
	timeout   time.Duration
	logger    *slog.Logger
}

type HotelServiceConfig struct {
	Providers []providers.HotelProvider
	Cache     *cache.HotelCache
	Limiter   *ratelimit.ProviderLimiter
	Analytics analytics.Sink
	Metrics   *obs.Metrics
	Timeout   time.Duration
	Logger    *slog.Logger
}

func NewHotelService(cfg HotelServiceConfig) *HotelService {
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
		cfg.Cache = cache.NewHotelCache(cache.NewNoOpStore(), 0, cfg.Logger)
	}
	return &HotelService{
		providers: cfg.Providers,
		cache:     cfg.Cache,
		limiter:   cfg.Limiter,
		analytics: cfg.Analytics,
		metrics:   cfg.Metrics,
		timeout:   cfg.Timeout,
		logger:    cfg.Logger,
	}
}

func (s *HotelService) Search(ctx context.Context, req models.HotelSearchRequest) (*models.HotelSearchResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	if s.metrics != nil {
		s.metrics.IncSearches("hotels")
	}

	if cached, ok := s.cache.Get(ctx, req); ok {
		cached.CacheHit = true
		cached.SearchTimeMS = time.Since(start).Milliseconds()
		if s.metrics != nil {
			s.metrics.IncCacheHits("hotels")
		}
		s.logAnalytics(ctx, req, cached)
		return cached, nil
	}

	resp, cacheable := s.dispatch(ctx, req, start)

	if cacheable {
		if err := s.cache.Set(ctx, req, resp); err != nil {
			s.logger.Warn("hotel cache write failed", "error", err)
		}
	}
	s.logAnalytics(ctx, req, resp)

	return resp, nil
}

func (s *HotelService) dispatch(ctx context.Context, req models.HotelSearchRequest, start time.Time) (resp *models.HotelSearchResponse, cacheable bool) {
	searchID := uuid.NewString()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("hotel search panicked", "panic", r, "search_id", searchID)
			resp = &models.HotelSearchResponse{
				Hotels:       []models.Hotel{},
				SearchID:     searchID,
				SearchParams: req,
				Providers:    []string{models.ProviderTagSearchFailed},
				SearchTimeMS: time.Since(start).Milliseconds(),
			}
			cacheable = false
		}
	}()

	enabled := make([]providers.HotelProvider, 0, len(s.providers))
	for _, p := range s.providers {
		if p.Enabled() {
			enabled = append(enabled, p)
		}
	}

	if len(enabled) == 0 {
		s.logger.Warn("no hotel provider configured")
		return &models.HotelSearchResponse{
			Hotels:       []models.Hotel{},
			SearchID:     searchID,
			SearchParams: req,
			Providers:    []string{models.ProviderTagNoneConfigured},
			SearchTimeMS: time.Since(start).Milliseconds(),
		}, false
	}

	consulted := make([]string, 0, len(enabled))
	for _, p := range enabled {
		consulted = append(consulted, p.Name())
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type providerResult struct {
		provider string
		hotels   []models.Hotel
		err      error
	}

	resultCh := make(chan providerResult, len(enabled))

	for _, p := range enabled {
		go func(p providers.HotelProvider) {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("hotel provider panicked", "provider", p.Name(), "panic", r)
					resultCh <- providerResult{provider: p.Name(), err: errProviderPanic}
				}
			}()

			if err := s.limiter.Wait(ctx, p.Name()); err != nil {
				resultCh <- providerResult{provider: p.Name(), err: err}
				return
			}

			dispatchStart := time.Now()
			hotels, err := p.Search(ctx, req)
			if s.metrics != nil {
				s.metrics.ObserveProviderLatency(p.Name(), time.Since(dispatchStart).Seconds())
			}
			resultCh <- providerResult{provider: p.Name(), hotels: hotels, err: err}
		}(p)
	}

	var merged []models.Hotel
	delivered := 0

	for range enabled {
		res := <-resultCh
		if res.err != nil {
			s.logger.Warn("hotel provider failed", "provider", res.provider, "error", res.err)
			if s.metrics != nil {
				s.metrics.IncProviderFailure(res.provider)
			}
			continue
		}
		merged = append(merged, res.hotels...)
		delivered++
	}

	processed, total := results.ProcessHotels(merged, req)

	cheapest := ""
	if len(processed) > 0 {
		cheapest = currency.Format(processed[0].PricePerNight, processed[0].Currency)
	}
	s.logger.Info("hotel search complete",
		"search_id", searchID,
		"providers", consulted,
		"delivered", delivered,
		"results", total,
		"cheapest_per_night", cheapest,
		"duration_ms", time.Since(start).Milliseconds())

	return &models.HotelSearchResponse{
		Hotels:       processed,
		SearchID:     searchID,
		TotalResults: total,
		SearchParams: req,
		Providers:    consulted,
		SearchTimeMS: time.Since(start).Milliseconds(),
	}, delivered > 0
}

func (s *HotelService) logAnalytics(ctx context.Context, req models.HotelSearchRequest, resp *models.HotelSearchResponse) {
	rec := analytics.Record{
		SearchID:     resp.SearchID,
		SearchType:   "hotels",
		Destination:  req.Destination,
		CheckIn:      req.CheckIn,
		CheckOut:     req.CheckOut,
		Adults:       req.Adults,
		Children:     req.Children,
		Rooms:        req.Rooms,
		ResultsCount: resp.TotalResults,
		CacheHit:     resp.CacheHit,
		SearchTimeMS: resp.SearchTimeMS,
		Providers:    resp.Providers,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.analytics.LogSearch(ctx, rec); err != nil {
		s.logger.Warn("hotel analytics write failed", "search_id", resp.SearchID, "error", err)
	}
}
