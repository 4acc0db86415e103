package search_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dharmasatrya/travelsearch/internal/cache"
	"github.com/dharmasatrya/travelsearch/internal/models"
	"github.com/dharmasatrya/travelsearch/internal/providers"
	"github.com/dharmasatrya/travelsearch/internal/search"
)

type memStore struct {
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (s *memStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.data[key], nil
}

func (s *memStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.data[key] = value
	return nil
}

func (s *memStore) Del(ctx context.Context, key string) error {
	delete(s.data, key)
	return nil
}

func (s *memStore) Close() error { return nil }

// stubFlightProvider returns canned offers and counts invocations.
type stubFlightProvider struct {
	name      string
	enabled   bool
	flights   []models.Flight
	err       error
	panics    bool
	enabledFn func() bool
	calls     atomic.Int64
}

func (p *stubFlightProvider) Name() string { return p.name }

func (p *stubFlightProvider) Enabled() bool {
	if p.enabledFn != nil {
		return p.enabledFn()
	}
	return p.enabled
}

func (p *stubFlightProvider) Search(ctx context.Context, req models.FlightSearchRequest) ([]models.Flight, error) {
	p.calls.Add(1)
	if p.panics {
		panic("stub provider exploded")
	}
	return p.flights, p.err
}

type stubHotelProvider struct {
	name    string
	enabled bool
	hotels  []models.Hotel
	err     error
}

func (p *stubHotelProvider) Name() string  { return p.name }
func (p *stubHotelProvider) Enabled() bool { return p.enabled }

func (p *stubHotelProvider) Search(ctx context.Context, req models.HotelSearchRequest) ([]models.Hotel, error) {
	return p.hotels, p.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}

func offers(prices ...float64) []models.Flight {
	dep := time.Now().UTC().AddDate(0, 0, 10).Truncate(time.Hour)
	flights := make([]models.Flight, 0, len(prices))
	for i, price := range prices {
		flights = append(flights, models.Flight{
			ID:       string(rune('a' + i)),
			Price:    price,
			Currency: "USD",
			Segments: []models.Segment{{
				Origin:        models.Airport{Code: "JFK"},
				Destination:   models.Airport{Code: "LAX"},
				DepartureTime: dep.Add(time.Duration(i) * time.Hour),
			}},
		})
	}
	return flights
}

func newFlightService(store cache.Store, stubs ...*stubFlightProvider) *search.FlightService {
	cfg := search.FlightServiceConfig{
		Cache:   cache.NewFlightCache(store, time.Minute, testLogger()),
		Timeout: 2 * time.Second,
		Logger:  testLogger(),
	}
	for _, p := range stubs {
		cfg.Providers = append(cfg.Providers, p)
	}
	return search.NewFlightService(cfg)
}

func TestFlightSearch_SingleProviderSorted(t *testing.T) {
	provider := &stubFlightProvider{name: "stub", enabled: true, flights: offers(420, 399, 450)}
	svc := newFlightService(newMemStore(), provider)

	resp, err := svc.Search(context.Background(), models.FlightSearchRequest{
		Origin: "JFK", Destination: "LAX", DepartureDate: futureDate(10), Adults: 1,
	})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if resp.TotalResults != 3 {
		t.Fatalf("expected 3 results, got %d", resp.TotalResults)
	}
	want := []float64{399, 420, 450}
	for i, w := range want {
		if resp.Flights[i].Price != w {
			t.Errorf("position %d: expected %.0f, got %.0f", i, w, resp.Flights[i].Price)
		}
	}
	if resp.CacheHit {
		t.Error("first search must not be a cache hit")
	}
	if len(resp.Providers) != 1 || resp.Providers[0] != "stub" {
		t.Errorf("unexpected providers list: %v", resp.Providers)
	}
	if resp.SearchID == "" {
		t.Error("search_id missing")
	}
}

func TestFlightSearch_SecondCallHitsCache(t *testing.T) {
	provider := &stubFlightProvider{name: "stub", enabled: true, flights: offers(420, 399)}
	svc := newFlightService(newMemStore(), provider)

	req := models.FlightSearchRequest{
		Origin: "JFK", Destination: "LAX", DepartureDate: futureDate(10), Adults: 1,
	}

	first, err := svc.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("first search failed: %v", err)
	}

	second, err := svc.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("second search failed: %v", err)
	}

	if !second.CacheHit {
		t.Fatal("second search should be a cache hit")
	}
	if provider.calls.Load() != 1 {
		t.Errorf("provider dispatched %d times, expected 1", provider.calls.Load())
	}
	if second.SearchID != first.SearchID {
		t.Error("cache hit should echo the original search_id")
	}
	if len(second.Flights) != len(first.Flights) {
		t.Errorf("cached offer list differs: %d vs %d", len(second.Flights), len(first.Flights))
	}
	if len(second.Providers) != 1 || second.Providers[0] != "stub" {
		t.Errorf("cached providers not echoed: %v", second.Providers)
	}
}

func TestFlightSearch_DirectOnlyFilters(t *testing.T) {
	flights := offers(100, 90, 110, 80)
	flights[1].Stops = 1
	flights[3].Stops = 2
	provider := &stubFlightProvider{name: "stub", enabled: true, flights: flights}
	svc := newFlightService(newMemStore(), provider)

	resp, err := svc.Search(context.Background(), models.FlightSearchRequest{
		Origin: "JFK", Destination: "LAX", DepartureDate: futureDate(10), Adults: 1,
		DirectFlightsOnly: true,
	})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if resp.TotalResults != 2 {
		t.Fatalf("expected 2 direct offers, got %d", resp.TotalResults)
	}
	for _, f := range resp.Flights {
		if f.Stops != 0 {
			t.Errorf("offer %s has stops, expected direct only", f.ID)
		}
	}
}

func TestFlightSearch_NoProviderConfigured(t *testing.T) {
	disabled := &stubFlightProvider{name: "stub", enabled: false}
	svc := newFlightService(newMemStore(), disabled)

	resp, err := svc.Search(context.Background(), models.FlightSearchRequest{
		Origin: "JFK", Destination: "LAX", DepartureDate: futureDate(10), Adults: 1,
	})
	if err != nil {
		t.Fatalf("degraded search must not error: %v", err)
	}
	if resp.TotalResults != 0 || len(resp.Flights) != 0 {
		t.Errorf("expected empty response, got %d results", resp.TotalResults)
	}
	if resp.CacheHit {
		t.Error("degraded response must not be a cache hit")
	}
	if len(resp.Providers) != 1 || resp.Providers[0] != models.ProviderTagNoneConfigured {
		t.Errorf("expected degraded marker, got %v", resp.Providers)
	}
	if disabled.calls.Load() != 0 {
		t.Error("disabled provider was dispatched")
	}
}

func TestFlightSearch_PartialFailureKeepsSurvivors(t *testing.T) {
	good := &stubFlightProvider{name: "good", enabled: true, flights: offers(200)}
	bad := &stubFlightProvider{name: "bad", enabled: true, err: errors.New("upstream down")}
	svc := newFlightService(newMemStore(), good, bad)

	resp, err := svc.Search(context.Background(), models.FlightSearchRequest{
		Origin: "JFK", Destination: "LAX", DepartureDate: futureDate(10), Adults: 1,
	})
	if err != nil {
		t.Fatalf("partial failure must not error: %v", err)
	}
	if resp.TotalResults != 1 {
		t.Fatalf("expected surviving provider's offer, got %d results", resp.TotalResults)
	}
	if len(resp.Providers) != 2 || resp.Providers[0] != "good" || resp.Providers[1] != "bad" {
		t.Errorf("expected both consulted providers listed, got %v", resp.Providers)
	}
}

func TestFlightSearch_AllProvidersFailedNotCached(t *testing.T) {
	one := &stubFlightProvider{name: "one", enabled: true, err: errors.New("upstream down")}
	two := &stubFlightProvider{name: "two", enabled: true, err: errors.New("timeout")}
	store := newMemStore()
	svc := newFlightService(store, one, two)

	req := models.FlightSearchRequest{
		Origin: "JFK", Destination: "LAX", DepartureDate: futureDate(10), Adults: 1,
	}
	resp, err := svc.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("total provider failure must not error: %v", err)
	}
	if resp.TotalResults != 0 {
		t.Fatalf("expected empty response, got %d results", resp.TotalResults)
	}
	if len(resp.Providers) != 2 || resp.Providers[0] != "one" || resp.Providers[1] != "two" {
		t.Errorf("response must name the consulted providers, got %v", resp.Providers)
	}
	if len(store.data) != 0 {
		t.Errorf("empty failure response was cached: %d entries", len(store.data))
	}

	// A later search must reach the providers again instead of being
	// served the earlier failure.
	if _, err := svc.Search(context.Background(), req); err != nil {
		t.Fatalf("second search failed: %v", err)
	}
	if one.calls.Load() != 2 {
		t.Errorf("provider dispatched %d times, expected 2", one.calls.Load())
	}
}

func TestFlightSearch_ProviderPanicDegrades(t *testing.T) {
	panicky := &stubFlightProvider{name: "panicky", enabled: true, panics: true}
	good := &stubFlightProvider{name: "good", enabled: true, flights: offers(300)}
	svc := newFlightService(newMemStore(), panicky, good)

	resp, err := svc.Search(context.Background(), models.FlightSearchRequest{
		Origin: "JFK", Destination: "LAX", DepartureDate: futureDate(10), Adults: 1,
	})
	if err != nil {
		t.Fatalf("provider panic must not error: %v", err)
	}
	if resp.TotalResults != 1 {
		t.Fatalf("expected survivor's offer, got %d", resp.TotalResults)
	}
	if len(resp.Providers) != 2 || resp.Providers[0] != "panicky" || resp.Providers[1] != "good" {
		t.Errorf("expected both consulted providers listed, got %v", resp.Providers)
	}
}

func TestFlightSearch_DispatchPanicReturnsFailedMarker(t *testing.T) {
	boom := &stubFlightProvider{name: "boom", enabledFn: func() bool { panic("bad wiring") }}
	svc := newFlightService(newMemStore(), boom)

	resp, err := svc.Search(context.Background(), models.FlightSearchRequest{
		Origin: "JFK", Destination: "LAX", DepartureDate: futureDate(10), Adults: 1,
	})
	if err != nil {
		t.Fatalf("boundary panic must not error: %v", err)
	}
	if len(resp.Flights) != 0 {
		t.Errorf("expected empty offer list, got %d", len(resp.Flights))
	}
	if len(resp.Providers) != 1 || resp.Providers[0] != models.ProviderTagSearchFailed {
		t.Errorf("expected failure marker, got %v", resp.Providers)
	}
}

func TestFlightSearch_ValidationBeforeDispatch(t *testing.T) {
	provider := &stubFlightProvider{name: "stub", enabled: true, flights: offers(100)}
	svc := newFlightService(newMemStore(), provider)

	dep := futureDate(10)
	_, err := svc.Search(context.Background(), models.FlightSearchRequest{
		Origin: "JFK", Destination: "LAX",
		DepartureDate: dep, ReturnDate: dep,
		Adults: 1,
	})

	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if provider.calls.Load() != 0 {
		t.Error("invalid request reached a provider")
	}
}

func TestHotelSearch_EndToEnd(t *testing.T) {
	rating := 4.0
	provider := &stubHotelProvider{
		name:    "stub",
		enabled: true,
		hotels: []models.Hotel{
			{ID: "h1", Name: "One", PricePerNight: 200, Rating: &rating},
			{ID: "h2", Name: "Two", PricePerNight: 120, Rating: &rating},
		},
	}
	svc := search.NewHotelService(search.HotelServiceConfig{
		Providers: []providers.HotelProvider{provider},
		Cache:     cache.NewHotelCache(newMemStore(), time.Minute, testLogger()),
		Timeout:   2 * time.Second,
		Logger:    testLogger(),
	})

	resp, err := svc.Search(context.Background(), models.HotelSearchRequest{
		Destination: "Paris", CheckIn: futureDate(10), CheckOut: futureDate(12), Adults: 2, Rooms: 1,
	})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if resp.TotalResults != 2 {
		t.Fatalf("expected 2 hotels, got %d", resp.TotalResults)
	}
	if resp.Hotels[0].ID != "h2" {
		t.Errorf("expected cheapest hotel first, got %s", resp.Hotels[0].ID)
	}
}

func TestHotelSearch_AllProvidersFailedNotCached(t *testing.T) {
	broken := &stubHotelProvider{name: "broken", enabled: true, err: errors.New("upstream down")}
	store := newMemStore()
	svc := search.NewHotelService(search.HotelServiceConfig{
		Providers: []providers.HotelProvider{broken},
		Cache:     cache.NewHotelCache(store, time.Minute, testLogger()),
		Timeout:   2 * time.Second,
		Logger:    testLogger(),
	})

	resp, err := svc.Search(context.Background(), models.HotelSearchRequest{
		Destination: "Paris", CheckIn: futureDate(10), CheckOut: futureDate(12), Adults: 2, Rooms: 1,
	})
	if err != nil {
		t.Fatalf("total provider failure must not error: %v", err)
	}
	if len(resp.Providers) != 1 || resp.Providers[0] != "broken" {
		t.Errorf("response must name the consulted provider, got %v", resp.Providers)
	}
	if len(store.data) != 0 {
		t.Errorf("empty failure response was cached: %d entries", len(store.data))
	}
}
