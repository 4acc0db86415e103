package providers_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/dharmasatrya/travelsearch/internal/models"
	"github.com/dharmasatrya/travelsearch/internal/providers"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func flightRequest() models.FlightSearchRequest {
	req := models.FlightSearchRequest{
		Origin:        "JFK",
		Destination:   "LAX",
		DepartureDate: "2026-10-15",
		Adults:        1,
	}
	req.Normalize()
	return req
}

const amadeusOffersBody = `{
	"data": [
		{
			"id": "1",
			"itineraries": [
				{
					"segments": [
						{
							"departure": {"iataCode": "JFK", "at": "2026-10-15T08:30:00"},
							"arrival": {"iataCode": "LAX", "at": "2026-10-15T11:45:00"},
							"carrierCode": "AA",
							"number": "100",
							"aircraft": {"code": "77W"}
						}
					]
				}
			],
			"price": {"total": "423.50", "currency": "USD"}
		},
		{
			"id": "2",
			"itineraries": [{"segments": []}],
			"price": {"total": "not-a-number", "currency": "USD"}
		}
	]
}`

func TestAmadeus_SearchParsesOffersAndSkipsBadOnes(t *testing.T) {
	var tokenCalls atomic.Int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/security/oauth2/token":
			tokenCalls.Add(1)
			if r.Method != http.MethodPost {
				t.Errorf("token request method %s", r.Method)
			}
			w.Write([]byte(`{"access_token": "tok123", "expires_in": 1799}`))
		case "/v2/shopping/flight-offers":
			if got := r.Header.Get("Authorization"); got != "Bearer tok123" {
				t.Errorf("unexpected authorization header %q", got)
			}
			if r.URL.Query().Get("originLocationCode") != "JFK" {
				t.Errorf("origin not forwarded: %s", r.URL.RawQuery)
			}
			w.Write([]byte(amadeusOffersBody))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	p := providers.NewAmadeusProvider(providers.AmadeusConfig{
		BaseURL:      srv.URL,
		ClientID:     "id",
		ClientSecret: "secret",
		Logger:       testLogger(),
	})

	flights, err := p.Search(context.Background(), flightRequest())
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if len(flights) != 1 {
		t.Fatalf("expected 1 parsable offer, got %d", len(flights))
	}
	f := flights[0]
	if f.Price != 423.50 {
		t.Errorf("expected price 423.50, got %.2f", f.Price)
	}
	if f.Provider != "amadeus" || f.ID != "amadeus_1" {
		t.Errorf("unexpected identity: %s %s", f.Provider, f.ID)
	}
	if f.Stops != 0 {
		t.Errorf("single-segment itinerary should be direct, got %d stops", f.Stops)
	}
	if f.Segments[0].DurationMinutes != 195 {
		t.Errorf("expected 195min duration, got %d", f.Segments[0].DurationMinutes)
	}
	if f.Segments[0].Airline.Name != "American Airlines" {
		t.Errorf("airline name not resolved: %s", f.Segments[0].Airline.Name)
	}
}

func TestAmadeus_TokenReusedAcrossSearches(t *testing.T) {
	var tokenCalls atomic.Int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/security/oauth2/token":
			tokenCalls.Add(1)
			w.Write([]byte(`{"access_token": "tok123", "expires_in": 1799}`))
		default:
			w.Write([]byte(`{"data": []}`))
		}
	}))
	defer srv.Close()

	p := providers.NewAmadeusProvider(providers.AmadeusConfig{
		BaseURL:      srv.URL,
		ClientID:     "id",
		ClientSecret: "secret",
		Logger:       testLogger(),
	})

	for i := 0; i < 3; i++ {
		if _, err := p.Search(context.Background(), flightRequest()); err != nil {
			t.Fatalf("search %d failed: %v", i, err)
		}
	}

	if tokenCalls.Load() != 1 {
		t.Errorf("expected single token fetch, got %d", tokenCalls.Load())
	}
}

func TestAmadeus_TokenRefetchedWhenExpiringSoon(t *testing.T) {
	var tokenCalls atomic.Int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/security/oauth2/token":
			tokenCalls.Add(1)
			// expires within the refresh margin, so every search refetches
			w.Write([]byte(`{"access_token": "tok123", "expires_in": 30}`))
		default:
			w.Write([]byte(`{"data": []}`))
		}
	}))
	defer srv.Close()

	p := providers.NewAmadeusProvider(providers.AmadeusConfig{
		BaseURL:      srv.URL,
		ClientID:     "id",
		ClientSecret: "secret",
		Logger:       testLogger(),
	})

	for i := 0; i < 2; i++ {
		if _, err := p.Search(context.Background(), flightRequest()); err != nil {
			t.Fatalf("search %d failed: %v", i, err)
		}
	}

	if tokenCalls.Load() != 2 {
		t.Errorf("expected token refetch per search, got %d fetches", tokenCalls.Load())
	}
}

func TestAmadeus_UpstreamErrorWrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/security/oauth2/token" {
			w.Write([]byte(`{"access_token": "tok123", "expires_in": 1799}`))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := providers.NewAmadeusProvider(providers.AmadeusConfig{
		BaseURL:      srv.URL,
		ClientID:     "id",
		ClientSecret: "secret",
		Logger:       testLogger(),
	})

	_, err := p.Search(context.Background(), flightRequest())
	var perr *providers.ProviderError
	if err == nil {
		t.Fatal("expected error from 502 upstream")
	}
	if !errors.As(err, &perr) || perr.Provider != "amadeus" {
		t.Fatalf("expected ProviderError from amadeus, got %v", err)
	}
}

func TestAmadeus_DisabledWithoutCredentials(t *testing.T) {
	p := providers.NewAmadeusProvider(providers.AmadeusConfig{ClientID: "only-id"})
	if p.Enabled() {
		t.Error("provider should be disabled without a full credential pair")
	}
}
