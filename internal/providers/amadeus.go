package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dharmasatrya/travelsearch/internal/airports"
	"github.com/dharmasatrya/travelsearch/internal/models"
)

// tokenRefreshMargin refreshes the OAuth token this long before its
// reported expiry so an in-flight search never races token death.
const tokenRefreshMargin = 60 * time.Second

type amadeusTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type amadeusOffersResponse struct {
	Data []amadeusOffer `json:"data"`
}

type amadeusOffer struct {
	ID          string             `json:"id"`
	Itineraries []amadeusItinerary `json:"itineraries"`
	Price       amadeusPrice       `json:"price"`
}

type amadeusItinerary struct {
	Segments []amadeusSegment `json:"segments"`
}

type amadeusSegment struct {
	Departure   amadeusEndpoint `json:"departure"`
	Arrival     amadeusEndpoint `json:"arrival"`
	CarrierCode string          `json:"carrierCode"`
	Number      string          `json:"number"`
	Aircraft    amadeusAircraft `json:"aircraft"`
	Operating   amadeusCarrier  `json:"operating"`
}

type amadeusEndpoint struct {
	IataCode string `json:"iataCode"`
	Terminal string `json:"terminal"`
	At       string `json:"at"`
}

type amadeusAircraft struct {
	Code string `json:"code"`
}

type amadeusCarrier struct {
	CarrierCode string `json:"carrierCode"`
}

type amadeusPrice struct {
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

// AmadeusProvider talks to the Amadeus flight-offers API using the
// OAuth2 client-credentials flow. The token is cached on the provider;
// refresh is best-effort serialized with a mutex, a redundant refresh
// under contention is harmless.
type AmadeusProvider struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	logger       *slog.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

type AmadeusConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	HTTPClient   *http.Client
	Logger       *slog.Logger
}

func NewAmadeusProvider(cfg AmadeusConfig) *AmadeusProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.amadeus.com"
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = defaultHTTPClient()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &AmadeusProvider{
		baseURL:      cfg.BaseURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient:   cfg.HTTPClient,
		logger:       cfg.Logger,
	}
}

func (p *AmadeusProvider) Name() string {
	return "amadeus"
}

func (p *AmadeusProvider) Enabled() bool {
	return p.clientID != "" && p.clientSecret != ""
}

func (p *AmadeusProvider) Search(ctx context.Context, req models.FlightSearchRequest) ([]models.Flight, error) {
	token, err := p.ensureAccessToken(ctx)
	if err != nil {
		return nil, NewProviderError(p.Name(), err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.baseURL+"/v2/shopping/flight-offers?"+p.searchParams(req).Encode(), nil)
	if err != nil {
		return nil, NewProviderError(p.Name(), err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, NewProviderError(p.Name(), err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, NewProviderError(p.Name(), fmt.Errorf("unexpected status %d", httpResp.StatusCode))
	}

	var resp amadeusOffersResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, NewProviderError(p.Name(), err)
	}

	flights := make([]models.Flight, 0, len(resp.Data))
	for _, offer := range resp.Data {
		flight, err := p.normalize(offer, req)
		if err != nil {
			p.logger.Warn("skipping unparsable amadeus offer", "offer_id", offer.ID, "error", err)
			continue
		}
		flights = append(flights, flight)
	}

	return flights, nil
}

func (p *AmadeusProvider) ensureAccessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.accessToken != "" && time.Now().Before(p.tokenExpiry) {
		return p.accessToken, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {p.clientID},
		"client_secret": {p.clientSecret},
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/v1/security/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request failed with status %d", httpResp.StatusCode)
	}

	var tokenResp amadeusTokenResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&tokenResp); err != nil {
		return "", err
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	expiresIn := time.Duration(tokenResp.ExpiresIn) * time.Second
	if expiresIn == 0 {
		expiresIn = time.Hour
	}

	p.accessToken = tokenResp.AccessToken
	p.tokenExpiry = time.Now().Add(expiresIn - tokenRefreshMargin)

	return p.accessToken, nil
}

func (p *AmadeusProvider) searchParams(req models.FlightSearchRequest) url.Values {
	params := url.Values{
		"originLocationCode":      {req.Origin},
		"destinationLocationCode": {req.Destination},
		"departureDate":           {req.DepartureDate},
		"adults":                  {strconv.Itoa(req.Adults)},
		"children":                {strconv.Itoa(req.Children)},
		"infants":                 {strconv.Itoa(req.Infants)},
		"travelClass":             {strings.ToUpper(string(req.CabinClass))},
		"currencyCode":            {"USD"},
		"max":                     {"50"},
	}

	if req.ReturnDate != "" {
		params.Set("returnDate", req.ReturnDate)
	}
	if req.MaxPrice != nil {
		params.Set("maxPrice", strconv.Itoa(int(*req.MaxPrice)))
	}
	if req.DirectFlightsOnly {
		params.Set("nonStop", "true")
	}

	return params
}

func (p *AmadeusProvider) normalize(offer amadeusOffer, req models.FlightSearchRequest) (models.Flight, error) {
	if len(offer.Itineraries) == 0 {
		return models.Flight{}, fmt.Errorf("offer has no itineraries")
	}

	price, err := strconv.ParseFloat(offer.Price.Total, 64)
	if err != nil {
		return models.Flight{}, fmt.Errorf("bad price %q: %w", offer.Price.Total, err)
	}

	currency := offer.Price.Currency
	if currency == "" {
		currency = "USD"
	}

	var segments []models.Segment
	totalDuration := 0

	for _, itin := range offer.Itineraries {
		for _, seg := range itin.Segments {
			segment, err := p.normalizeSegment(seg, req.CabinClass)
			if err != nil {
				return models.Flight{}, err
			}
			segments = append(segments, segment)
			totalDuration += segment.DurationMinutes
		}
	}

	if len(segments) == 0 {
		return models.Flight{}, fmt.Errorf("offer has no segments")
	}

	return models.Flight{
		ID:                   "amadeus_" + offer.ID,
		Segments:             segments,
		TotalDurationMinutes: totalDuration,
		Stops:                len(segments) - len(offer.Itineraries),
		Price:                price,
		Currency:             currency,
		DeepLink:             "https://amadeus.com/book/" + offer.ID,
		Provider:             p.Name(),
		LastUpdated:          time.Now().UTC(),
	}, nil
}

func (p *AmadeusProvider) normalizeSegment(seg amadeusSegment, cabin models.CabinClass) (models.Segment, error) {
	depTime, err := parseUpstreamTime(seg.Departure.At)
	if err != nil {
		return models.Segment{}, fmt.Errorf("bad departure time %q: %w", seg.Departure.At, err)
	}
	arrTime, err := parseUpstreamTime(seg.Arrival.At)
	if err != nil {
		return models.Segment{}, fmt.Errorf("bad arrival time %q: %w", seg.Arrival.At, err)
	}

	airlineCode := seg.Operating.CarrierCode
	if airlineCode == "" {
		airlineCode = seg.CarrierCode
	}

	origin := airports.Lookup(seg.Departure.IataCode)
	dest := airports.Lookup(seg.Arrival.IataCode)

	return models.Segment{
		Origin: models.Airport{
			Code: seg.Departure.IataCode,
			Name: origin.Name,
			City: origin.City,
		},
		Destination: models.Airport{
			Code: seg.Arrival.IataCode,
			Name: dest.Name,
			City: dest.City,
		},
		DepartureTime:   depTime,
		ArrivalTime:     arrTime,
		DurationMinutes: int(arrTime.Sub(depTime).Round(time.Minute).Minutes()),
		FlightNumber:    airlineCode + seg.Number,
		Airline: models.Airline{
			Code: airlineCode,
			Name: airports.AirlineName(airlineCode),
		},
		AircraftType: seg.Aircraft.Code,
		CabinClass:   cabin,
		BookingClass: "",
	}, nil
}

// parseUpstreamTime accepts the timestamp shapes the upstreams emit:
// RFC3339 with offset, or a bare local datetime.
func parseUpstreamTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}
