package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dharmasatrya/travelsearch/internal/airports"
	"github.com/dharmasatrya/travelsearch/internal/models"
)

const (
	skyscannerMaxPolls     = 10
	skyscannerPollInterval = time.Second
)

type skyscannerDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

type skyscannerPlace struct {
	IATA string `json:"iata"`
}

type skyscannerQueryLeg struct {
	OriginPlaceID      skyscannerPlace `json:"originPlaceId"`
	DestinationPlaceID skyscannerPlace `json:"destinationPlaceId"`
	Date               skyscannerDate  `json:"date"`
}

type skyscannerQuery struct {
	Market     string               `json:"market"`
	Locale     string               `json:"locale"`
	Currency   string               `json:"currency"`
	QueryLegs  []skyscannerQueryLeg `json:"queryLegs"`
	Adults     int                  `json:"adults"`
	Children   int                  `json:"children"`
	Infants    int                  `json:"infants"`
	CabinClass string               `json:"cabinClass"`
}

type skyscannerCreateRequest struct {
	Query skyscannerQuery `json:"query"`
}

type skyscannerPollResponse struct {
	Status  string `json:"status"`
	Content struct {
		Results struct {
			Itineraries map[string]skyscannerItinerary `json:"itineraries"`
		} `json:"results"`
	} `json:"content"`
}

type skyscannerItinerary struct {
	PricingOptions []skyscannerPricingOption `json:"pricingOptions"`
	Legs           []skyscannerLeg           `json:"legs"`
}

type skyscannerPricingOption struct {
	Price struct {
		Amount string `json:"amount"`
		Unit   string `json:"unit"`
	} `json:"price"`
	URL string `json:"url"`
}

type skyscannerLeg struct {
	OriginIATA      string `json:"originIata"`
	DestinationIATA string `json:"destinationIata"`
	DepartureAt     string `json:"departureDateTime"`
	ArrivalAt       string `json:"arrivalDateTime"`
	DurationMinutes int    `json:"durationInMinutes"`
	StopCount       int    `json:"stopCount"`
	CarrierCode     string `json:"marketingCarrierCode"`
	FlightNumber    string `json:"flightNumber"`
}

// SkyscannerProvider uses the live-search protocol: create a search
// session, then poll it until completion. Polling is bounded in both
// attempts and elapsed time; exhaustion degrades to an empty result.
type SkyscannerProvider struct {
	baseURL      string
	apiKey       string
	pollInterval time.Duration
	httpClient   *http.Client
	logger       *slog.Logger
}

type SkyscannerConfig struct {
	BaseURL      string
	APIKey       string
	PollInterval time.Duration
	HTTPClient   *http.Client
	Logger       *slog.Logger
}

func NewSkyscannerProvider(cfg SkyscannerConfig) *SkyscannerProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://partners.api.skyscanner.net"
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = skyscannerPollInterval
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = defaultHTTPClient()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &SkyscannerProvider{
		baseURL:      cfg.BaseURL,
		apiKey:       cfg.APIKey,
		pollInterval: cfg.PollInterval,
		httpClient:   cfg.HTTPClient,
		logger:       cfg.Logger,
	}
}

func (p *SkyscannerProvider) Name() string {
	return "skyscanner"
}

func (p *SkyscannerProvider) Enabled() bool {
	return p.apiKey != ""
}

func (p *SkyscannerProvider) Search(ctx context.Context, req models.FlightSearchRequest) ([]models.Flight, error) {
	sessionToken, err := p.createSession(ctx, req)
	if err != nil {
		return nil, NewProviderError(p.Name(), err)
	}

	flights, err := p.pollResults(ctx, sessionToken, req)
	if err != nil {
		return nil, NewProviderError(p.Name(), err)
	}
	return flights, nil
}

func (p *SkyscannerProvider) createSession(ctx context.Context, req models.FlightSearchRequest) (string, error) {
	payload := p.buildCreateRequest(req)

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/apiservices/v3/flights/live/search/create", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("session create failed with status %d", httpResp.StatusCode)
	}

	location := httpResp.Header.Get("Location")
	if location == "" {
		return "", fmt.Errorf("session create response missing location header")
	}

	parts := strings.Split(location, "/")
	return parts[len(parts)-1], nil
}

func (p *SkyscannerProvider) pollResults(ctx context.Context, sessionToken string, req models.FlightSearchRequest) ([]models.Flight, error) {
	for attempt := 0; attempt < skyscannerMaxPolls; attempt++ {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
			p.baseURL+"/apiservices/v3/flights/live/search/poll/"+sessionToken, nil)
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("x-api-key", p.apiKey)

		httpResp, err := p.httpClient.Do(httpReq)
		if err != nil {
			return nil, err
		}

		var poll skyscannerPollResponse
		decodeErr := json.NewDecoder(httpResp.Body).Decode(&poll)
		httpResp.Body.Close()

		if httpResp.StatusCode == http.StatusOK && decodeErr == nil &&
			poll.Status == "RESULT_STATUS_COMPLETE" {
			return p.parseItineraries(poll, req), nil
		}

		select {
		case <-time.After(p.pollInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	// The session never completed within our budget; this upstream is
	// one voice among several, so give up instead of blocking the
	// whole search.
	p.logger.Warn("skyscanner poll budget exhausted", "session", sessionToken)
	return []models.Flight{}, nil
}

func (p *SkyscannerProvider) buildCreateRequest(req models.FlightSearchRequest) skyscannerCreateRequest {
	depDate, _ := time.Parse("2006-01-02", req.DepartureDate)

	legs := []skyscannerQueryLeg{{
		OriginPlaceID:      skyscannerPlace{IATA: req.Origin},
		DestinationPlaceID: skyscannerPlace{IATA: req.Destination},
		Date: skyscannerDate{
			Year:  depDate.Year(),
			Month: int(depDate.Month()),
			Day:   depDate.Day(),
		},
	}}

	if req.ReturnDate != "" {
		retDate, err := time.Parse("2006-01-02", req.ReturnDate)
		if err == nil {
			legs = append(legs, skyscannerQueryLeg{
				OriginPlaceID:      skyscannerPlace{IATA: req.Destination},
				DestinationPlaceID: skyscannerPlace{IATA: req.Origin},
				Date: skyscannerDate{
					Year:  retDate.Year(),
					Month: int(retDate.Month()),
					Day:   retDate.Day(),
				},
			})
		}
	}

	return skyscannerCreateRequest{
		Query: skyscannerQuery{
			Market:     "US",
			Locale:     "en-US",
			Currency:   "USD",
			QueryLegs:  legs,
			Adults:     req.Adults,
			Children:   req.Children,
			Infants:    req.Infants,
			CabinClass: "CABIN_CLASS_" + strings.ToUpper(string(req.CabinClass)),
		},
	}
}

func (p *SkyscannerProvider) parseItineraries(poll skyscannerPollResponse, req models.FlightSearchRequest) []models.Flight {
	flights := make([]models.Flight, 0, len(poll.Content.Results.Itineraries))

	for id, itin := range poll.Content.Results.Itineraries {
		flight, err := p.normalize(id, itin, req)
		if err != nil {
			p.logger.Warn("skipping unparsable skyscanner itinerary", "itinerary_id", id, "error", err)
			continue
		}
		flights = append(flights, flight)
	}

	return flights
}

func (p *SkyscannerProvider) normalize(id string, itin skyscannerItinerary, req models.FlightSearchRequest) (models.Flight, error) {
	if len(itin.PricingOptions) == 0 {
		return models.Flight{}, fmt.Errorf("itinerary has no pricing options")
	}
	if len(itin.Legs) == 0 {
		return models.Flight{}, fmt.Errorf("itinerary has no legs")
	}

	pricing := itin.PricingOptions[0]
	price, err := parseSkyscannerAmount(pricing.Price.Amount, pricing.Price.Unit)
	if err != nil {
		return models.Flight{}, err
	}

	var segments []models.Segment
	totalDuration := 0
	stops := 0

	for _, leg := range itin.Legs {
		segment := p.normalizeLeg(leg, req)
		segments = append(segments, segment)
		totalDuration += segment.DurationMinutes
		stops += leg.StopCount
	}

	return models.Flight{
		ID:                   "skyscanner_" + id,
		Segments:             segments,
		TotalDurationMinutes: totalDuration,
		Stops:                stops,
		Price:                price,
		Currency:             "USD",
		DeepLink:             pricing.URL,
		Provider:             p.Name(),
		LastUpdated:          time.Now().UTC(),
	}, nil
}

// normalizeLeg maps one upstream leg to a segment. Skyscanner legs
// omit airport metadata, so missing sides fall back to the searched
// route and placeholder fields rather than holes.
func (p *SkyscannerProvider) normalizeLeg(leg skyscannerLeg, req models.FlightSearchRequest) models.Segment {
	originCode := leg.OriginIATA
	if originCode == "" {
		originCode = req.Origin
	}
	destCode := leg.DestinationIATA
	if destCode == "" {
		destCode = req.Destination
	}

	depTime, depErr := parseUpstreamTime(leg.DepartureAt)
	arrTime, arrErr := parseUpstreamTime(leg.ArrivalAt)

	duration := leg.DurationMinutes
	if duration == 0 {
		if depErr == nil && arrErr == nil {
			duration = int(arrTime.Sub(depTime).Round(time.Minute).Minutes())
		} else {
			duration = airports.EstimateDurationMinutes(originCode, destCode)
		}
	}
	if depErr != nil {
		// No usable departure time; estimate mid-morning on the
		// searched date so the segment stays structurally valid.
		if day, err := time.Parse("2006-01-02", req.DepartureDate); err == nil {
			depTime = day.Add(10 * time.Hour)
		}
	}
	if arrErr != nil {
		arrTime = depTime.Add(time.Duration(duration) * time.Minute)
	}

	origin := airports.Lookup(originCode)
	dest := airports.Lookup(destCode)

	return models.Segment{
		Origin: models.Airport{
			Code: originCode,
			Name: origin.Name,
			City: origin.City,
		},
		Destination: models.Airport{
			Code: destCode,
			Name: dest.Name,
			City: dest.City,
		},
		DepartureTime:   depTime,
		ArrivalTime:     arrTime,
		DurationMinutes: duration,
		FlightNumber:    leg.CarrierCode + leg.FlightNumber,
		Airline: models.Airline{
			Code: leg.CarrierCode,
			Name: airports.AirlineName(leg.CarrierCode),
		},
		CabinClass:   req.CabinClass,
		BookingClass: "",
	}
}

func parseSkyscannerAmount(amount, unit string) (float64, error) {
	var value float64
	if _, err := fmt.Sscanf(amount, "%f", &value); err != nil {
		return 0, fmt.Errorf("bad price amount %q: %w", amount, err)
	}
	// Live-search prices arrive in milli-units.
	if unit == "PRICE_UNIT_MILLI" || unit == "" {
		value /= 1000
	}
	return value, nil
}
