package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dharmasatrya/travelsearch/internal/airports"
	"github.com/dharmasatrya/travelsearch/internal/models"
)

type travelpayoutsResponse struct {
	Data []travelpayoutsFlight `json:"data"`
}

type travelpayoutsFlight struct {
	Origin       string  `json:"origin"`
	Destination  string  `json:"destination"`
	Price        float64 `json:"price"`
	Currency     string  `json:"currency"`
	Airline      string  `json:"airline"`
	FlightNumber string  `json:"flight_number"`
	DepartDate   string  `json:"depart_date"`
	ReturnDate   string  `json:"return_date"`
	Transfers    int     `json:"transfers"`
	Link         string  `json:"link"`
}

// TravelpayoutsProvider queries the aviasales price feed. The feed is
// a pure price index with no schedule data, so segment times are
// synthesized: departure at 10:00 on the travel date (15:00 for the
// return leg), duration from the route estimate table. Offers from
// this adapter trade schedule fidelity for coverage.
type TravelpayoutsProvider struct {
	baseURL    string
	token      string
	marker     string
	httpClient *http.Client
	logger     *slog.Logger
}

type TravelpayoutsConfig struct {
	BaseURL    string
	Token      string
	Marker     string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

func NewTravelpayoutsProvider(cfg TravelpayoutsConfig) *TravelpayoutsProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.travelpayouts.com"
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = defaultHTTPClient()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &TravelpayoutsProvider{
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		marker:     cfg.Marker,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
	}
}

func (p *TravelpayoutsProvider) Name() string {
	return "travelpayouts"
}

func (p *TravelpayoutsProvider) Enabled() bool {
	return p.token != ""
}

func (p *TravelpayoutsProvider) Search(ctx context.Context, req models.FlightSearchRequest) ([]models.Flight, error) {
	params := url.Values{
		"origin":      {req.Origin},
		"destination": {req.Destination},
		"depart_date": {req.DepartureDate},
		"currency":    {"usd"},
		"token":       {p.token},
	}
	if req.ReturnDate != "" {
		params.Set("return_date", req.ReturnDate)
	}
	if p.marker != "" {
		params.Set("marker", p.marker)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.baseURL+"/aviasales/v3/prices_for_dates?"+params.Encode(), nil)
	if err != nil {
		return nil, NewProviderError(p.Name(), err)
	}

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, NewProviderError(p.Name(), err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, NewProviderError(p.Name(), fmt.Errorf("unexpected status %d", httpResp.StatusCode))
	}

	var resp travelpayoutsResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, NewProviderError(p.Name(), err)
	}

	flights := make([]models.Flight, 0, len(resp.Data))
	for _, f := range resp.Data {
		flight, err := p.normalize(f, req)
		if err != nil {
			p.logger.Warn("skipping unparsable travelpayouts record", "flight_number", f.FlightNumber, "error", err)
			continue
		}
		flights = append(flights, flight)
	}

	return flights, nil
}

func (p *TravelpayoutsProvider) normalize(f travelpayoutsFlight, req models.FlightSearchRequest) (models.Flight, error) {
	if f.Price <= 0 {
		return models.Flight{}, fmt.Errorf("record has no price")
	}

	origin := f.Origin
	if origin == "" {
		origin = req.Origin
	}
	destination := f.Destination
	if destination == "" {
		destination = req.Destination
	}

	departDate := f.DepartDate
	if departDate == "" {
		departDate = req.DepartureDate
	}

	flightNumber := f.FlightNumber
	if flightNumber == "" && f.Airline != "" {
		flightNumber = f.Airline + "000"
	}

	var segments []models.Segment

	outbound, err := p.synthesizeSegment(origin, destination, departDate, 10, flightNumber, f.Airline, req.CabinClass)
	if err != nil {
		return models.Flight{}, err
	}
	segments = append(segments, outbound)

	if f.ReturnDate != "" {
		ret, err := p.synthesizeSegment(destination, origin, f.ReturnDate, 15, flightNumber, f.Airline, req.CabinClass)
		if err == nil {
			segments = append(segments, ret)
		}
	}

	totalDuration := 0
	for _, seg := range segments {
		totalDuration += seg.DurationMinutes
	}

	currency := strings.ToUpper(f.Currency)
	if currency == "" {
		currency = "USD"
	}

	deepLink := f.Link
	if deepLink != "" && !strings.HasPrefix(deepLink, "http") {
		deepLink = "https://www.aviasales.com" + deepLink
	}

	return models.Flight{
		ID:                   fmt.Sprintf("travelpayouts_%s_%s", flightNumber, departDate),
		Segments:             segments,
		TotalDurationMinutes: totalDuration,
		Stops:                f.Transfers,
		Price:                f.Price,
		Currency:             currency,
		DeepLink:             deepLink,
		Provider:             p.Name(),
		LastUpdated:          time.Now().UTC(),
	}, nil
}

func (p *TravelpayoutsProvider) synthesizeSegment(originCode, destCode, date string, departHour int, flightNumber, airlineCode string, cabin models.CabinClass) (models.Segment, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return models.Segment{}, fmt.Errorf("bad date %q: %w", date, err)
	}

	depTime := day.Add(time.Duration(departHour) * time.Hour)
	duration := airports.EstimateDurationMinutes(originCode, destCode)
	arrTime := depTime.Add(time.Duration(duration) * time.Minute)

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
		FlightNumber:    flightNumber,
		Airline: models.Airline{
			Code: airlineCode,
			Name: airports.AirlineName(airlineCode),
		},
		CabinClass:   cabin,
		BookingClass: "",
	}, nil
}
