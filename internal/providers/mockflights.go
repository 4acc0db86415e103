package providers

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/dharmasatrya/travelsearch/internal/airports"
	"github.com/dharmasatrya/travelsearch/internal/models"
)

type mockAirline struct {
	Code string
	Name string
}

var mockAirlines = []mockAirline{
	{"AA", "American Airlines"},
	{"DL", "Delta Air Lines"},
	{"UA", "United Airlines"},
	{"BA", "British Airways"},
	{"AF", "Air France"},
	{"LH", "Lufthansa"},
	{"EK", "Emirates"},
	{"SQ", "Singapore Airlines"},
}

var mockAircraft = []string{"738", "320", "321", "77W", "359", "789"}

// mockHubs are the connection points used for one-stop itineraries.
var mockHubs = []string{"ATL", "ORD", "DFW", "DEN", "AMS", "FRA", "DXB", "IST"}

// MockFlightProvider generates plausible offers without network calls.
// Results are deterministic for a given route and date so repeated
// searches in development stay stable across cache misses.
type MockFlightProvider struct {
	enabled bool
}

func NewMockFlightProvider(enabled bool) *MockFlightProvider {
	return &MockFlightProvider{enabled: enabled}
}

func (p *MockFlightProvider) Name() string {
	return "mock"
}

func (p *MockFlightProvider) Enabled() bool {
	return p.enabled
}

func (p *MockFlightProvider) Search(ctx context.Context, req models.FlightSearchRequest) ([]models.Flight, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewProviderError(p.Name(), err)
	}

	rng := rand.New(rand.NewSource(mockSeed(req.Origin, req.Destination, req.DepartureDate)))
	count := 8 + rng.Intn(8)

	flights := make([]models.Flight, 0, count)
	for i := 0; i < count; i++ {
		flights = append(flights, p.generate(rng, req, i))
	}
	return flights, nil
}

func (p *MockFlightProvider) generate(rng *rand.Rand, req models.FlightSearchRequest, index int) models.Flight {
	airline := mockAirlines[rng.Intn(len(mockAirlines))]
	stops := 0
	if rng.Float64() > 0.6 && !req.DirectFlightsOnly {
		stops = 1
	}

	basePrice := 150 + rng.Float64()*850
	if req.CabinClass == models.CabinBusiness {
		basePrice *= 3
	} else if req.CabinClass == models.CabinFirst {
		basePrice *= 5
	} else if req.CabinClass == models.CabinPremiumEconomy {
		basePrice *= 1.6
	}

	day, _ := time.Parse("2006-01-02", req.DepartureDate)
	depTime := day.Add(time.Duration(6+rng.Intn(16)) * time.Hour).
		Add(time.Duration(rng.Intn(12)*5) * time.Minute)

	segments, totalDuration := p.itinerary(rng, req.Origin, req.Destination, depTime, stops, airline, req.CabinClass)
	flightNumber := segments[0].FlightNumber

	if req.ReturnDate != "" {
		retDay, err := time.Parse("2006-01-02", req.ReturnDate)
		if err == nil {
			retDep := retDay.Add(time.Duration(6+rng.Intn(16)) * time.Hour)
			ret := p.segment(rng, req.Destination, req.Origin, retDep, airline, req.CabinClass)
			segments = append(segments, ret)
			totalDuration += ret.DurationMinutes
			basePrice *= 1.8
		}
	}

	return models.Flight{
		ID:                   fmt.Sprintf("mock_%s_%d", flightNumber, index),
		Segments:             segments,
		TotalDurationMinutes: totalDuration,
		Stops:                stops,
		Price:                float64(int(basePrice*100)) / 100,
		Currency:             airports.Currency(req.Origin),
		DeepLink:             fmt.Sprintf("https://example.com/book/%s", flightNumber),
		Provider:             p.Name(),
		LastUpdated:          time.Now().UTC(),
	}
}

// itinerary builds the outbound leg. A one-stop itinerary routes
// through a hub and carries two segments, so a stop count derived from
// the segment list agrees with the Stops field.
func (p *MockFlightProvider) itinerary(rng *rand.Rand, from, to string, dep time.Time, stops int, airline mockAirline, cabin models.CabinClass) ([]models.Segment, int) {
	if stops == 0 {
		seg := p.segment(rng, from, to, dep, airline, cabin)
		return []models.Segment{seg}, seg.DurationMinutes
	}

	via := connectionPoint(rng, from, to)
	first := p.segment(rng, from, via, dep, airline, cabin)
	layover := 60 + rng.Intn(120)
	second := p.segment(rng, via, to, first.ArrivalTime.Add(time.Duration(layover)*time.Minute), airline, cabin)

	total := first.DurationMinutes + layover + second.DurationMinutes
	return []models.Segment{first, second}, total
}

func (p *MockFlightProvider) segment(rng *rand.Rand, from, to string, dep time.Time, airline mockAirline, cabin models.CabinClass) models.Segment {
	duration := airports.EstimateDurationMinutes(from, to) + rng.Intn(45)
	fromInfo := airports.Lookup(from)
	toInfo := airports.Lookup(to)

	return models.Segment{
		Origin: models.Airport{
			Code: from,
			Name: fromInfo.Name,
			City: fromInfo.City,
		},
		Destination: models.Airport{
			Code: to,
			Name: toInfo.Name,
			City: toInfo.City,
		},
		DepartureTime:   dep,
		ArrivalTime:     dep.Add(time.Duration(duration) * time.Minute),
		DurationMinutes: duration,
		FlightNumber:    fmt.Sprintf("%s%d", airline.Code, 100+rng.Intn(8900)),
		Airline: models.Airline{
			Code: airline.Code,
			Name: airline.Name,
		},
		AircraftType: mockAircraft[rng.Intn(len(mockAircraft))],
		CabinClass:   cabin,
		BookingClass: string('K' + rune(rng.Intn(5))),
	}
}

// connectionPoint picks a hub distinct from both endpoints.
func connectionPoint(rng *rand.Rand, from, to string) string {
	for i := rng.Intn(len(mockHubs)); ; i = (i + 1) % len(mockHubs) {
		if hub := mockHubs[i]; hub != from && hub != to {
			return hub
		}
	}
}

// mockSeed makes generation deterministic per query so development
// sessions see the same offers on every cache miss.
func mockSeed(parts ...string) int64 {
	h := fnv.New64a()
	for _, part := range parts {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return int64(h.Sum64())
}
