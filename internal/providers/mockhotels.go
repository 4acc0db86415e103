package providers

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/dharmasatrya/travelsearch/internal/models"
)

var mockHotelPrefixes = []string{"Grand", "Royal", "Park", "Central", "Harbor", "Garden", "Plaza", "Crown"}

var mockHotelSuffixes = []string{"Hotel", "Suites", "Inn", "Resort", "Residences"}

var mockRoomNames = []string{"Standard Double", "Deluxe King", "Twin Room", "Junior Suite", "Executive Suite"}

var mockAmenityPool = []string{
	"Free WiFi", "Pool", "Gym", "Spa", "Restaurant", "Bar",
	"Room Service", "Airport Shuttle", "Parking", "Business Center",
}

// MockHotelProvider mirrors MockFlightProvider for the hotel domain:
// deterministic per destination and stay dates, no network.
type MockHotelProvider struct {
	enabled bool
}

func NewMockHotelProvider(enabled bool) *MockHotelProvider {
	return &MockHotelProvider{enabled: enabled}
}

func (p *MockHotelProvider) Name() string {
	return "mock"
}

func (p *MockHotelProvider) Enabled() bool {
	return p.enabled
}

func (p *MockHotelProvider) Search(ctx context.Context, req models.HotelSearchRequest) ([]models.Hotel, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewProviderError(p.Name(), err)
	}

	rng := rand.New(rand.NewSource(mockSeed(req.Destination, req.CheckIn, req.CheckOut)))
	count := 10 + rng.Intn(10)
	nights := req.Nights()
	if nights < 1 {
		nights = 1
	}

	hotels := make([]models.Hotel, 0, count)
	for i := 0; i < count; i++ {
		hotels = append(hotels, p.generate(rng, req, nights, i))
	}
	return hotels, nil
}

func (p *MockHotelProvider) generate(rng *rand.Rand, req models.HotelSearchRequest, nights, index int) models.Hotel {
	name := fmt.Sprintf("%s %s %s",
		mockHotelPrefixes[rng.Intn(len(mockHotelPrefixes))],
		req.Destination,
		mockHotelSuffixes[rng.Intn(len(mockHotelSuffixes))])

	stars := float64(2 + rng.Intn(4))
	pricePerNight := 60 + rng.Float64()*340 + stars*40
	pricePerNight = float64(int(pricePerNight*100)) / 100

	reviewScore := 5.5 + rng.Float64()*4.4
	reviewScore = float64(int(reviewScore*10)) / 10
	reviewCount := 50 + rng.Intn(4000)
	distance := rng.Float64() * 8

	amenityCount := 3 + rng.Intn(5)
	amenities := make([]models.HotelAmenity, 0, amenityCount)
	for _, idx := range rng.Perm(len(mockAmenityPool))[:amenityCount] {
		amenities = append(amenities, models.HotelAmenity{Name: mockAmenityPool[idx]})
	}

	cancellation := "Non-refundable"
	if rng.Float64() > 0.4 {
		cancellation = "Free cancellation"
	}

	return models.Hotel{
		ID:   fmt.Sprintf("mock_hotel_%d_%d", mockSeed(req.Destination)&0xffff, index),
		Name: name,
		Location: models.HotelLocation{
			Address:            fmt.Sprintf("%d Main Street", 1+rng.Intn(400)),
			City:               req.Destination,
			Country:            "US",
			DistanceToCenterKM: &distance,
		},
		Rating:        &stars,
		ReviewScore:   &reviewScore,
		ReviewCount:   &reviewCount,
		PricePerNight: pricePerNight,
		TotalPrice:    pricePerNight * float64(nights),
		Currency:      "USD",
		RoomType: models.RoomType{
			Name:         mockRoomNames[rng.Intn(len(mockRoomNames))],
			MaxOccupancy: 2 + rng.Intn(3),
		},
		Amenities:          amenities,
		DeepLink:           fmt.Sprintf("https://example.com/hotels/%d", index),
		Provider:           p.Name(),
		CancellationPolicy: cancellation,
		BreakfastIncluded:  rng.Float64() > 0.5,
		LastUpdated:        time.Now().UTC(),
	}
}
