package models

import "time"

type CabinClass string

const (
	CabinEconomy        CabinClass = "economy"
	CabinPremiumEconomy CabinClass = "premium_economy"
	CabinBusiness       CabinClass = "business"
	CabinFirst          CabinClass = "first"
)

func (c CabinClass) Valid() bool {
	switch c {
	case CabinEconomy, CabinPremiumEconomy, CabinBusiness, CabinFirst:
		return true
	}
	return false
}

type Airport struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	City    string `json:"city"`
	Country string `json:"country"`
}

type Airline struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	LogoURL string `json:"logo_url,omitempty"`
}

type Segment struct {
	Origin          Airport    `json:"origin"`
	Destination     Airport    `json:"destination"`
	DepartureTime   time.Time  `json:"departure_time"`
	ArrivalTime     time.Time  `json:"arrival_time"`
	DurationMinutes int        `json:"duration_minutes"`
	FlightNumber    string     `json:"flight_number"`
	Airline         Airline    `json:"airline"`
	AircraftType    string     `json:"aircraft_type,omitempty"`
	CabinClass      CabinClass `json:"cabin_class"`
	BookingClass    string     `json:"booking_class"`
}

// Flight is a normalized offer produced by a provider adapter. Once
// returned from an adapter it is owned by the result processor and the
// cache; adapters must not retain references.
type Flight struct {
	ID                   string    `json:"id"`
	Segments             []Segment `json:"segments"`
	TotalDurationMinutes int       `json:"total_duration_minutes"`
	Stops                int       `json:"stops"`
	Price                float64   `json:"price"`
	Currency             string    `json:"currency"`
	DeepLink             string    `json:"deep_link"`
	Provider             string    `json:"provider"`
	LastUpdated          time.Time `json:"last_updated"`
}

func (f Flight) IsDirect() bool {
	return f.Stops == 0
}
