package models_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dharmasatrya/travelsearch/internal/models"
)

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}

func validFlightRequest() models.FlightSearchRequest {
	return models.FlightSearchRequest{
		Origin:        "JFK",
		Destination:   "LAX",
		DepartureDate: futureDate(10),
		Adults:        1,
	}
}

func TestFlightRequest_ValidPasses(t *testing.T) {
	req := validFlightRequest()
	if err := req.Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
	if req.CabinClass != models.CabinEconomy {
		t.Errorf("expected cabin_class default economy, got %s", req.CabinClass)
	}
}

func TestFlightRequest_NormalizeUppercasesCodes(t *testing.T) {
	req := validFlightRequest()
	req.Origin = " jfk "
	req.Destination = "lax"
	if err := req.Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
	if req.Origin != "JFK" || req.Destination != "LAX" {
		t.Errorf("codes not normalized: %s %s", req.Origin, req.Destination)
	}
}

func TestFlightRequest_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*models.FlightSearchRequest)
	}{
		{"bad origin length", func(r *models.FlightSearchRequest) { r.Origin = "NEWYORK" }},
		{"numeric origin", func(r *models.FlightSearchRequest) { r.Origin = "J1K" }},
		{"missing destination", func(r *models.FlightSearchRequest) { r.Destination = "" }},
		{"bad date format", func(r *models.FlightSearchRequest) { r.DepartureDate = "10/01/2026" }},
		{"past departure", func(r *models.FlightSearchRequest) { r.DepartureDate = futureDate(-1) }},
		{"too far out", func(r *models.FlightSearchRequest) { r.DepartureDate = futureDate(models.MaxAdvanceDays + 1) }},
		{"return equals departure", func(r *models.FlightSearchRequest) { r.ReturnDate = r.DepartureDate }},
		{"return before departure", func(r *models.FlightSearchRequest) { r.ReturnDate = futureDate(5) }},
		{"too many adults", func(r *models.FlightSearchRequest) { r.Adults = 10 }},
		{"negative children", func(r *models.FlightSearchRequest) { r.Children = -1 }},
		{"bad cabin class", func(r *models.FlightSearchRequest) { r.CabinClass = "luxury" }},
		{"zero max price", func(r *models.FlightSearchRequest) { p := 0.0; r.MaxPrice = &p }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validFlightRequest()
			tc.mutate(&req)

			err := req.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			var verr *models.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
		})
	}
}

func validHotelRequest() models.HotelSearchRequest {
	return models.HotelSearchRequest{
		Destination: "Paris",
		CheckIn:     futureDate(10),
		CheckOut:    futureDate(12),
		Adults:      2,
		Rooms:       1,
	}
}

func TestHotelRequest_ValidPasses(t *testing.T) {
	req := validHotelRequest()
	if err := req.Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
}

func TestHotelRequest_NormalizeCollapsesWhitespace(t *testing.T) {
	req := validHotelRequest()
	req.Destination = "  New   York  "
	if err := req.Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
	if req.Destination != "New York" {
		t.Errorf("destination not normalized: %q", req.Destination)
	}
}

func TestHotelRequest_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*models.HotelSearchRequest)
	}{
		{"missing destination", func(r *models.HotelSearchRequest) { r.Destination = "" }},
		{"checkout equals checkin", func(r *models.HotelSearchRequest) { r.CheckOut = r.CheckIn }},
		{"checkout before checkin", func(r *models.HotelSearchRequest) { r.CheckOut = futureDate(8) }},
		{"past checkin", func(r *models.HotelSearchRequest) { r.CheckIn = futureDate(-2) }},
		{"latitude out of range", func(r *models.HotelSearchRequest) { lat := 91.0; r.Latitude = &lat }},
		{"rating above five", func(r *models.HotelSearchRequest) { rating := 5.5; r.MinRating = &rating }},
		{"too many adults", func(r *models.HotelSearchRequest) { r.Adults = 31 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validHotelRequest()
			tc.mutate(&req)

			var verr *models.ValidationError
			if err := req.Validate(); !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
		})
	}
}

func TestHotelRequest_Nights(t *testing.T) {
	req := models.HotelSearchRequest{CheckIn: "2026-10-01", CheckOut: "2026-10-04"}
	if n := req.Nights(); n != 3 {
		t.Errorf("expected 3 nights, got %d", n)
	}
}
