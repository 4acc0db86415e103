package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// MaxAdvanceDays bounds how far out a search may look, matching the
// booking windows of the upstream providers (~11 months).
const MaxAdvanceDays = 330

const dateLayout = "2006-01-02"

var validate = validator.New()

// ValidationError is the only error category that crosses the search
// service boundary; everything else degrades to fewer results.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

type FlightSearchRequest struct {
	Origin            string     `json:"origin" query:"origin" validate:"required,len=3,alpha"`
	Destination       string     `json:"destination" query:"destination" validate:"required,len=3,alpha"`
	DepartureDate     string     `json:"departure_date" query:"departure_date" validate:"required"`
	ReturnDate        string     `json:"return_date,omitempty" query:"return_date"`
	Adults            int        `json:"adults" query:"adults" validate:"min=1,max=9"`
	Children          int        `json:"children" query:"children" validate:"min=0,max=9"`
	Infants           int        `json:"infants" query:"infants" validate:"min=0,max=9"`
	CabinClass        CabinClass `json:"cabin_class" query:"cabin_class"`
	MaxPrice          *float64   `json:"max_price,omitempty" query:"max_price"`
	DirectFlightsOnly bool       `json:"direct_flights_only" query:"direct_flights_only"`
}

// Normalize fills defaults and uppercases airport codes. It must run
// before the request is used as a cache key or handed to adapters.
func (r *FlightSearchRequest) Normalize() {
	r.Origin = strings.ToUpper(strings.TrimSpace(r.Origin))
	r.Destination = strings.ToUpper(strings.TrimSpace(r.Destination))
	if r.Adults == 0 {
		r.Adults = 1
	}
	if r.CabinClass == "" {
		r.CabinClass = CabinEconomy
	}
}

func (r *FlightSearchRequest) Validate() error {
	r.Normalize()

	if err := validate.Struct(r); err != nil {
		return newValidationError("invalid flight search request: %v", err)
	}
	if !r.CabinClass.Valid() {
		return newValidationError("invalid cabin_class %q", r.CabinClass)
	}
	if r.MaxPrice != nil && *r.MaxPrice <= 0 {
		return newValidationError("max_price must be positive")
	}

	dep, err := time.Parse(dateLayout, r.DepartureDate)
	if err != nil {
		return newValidationError("invalid departure_date %q, expected YYYY-MM-DD", r.DepartureDate)
	}
	today := startOfToday()
	if dep.Before(today) {
		return newValidationError("departure_date cannot be in the past")
	}
	if dep.After(today.AddDate(0, 0, MaxAdvanceDays)) {
		return newValidationError("departure_date cannot be more than %d days in advance", MaxAdvanceDays)
	}

	if r.ReturnDate != "" {
		ret, err := time.Parse(dateLayout, r.ReturnDate)
		if err != nil {
			return newValidationError("invalid return_date %q, expected YYYY-MM-DD", r.ReturnDate)
		}
		if !ret.After(dep) {
			return newValidationError("return_date must be after departure_date")
		}
		if ret.After(today.AddDate(0, 0, MaxAdvanceDays)) {
			return newValidationError("return_date cannot be more than %d days in advance", MaxAdvanceDays)
		}
	}

	return nil
}

type HotelSearchRequest struct {
	Destination string   `json:"destination" query:"destination" validate:"required,min=2"`
	Latitude    *float64 `json:"latitude,omitempty" query:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude   *float64 `json:"longitude,omitempty" query:"longitude" validate:"omitempty,min=-180,max=180"`
	CheckIn     string   `json:"check_in" query:"check_in" validate:"required"`
	CheckOut    string   `json:"check_out" query:"check_out" validate:"required"`
	Adults      int      `json:"adults" query:"adults" validate:"min=1,max=30"`
	Children    int      `json:"children" query:"children" validate:"min=0,max=30"`
	Rooms       int      `json:"rooms" query:"rooms" validate:"min=1,max=30"`
	MaxPrice    *float64 `json:"max_price,omitempty" query:"max_price"`
	MinRating   *float64 `json:"min_rating,omitempty" query:"min_rating" validate:"omitempty,min=0,max=5"`
}

func (r *HotelSearchRequest) Normalize() {
	r.Destination = strings.Join(strings.Fields(r.Destination), " ")
	if r.Adults == 0 {
		r.Adults = 1
	}
	if r.Rooms == 0 {
		r.Rooms = 1
	}
}

func (r *HotelSearchRequest) Validate() error {
	r.Normalize()

	if err := validate.Struct(r); err != nil {
		return newValidationError("invalid hotel search request: %v", err)
	}
	if r.MaxPrice != nil && *r.MaxPrice <= 0 {
		return newValidationError("max_price must be positive")
	}

	checkIn, err := time.Parse(dateLayout, r.CheckIn)
	if err != nil {
		return newValidationError("invalid check_in %q, expected YYYY-MM-DD", r.CheckIn)
	}
	checkOut, err := time.Parse(dateLayout, r.CheckOut)
	if err != nil {
		return newValidationError("invalid check_out %q, expected YYYY-MM-DD", r.CheckOut)
	}
	if checkIn.Before(startOfToday()) {
		return newValidationError("check_in cannot be in the past")
	}
	if !checkOut.After(checkIn) {
		return newValidationError("check_out must be after check_in")
	}

	return nil
}

// Nights returns the stay length. Requests are validated before use,
// so a non-positive result only occurs on an unvalidated request.
func (r *HotelSearchRequest) Nights() int {
	checkIn, err1 := time.Parse(dateLayout, r.CheckIn)
	checkOut, err2 := time.Parse(dateLayout, r.CheckOut)
	if err1 != nil || err2 != nil {
		return 0
	}
	return int(checkOut.Sub(checkIn).Hours() / 24)
}

func startOfToday() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
