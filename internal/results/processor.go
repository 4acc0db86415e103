// Package results post-processes merged provider offers: dedupe,
// client-side filters, price sort, and response capping.
package results

import (
	"fmt"
	"sort"

	"github.com/dharmasatrya/travelsearch/internal/models"
)

// MaxResults caps how many offers a single response carries. The
// pre-cap count is still reported so clients can tell a capped page
// from a short one.
const MaxResults = 50

// flightSignature identifies a flight offer across providers. Same
// route, same departure, same price means the same economic offer
// regardless of which upstream reported it.
func flightSignature(f models.Flight) string {
	if len(f.Segments) == 0 {
		return f.ID
	}
	first := f.Segments[0]
	last := f.Segments[len(f.Segments)-1]
	return fmt.Sprintf("%s_%s_%s_%.2f",
		first.Origin.Code,
		last.Destination.Code,
		first.DepartureTime.Format("2006-01-02T15:04:05"),
		f.Price)
}

func hotelSignature(h models.Hotel) string {
	key := h.ID
	if key == "" {
		key = h.Name
	}
	return fmt.Sprintf("%s_%.2f", key, h.PricePerNight)
}

// ProcessFlights dedupes, filters, sorts, and caps the merged flight
// list. First occurrence wins on duplicate signatures, so provider
// ordering decides which copy survives. The returned count is taken
// after filtering but before the cap.
func ProcessFlights(flights []models.Flight, req models.FlightSearchRequest) ([]models.Flight, int) {
	seen := make(map[string]struct{}, len(flights))
	processed := make([]models.Flight, 0, len(flights))

	for _, f := range flights {
		sig := flightSignature(f)
		if _, dup := seen[sig]; dup {
			continue
		}
		seen[sig] = struct{}{}

		if req.MaxPrice != nil && f.Price > *req.MaxPrice {
			continue
		}
		if req.DirectFlightsOnly && !f.IsDirect() {
			continue
		}

		processed = append(processed, f)
	}

	sort.SliceStable(processed, func(i, j int) bool {
		return processed[i].Price < processed[j].Price
	})

	total := len(processed)
	if total > MaxResults {
		processed = processed[:MaxResults]
	}
	return processed, total
}

// ProcessHotels is the hotel counterpart. Offers without a star
// rating are dropped when a min_rating floor is in effect; an unrated
// hotel cannot be shown to satisfy it. A zero min_rating is no floor
// at all, so it filters nothing.
func ProcessHotels(hotels []models.Hotel, req models.HotelSearchRequest) ([]models.Hotel, int) {
	seen := make(map[string]struct{}, len(hotels))
	processed := make([]models.Hotel, 0, len(hotels))

	for _, h := range hotels {
		sig := hotelSignature(h)
		if _, dup := seen[sig]; dup {
			continue
		}
		seen[sig] = struct{}{}

		if req.MaxPrice != nil && h.PricePerNight > *req.MaxPrice {
			continue
		}
		if req.MinRating != nil && *req.MinRating > 0 {
			if h.Rating == nil || *h.Rating < *req.MinRating {
				continue
			}
		}

		processed = append(processed, h)
	}

	sort.SliceStable(processed, func(i, j int) bool {
		return processed[i].PricePerNight < processed[j].PricePerNight
	})

	total := len(processed)
	if total > MaxResults {
		processed = processed[:MaxResults]
	}
	return processed, total
}
