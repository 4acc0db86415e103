package models

import "time"

type HotelLocation struct {
	Address            string   `json:"address"`
	City               string   `json:"city"`
	Country            string   `json:"country"`
	PostalCode         string   `json:"postal_code,omitempty"`
	Latitude           *float64 `json:"latitude,omitempty"`
	Longitude          *float64 `json:"longitude,omitempty"`
	DistanceToCenterKM *float64 `json:"distance_to_center_km,omitempty"`
}

type RoomType struct {
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	MaxOccupancy int      `json:"max_occupancy"`
	Amenities    []string `json:"amenities,omitempty"`
}

type HotelAmenity struct {
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

type HotelImage struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Caption      string `json:"caption,omitempty"`
}

// Hotel is a normalized offer produced by a hotel provider adapter.
// Rating is a 0-5 star rating and stays nil when the upstream does not
// report one; the min_rating filter drops nil-rated offers.
type Hotel struct {
	ID                 string         `json:"id"`
	Name               string         `json:"name"`
	Location           HotelLocation  `json:"location"`
	Rating             *float64       `json:"rating,omitempty"`
	ReviewScore        *float64       `json:"review_score,omitempty"`
	ReviewCount        *int           `json:"review_count,omitempty"`
	PricePerNight      float64        `json:"price_per_night"`
	TotalPrice         float64        `json:"total_price"`
	Currency           string         `json:"currency"`
	RoomType           RoomType       `json:"room_type"`
	Amenities          []HotelAmenity `json:"amenities,omitempty"`
	Images             []HotelImage   `json:"images,omitempty"`
	DeepLink           string         `json:"deep_link"`
	Provider           string         `json:"provider"`
	CancellationPolicy string         `json:"cancellation_policy,omitempty"`
	BreakfastIncluded  bool           `json:"breakfast_included"`
	LastUpdated        time.Time      `json:"last_updated"`
}
