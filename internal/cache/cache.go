// Package cache stores whole serialized search responses keyed by a
// deterministic fingerprint of the normalized search query.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/dharmasatrya/travelsearch/internal/models"
)

const (
	flightPrefix = "flights"
	hotelPrefix  = "hotels"

	DefaultFlightTTL = 5 * time.Minute
	DefaultHotelTTL  = 10 * time.Minute
)

// flightKeyData fixes the field set and order that participate in the
// flight fingerprint. Requests must be normalized before keying so
// logically equal queries hash identically. Optional fields stay
// pointers so an absent value and an explicit zero fingerprint
// differently.
type flightKeyData struct {
	Origin            string            `json:"origin"`
	Destination       string            `json:"destination"`
	DepartureDate     string            `json:"departure_date"`
	ReturnDate        string            `json:"return_date"`
	Adults            int               `json:"adults"`
	Children          int               `json:"children"`
	Infants           int               `json:"infants"`
	CabinClass        models.CabinClass `json:"cabin_class"`
	MaxPrice          *float64          `json:"max_price"`
	DirectFlightsOnly bool              `json:"direct_flights_only"`
}

type hotelKeyData struct {
	Destination string   `json:"destination"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	CheckIn     string   `json:"check_in"`
	CheckOut    string   `json:"check_out"`
	Adults      int      `json:"adults"`
	Children    int      `json:"children"`
	Rooms       int      `json:"rooms"`
	MaxPrice    *float64 `json:"max_price"`
	MinRating   *float64 `json:"min_rating"`
}

// FlightKey derives the cache key for a normalized flight search.
// Collision resistance is not a security property here; xxhash over
// the canonical JSON is plenty at this scale.
func FlightKey(req models.FlightSearchRequest) string {
	kd := flightKeyData{
		Origin:            req.Origin,
		Destination:       req.Destination,
		DepartureDate:     req.DepartureDate,
		ReturnDate:        req.ReturnDate,
		Adults:            req.Adults,
		Children:          req.Children,
		Infants:           req.Infants,
		CabinClass:        req.CabinClass,
		MaxPrice:          req.MaxPrice,
		DirectFlightsOnly: req.DirectFlightsOnly,
	}
	return hashKey(flightPrefix, kd)
}

func HotelKey(req models.HotelSearchRequest) string {
	kd := hotelKeyData{
		Destination: req.Destination,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		CheckIn:     req.CheckIn,
		CheckOut:    req.CheckOut,
		Adults:      req.Adults,
		Children:    req.Children,
		Rooms:       req.Rooms,
		MaxPrice:    req.MaxPrice,
		MinRating:   req.MinRating,
	}
	return hashKey(hotelPrefix, kd)
}

func hashKey(prefix string, keyData any) string {
	data, _ := json.Marshal(keyData)
	return fmt.Sprintf("%s:%016x", prefix, xxhash.Sum64(data))
}

// FlightCache stores whole FlightSearchResponse values. Writes are
// full replacements; there are no partial-entry updates.
type FlightCache struct {
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

func NewFlightCache(store Store, ttl time.Duration, logger *slog.Logger) *FlightCache {
	if ttl <= 0 {
		ttl = DefaultFlightTTL
	}
	return &FlightCache{store: store, ttl: ttl, logger: logger}
}

// Get returns the cached response for the request, or (nil, false) on
// miss, store failure, or corrupt payload. Corrupt entries are evicted
// eagerly so they cannot poison later lookups.
func (c *FlightCache) Get(ctx context.Context, req models.FlightSearchRequest) (*models.FlightSearchResponse, bool) {
	key := FlightKey(req)

	data, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("flight cache get failed", "key", key, "error", err)
		return nil, false
	}
	if data == nil {
		return nil, false
	}

	var resp models.FlightSearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		c.logger.Error("corrupt flight cache entry, deleting", "key", key, "error", err)
		if delErr := c.store.Del(ctx, key); delErr != nil {
			c.logger.Warn("failed to delete corrupt entry", "key", key, "error", delErr)
		}
		return nil, false
	}

	return &resp, true
}

// Set writes the response under the request's key. Failures are
// returned for the caller to log; a failed write never fails a search.
func (c *FlightCache) Set(ctx context.Context, req models.FlightSearchRequest, resp *models.FlightSearchResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, FlightKey(req), data, c.ttl)
}

type HotelCache struct {
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

func NewHotelCache(store Store, ttl time.Duration, logger *slog.Logger) *HotelCache {
	if ttl <= 0 {
		ttl = DefaultHotelTTL
	}
	return &HotelCache{store: store, ttl: ttl, logger: logger}
}

func (c *HotelCache) Get(ctx context.Context, req models.HotelSearchRequest) (*models.HotelSearchResponse, bool) {
	key := HotelKey(req)

	data, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("hotel cache get failed", "key", key, "error", err)
		return nil, false
	}
	if data == nil {
		return nil, false
	}

	var resp models.HotelSearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		c.logger.Error("corrupt hotel cache entry, deleting", "key", key, "error", err)
		if delErr := c.store.Del(ctx, key); delErr != nil {
			c.logger.Warn("failed to delete corrupt entry", "key", key, "error", delErr)
		}
		return nil, false
	}

	return &resp, true
}

func (c *HotelCache) Set(ctx context.Context, req models.HotelSearchRequest, resp *models.HotelSearchResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, HotelKey(req), data, c.ttl)
}
