package models

// Degraded-dispatch markers surfaced through the providers list when a
// search cannot consult any upstream.
const (
	ProviderTagNoneConfigured = "no provider configured"
	ProviderTagSearchFailed   = "search failed"
)

// FlightSearchResponse is built once per search invocation. On a cache
// hit only CacheHit and SearchTimeMS are rewritten; every other field
// is reused verbatim from the cached entry.
type FlightSearchResponse struct {
	Flights      []Flight            `json:"flights"`
	SearchID     string              `json:"search_id"`
	TotalResults int                 `json:"total_results"`
	SearchParams FlightSearchRequest `json:"search_params"`
	Providers    []string            `json:"providers"`
	CacheHit     bool                `json:"cache_hit"`
	SearchTimeMS int64               `json:"search_time_ms"`
}

type HotelSearchResponse struct {
	Hotels       []Hotel            `json:"hotels"`
	SearchID     string             `json:"search_id"`
	TotalResults int                `json:"total_results"`
	SearchParams HotelSearchRequest `json:"search_params"`
	Providers    []string           `json:"providers"`
	CacheHit     bool               `json:"cache_hit"`
	SearchTimeMS int64              `json:"search_time_ms"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
