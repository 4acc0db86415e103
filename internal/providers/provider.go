// Package providers contains one adapter per upstream data source.
// Adapters translate a normalized search request into upstream calls
// and parse upstream payloads into normalized offers; upstream
// failures never cross an adapter boundary unwrapped.
package providers

import (
	"context"
	"net/http"
	"time"

	"github.com/dharmasatrya/travelsearch/internal/models"
)

// FlightProvider is the capability every flight upstream adapter
// implements. Enabled reports credential availability; disabled
// adapters are never dispatched and never appear in the response's
// provider list.
type FlightProvider interface {
	Name() string
	Enabled() bool
	Search(ctx context.Context, req models.FlightSearchRequest) ([]models.Flight, error)
}

type HotelProvider interface {
	Name() string
	Enabled() bool
	Search(ctx context.Context, req models.HotelSearchRequest) ([]models.Hotel, error)
}

type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProviderError(provider string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Err:      err,
	}
}

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
