// Package ratelimit paces outbound provider calls so a burst of
// searches cannot blow through an upstream API quota.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limit describes one token bucket: a steady refill rate and a burst
// allowance.
type Limit struct {
	RPS   float64
	Burst int
}

// DefaultLimit applies to providers without an explicit override.
var DefaultLimit = Limit{RPS: 10, Burst: 20}

// ProviderLimiter keeps one token bucket per provider. Buckets for
// overridden providers are built up front; everything else gets a
// bucket at the default limit on first use.
type ProviderLimiter struct {
	mu       sync.RWMutex
	buckets  map[string]*rate.Limiter
	defaults Limit
}

// New builds a limiter with the given default limit and optional
// per-provider overrides. A non-positive default falls back to
// DefaultLimit.
func New(defaults Limit, overrides map[string]Limit) *ProviderLimiter {
	if defaults.RPS <= 0 || defaults.Burst <= 0 {
		defaults = DefaultLimit
	}
	p := &ProviderLimiter{
		buckets:  make(map[string]*rate.Limiter, len(overrides)),
		defaults: defaults,
	}
	for provider, l := range overrides {
		if l.RPS <= 0 || l.Burst <= 0 {
			l = defaults
		}
		p.buckets[provider] = rate.NewLimiter(rate.Limit(l.RPS), l.Burst)
	}
	return p
}

// NewDefault builds a limiter with DefaultLimit for every provider.
func NewDefault() *ProviderLimiter {
	return New(DefaultLimit, nil)
}

// GetLimiter returns the provider's bucket, creating one at the
// default limit the first time an unconfigured provider shows up.
func (p *ProviderLimiter) GetLimiter(provider string) *rate.Limiter {
	p.mu.RLock()
	bucket, exists := p.buckets[provider]
	p.mu.RUnlock()

	if exists {
		return bucket
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if bucket, exists = p.buckets[provider]; exists {
		return bucket
	}

	bucket = rate.NewLimiter(rate.Limit(p.defaults.RPS), p.defaults.Burst)
	p.buckets[provider] = bucket
	return bucket
}

// Wait blocks until the provider's bucket has a token or ctx ends.
func (p *ProviderLimiter) Wait(ctx context.Context, provider string) error {
	return p.GetLimiter(provider).Wait(ctx)
}
