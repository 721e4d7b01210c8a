package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// EndpointLimiter hands out one token bucket per gateway endpoint so a burst
// of searches cannot starve reservations.
type EndpointLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	defaults Config
}

type Config struct {
	RequestsPerSecond float64
	BurstSize         int
}

func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 5,
		BurstSize:         10,
	}
}

// New returns a limiter using cfg for every endpoint. A non-positive rate
// disables limiting.
func New(cfg Config) *EndpointLimiter {
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = 1
	}
	return &EndpointLimiter{
		limiters: make(map[string]*rate.Limiter),
		defaults: cfg,
	}
}

func (l *EndpointLimiter) limiter(endpoint string) *rate.Limiter {
	l.mu.RLock()
	lim, ok := l.limiters[endpoint]
	l.mu.RUnlock()
	if ok {
		return lim
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if lim, ok = l.limiters[endpoint]; ok {
		return lim
	}

	limit := rate.Limit(l.defaults.RequestsPerSecond)
	if l.defaults.RequestsPerSecond <= 0 {
		limit = rate.Inf
	}
	lim = rate.NewLimiter(limit, l.defaults.BurstSize)
	l.limiters[endpoint] = lim
	return lim
}

// SetLimit overrides the bucket for a single endpoint.
func (l *EndpointLimiter) SetLimit(endpoint string, rps float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.limiters[endpoint] = rate.NewLimiter(rate.Limit(rps), burst)
}

// Wait blocks until endpoint may be called or ctx is done.
func (l *EndpointLimiter) Wait(ctx context.Context, endpoint string) error {
	if l == nil {
		return nil
	}
	return l.limiter(endpoint).Wait(ctx)
}
