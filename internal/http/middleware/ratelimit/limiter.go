package ratelimit

import (
	"time"

	"service-booking/internal/config"
)

// maxClients bounds the number of tracked clients.
const maxClients = 10000

// Limiter decides whether the client identified by key may proceed. A refusal
// carries the time after which a retry can succeed.
type Limiter interface {
	Allow(key string) (bool, time.Duration)
}

// Clock provides current time.
type Clock interface {
	Now() time.Time
}

// RealClock is the default clock.
type RealClock struct{}

// Now returns current time.
func (RealClock) Now() time.Time { return time.Now() }

// NopLimiter allows everything.
type NopLimiter struct{}

// Allow always allows.
func (NopLimiter) Allow(string) (bool, time.Duration) { return true, 0 }

// FromConfig builds the auth endpoint limiter. A disabled limit yields NopLimiter.
func FromConfig(cfg config.RateLimit, clock Clock) Limiter {
	if !cfg.Enabled {
		return NopLimiter{}
	}
	return NewTokenBucketLimiter(clock, Config{
		Rate:       cfg.RPS,
		Burst:      cfg.Burst,
		TTL:        cfg.TTL,
		MaxBuckets: maxClients,
	})
}
