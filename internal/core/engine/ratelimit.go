package engine

import (
	"context"
	"time"
)

// rateKeyPrefix namespaces rate counters in the shared store.
const rateKeyPrefix = "rate-limit:"

// RateCounterStore is the atomic create-or-increment primitive the limiter
// needs from the shared store.
type RateCounterStore interface {
	// IncrWindow increments the counter under key, creating it with the
	// window expiry if absent, and returns the new count and the window's
	// remaining lifetime.
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// RateLimiter enforces a fixed-window request quota per credential. Limit
// and Window are service-wide, not per-credential. All state lives in the
// store; the limiter itself is stateless and safe for concurrent use.
type RateLimiter struct {
	Store  RateCounterStore
	Limit  int
	Window time.Duration
}

// Allow admits or rejects one request for credential. A rejection carries
// the duration after which the caller may retry, never exceeding the window
// length.
func (r *RateLimiter) Allow(ctx context.Context, credential string) (bool, time.Duration, error) {
	count, ttl, err := r.Store.IncrWindow(ctx, rateKeyPrefix+credential, r.Window)
	if err != nil {
		return false, 0, err
	}

	if count > int64(r.Limit) {
		if ttl <= 0 || ttl > r.Window {
			ttl = r.Window
		}
		return false, ttl, nil
	}

	return true, 0, nil
}
