package middleware

import (
	"fmt"
	"math"
	"net/http"

	"github.com/fulmenhq/gofulmen/errors"
	"github.com/webinsights/webinsights/internal/core/engine"
	"github.com/webinsights/webinsights/internal/metrics"
	"github.com/webinsights/webinsights/internal/observability"
	"go.uber.org/zap"
)

// RateLimit enforces the per-credential request budget. It must run after
// BearerAuth so the credential is available in the request context; requests
// without one fall back to the remote address.
func RateLimit(limiter *engine.RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			credential := GetCredential(r.Context())
			if credential == "" {
				credential = r.RemoteAddr
			}

			allowed, wait, err := limiter.Allow(r.Context(), credential)
			if err != nil {
				if observability.ServerLogger != nil {
					observability.ServerLogger.Error("Rate limit check failed",
						zap.Error(err),
						zap.String("requestID", GetRequestID(r.Context())),
					)
				}
				envelope := errors.NewErrorEnvelope("STORE_ERROR", "Rate limit check failed").
					WithCorrelationID(GetRequestID(r.Context()))
				writeErrorResponse(w, envelope, http.StatusInternalServerError)
				return
			}

			if !allowed {
				retryAfter := int(math.Ceil(wait.Seconds()))
				if retryAfter < 1 {
					retryAfter = 1
				}

				metrics.RecordRateLimitRejection(getEndpointPattern(r))

				envelope := errors.NewErrorEnvelope("RATE_LIMITED", "Rate limit exceeded. Try again later.").
					WithCorrelationID(GetRequestID(r.Context()))
				envelope, _ = envelope.WithContext(map[string]interface{}{
					"retry_after_seconds": retryAfter,
				})

				w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
				writeErrorResponse(w, envelope, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
