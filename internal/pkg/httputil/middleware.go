package httputil

import (
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimitMiddleware applies a process-wide token bucket to the API. A
// zero rps disables limiting. Schedule storms from a misbehaving consumer
// degrade to 429s instead of flooding the timer service.
func RateLimitMiddleware(rps float64, burst int) func(http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if burst <= 0 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				Error(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
