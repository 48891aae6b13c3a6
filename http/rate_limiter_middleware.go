package http

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"

	"loan-amortizer/metrics"
)

// Request costs in limiter tokens.
const (
	defaultRequestCost = 1
	// A batch amortizes many loans concurrently.
	batchRequestCost = 5
)

// RateLimit charges each request cost tokens from the client's bucket and
// rejects it with 429 and a Retry-After header when the bucket is short.
// Clients are keyed by IP; mount middleware.RealIP first when running behind a
// proxy. A nil limiter lets every request through. m may be nil.
func RateLimit(limiter *RateLimiter, m *metrics.Metrics, cost int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			quota := limiter.Take(ip, cost)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.Capacity()))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(quota.Remaining))

			if !quota.Allowed {
				seconds := int(math.Ceil(quota.RetryAfter.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(max(seconds, 1)))
				if m != nil {
					m.RateLimited.Inc()
				}
				slog.Debug("Rate limit exceeded", "client", ip, "cost", cost, "retry_after", quota.RetryAfter)
				respondError(w, http.StatusTooManyRequests, "rate limit exceeded", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
