package middleware

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/threadlens/threadlens/internal/ratelimit"
)

// RateLimit returns middleware that admission-controls requests per client
// IP against the given limiter. Denied requests get a 429 with a Retry-After
// header. Run chi's RealIP middleware first so proxied clients are keyed by
// their real address.
func RateLimit(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := limiter.Admit(clientKey(r), time.Now())
			if !decision.Allowed {
				retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				WriteJSON(w, http.StatusTooManyRequests, ErrorResponse{
					Error: fmt.Sprintf("Rate limit exceeded. Try again in %d seconds.", retryAfter),
				})
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey extracts the client address without the ephemeral port, so one
// client maps to one quota regardless of connection churn.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
