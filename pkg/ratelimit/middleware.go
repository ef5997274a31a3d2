package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/denoland-id/denoid/pkg/httputil"
	"github.com/denoland-id/denoid/pkg/observability"
)

// Middleware limits requests per client IP as resolved by ips. Limiter
// errors are logged and the request is let through.
func Middleware(limiter Limiter, ips *IPResolver, metrics *observability.Metrics) func(http.Handler) http.Handler {
	observe := func(result string) {
		if metrics != nil {
			metrics.ObserveRateLimit(result)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Preflight requests are not counted
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			ip := ips.ClientIP(r)
			decision, err := limiter.Allow(r.Context(), "ip:"+ip)
			if err != nil {
				observe("error")
				observability.FromContext(r.Context()).WithError(err).
					WithField("client_ip", ip).
					Warn("rate limiter unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			setHeaders(w, decision)
			if !decision.Allowed {
				observe("limited")
				retryAfter := max(1, int(time.Until(decision.Reset).Round(time.Second).Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				httputil.WriteJSON(w, http.StatusTooManyRequests, map[string]interface{}{
					"error":       "rate limit exceeded",
					"retry_after": retryAfter,
				})
				return
			}

			observe("allowed")
			next.ServeHTTP(w, r)
		})
	}
}

func setHeaders(w http.ResponseWriter, d Decision) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.Reset.Unix(), 10))
}
