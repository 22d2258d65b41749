package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/Yobibbb/Lost-and-Found-IOT/internal/handlers/render"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/ratelimit"
)

type limiterLogger interface {
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// RateLimitMiddleware counts requests per client IP and answers 429 with a
// Retry-After hint once the window limit is exceeded.
//
// The client key trusts X-Forwarded-For when present, which is spoofable
// unless a trusted proxy sets it. Acceptable for abuse deterrence only.
func RateLimitMiddleware(limiter ratelimit.Limiter, l limiterLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)

			result, err := limiter.Allow(r.Context(), key)
			if err != nil {
				// The limiter backend being down should not take the API down
				l.Error("rate limiter unavailable, letting request through", "error", err.Error())
				next.ServeHTTP(w, r)
				return
			}

			if !result.Allowed {
				retryAfter := int(result.RetryAfter.Seconds())
				l.Warn("rate limit exceeded", "client", key, "retry_after", retryAfter)

				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				render.ErrorWithDetails(w,
					"Rate limit exceeded. Too many requests, please try again later.",
					http.StatusTooManyRequests,
					map[string]string{"retry_after": strconv.Itoa(retryAfter)},
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		// first address is the originating client
		ip, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(ip)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
