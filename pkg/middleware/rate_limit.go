package middleware

import (
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/juliog922/chatlink-v2/internal/http/response"
	"github.com/juliog922/chatlink-v2/pkg/logger"
)

// LoginRateLimit limits login attempts per client IP using Redis if
// available. Without Redis (or on cache errors) requests pass through.
func LoginRateLimit(cache *redis.Client, maxPerMin int) func(http.Handler) http.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cache == nil {
				next.ServeHTTP(w, r)
				return
			}

			key := "rl:login:" + ClientIP(r)
			cnt, err := cache.Incr(r.Context(), key).Result()
			if err == nil && cnt == 1 {
				cache.Expire(r.Context(), key, time.Minute)
			}
			if err != nil {
				// fail open on cache errors
				logger.WarnContext(r.Context(), "rate limit check failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if cnt > int64(maxPerMin) {
				response.RateLimit(w, "too many login attempts, try again later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
