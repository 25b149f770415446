package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/fihircio/raikan-service/internal/ratelimit"
	"github.com/fihircio/raikan-service/internal/utils/response"
)

// RateLimiter wraps upload endpoints with a per-client token bucket. The
// window is keyed on requester IP plus user ID so one user on one address
// cannot starve the rest.
type RateLimiter struct {
	bucket *ratelimit.TokenBucket
}

func NewRateLimiter(bucket *ratelimit.TokenBucket) *RateLimiter {
	return &RateLimiter{bucket: bucket}
}

func (rl *RateLimiter) Middleware(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := GetUserIDFromContext(r.Context())
			if !ok {
				response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(
					errors.New("user not authenticated")))
				return
			}

			subject := fmt.Sprintf("%s:%s", ClientIP(r), userID)

			allowed, err := rl.bucket.Allow(r.Context(), subject, action)
			if err != nil {
				response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(
					fmt.Errorf("rate limit check failed: %w", err)))
				return
			}

			remaining, _ := rl.bucket.GetRemaining(r.Context(), subject, action)
			resetSeconds := int(rl.bucket.Window().Seconds())

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(rl.bucket.Capacity(), 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.Itoa(resetSeconds))

			if !allowed {
				response.WriteJSON(w, http.StatusTooManyRequests, response.RateLimited(resetSeconds))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
