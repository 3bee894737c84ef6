package routes

import (
	"net/http"
	"time"

	"github.com/wilber023/poust-microservicio/internal/api/middleware"
)

// Limiter hands out rate limit middleware. Each call to Per gets its own
// budget, so routes that share a limit must share the returned middleware.
type Limiter struct {
	enabled bool
}

// NewLimiter creates a Limiter. A disabled Limiter lets every request through.
func NewLimiter(enabled bool) *Limiter {
	return &Limiter{enabled: enabled}
}

// Per allows requests per window for each client
func (l *Limiter) Per(requests int, window time.Duration) func(http.Handler) http.Handler {
	if l == nil || !l.enabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.NewRateLimiter(requests, window).Middleware
}
