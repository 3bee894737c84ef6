package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// maxTrackedClients bounds the limiter table. The least recently seen
// client is evicted first, which resets its budget.
const maxTrackedClients = 10000

// RateLimiter is a per-client token bucket. Clients are keyed by
// authenticated user id when present, otherwise by IP.
type RateLimiter struct {
	clients  *lru.Cache[string, *rate.Limiter]
	limit    rate.Limit
	requests int
	window   time.Duration
	mu       sync.Mutex
}

// NewRateLimiter allows requests per window with bursts up to requests
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	cache, err := lru.New[string, *rate.Limiter](maxTrackedClients)
	if err != nil {
		panic(err)
	}
	return &RateLimiter{
		clients:  cache,
		limit:    rate.Every(window / time.Duration(requests)),
		requests: requests,
		window:   window,
	}
}

// Middleware returns a rate limiting middleware
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientKey(r)) {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.limiterDelay().Seconds())+1))
			writeRateLimitError(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	limiter, ok := rl.clients.Get(key)
	if !ok {
		limiter = rate.NewLimiter(rl.limit, rl.requests)
		rl.clients.Add(key, limiter)
	}
	rl.mu.Unlock()
	return limiter.Allow()
}

// limiterDelay is the time until one token refills
func (rl *RateLimiter) limiterDelay() time.Duration {
	return rl.window / time.Duration(rl.requests)
}

func clientKey(r *http.Request) string {
	if userID := GetUserID(r); userID != "" {
		return "user:" + userID
	}
	return "ip:" + getClientIP(r)
}

// getClientIP returns the host part of RemoteAddr. Forwarding headers are
// ignored here; chi's RealIP rewrites RemoteAddr when proxies are trusted.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeRateLimitError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"RateLimitExceeded","message":"Rate limit exceeded. Please try again later."}`))
}
