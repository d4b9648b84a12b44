package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/barberops/booking-platform/pkg/logging"
)

const (
	limiterSweepEvery = 5 * time.Minute
	limiterIdleAfter  = 10 * time.Minute
)

// RateLimiter applies a per-client token bucket so one aggressive caller
// cannot monopolize the booking endpoints.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*tokenBucket
	perSec  float64
	burst   int
	logger  *logging.Logger
}

type tokenBucket struct {
	tokens float64
	seenAt time.Time
}

// NewRateLimiter creates a limiter allowing perSec requests per second with
// the given burst per client IP.
func NewRateLimiter(perSec float64, burst int, logger *logging.Logger) *RateLimiter {
	if logger == nil {
		logger = logging.Default()
	}
	rl := &RateLimiter{
		clients: make(map[string]*tokenBucket),
		perSec:  perSec,
		burst:   burst,
		logger:  logger,
	}
	go rl.sweep()
	return rl
}

// Allow reports whether a request from ip fits in its bucket and, if so,
// consumes one token.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.clients[ip]
	if !ok {
		b = &tokenBucket{tokens: float64(rl.burst), seenAt: now}
		rl.clients[ip] = b
	}

	b.tokens += now.Sub(b.seenAt).Seconds() * rl.perSec
	if b.tokens > float64(rl.burst) {
		b.tokens = float64(rl.burst)
	}
	b.seenAt = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// sweep drops buckets for clients that have gone quiet so the map does not
// grow without bound.
func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(limiterSweepEvery)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-limiterIdleAfter)
		rl.mu.Lock()
		for ip, b := range rl.clients {
			if b.seenAt.Before(cutoff) {
				delete(rl.clients, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// RateLimit rejects requests beyond the configured rate with 429 and a
// Retry-After hint. Throttled requests are logged at warn level.
func RateLimit(perSec float64, burst int, logger *logging.Logger) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(perSec, burst, logger)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			// Prefer X-Real-Ip set by chi's RealIP middleware.
			if xri := r.Header.Get("X-Real-Ip"); xri != "" {
				ip = xri
			}
			if !limiter.Allow(ip) {
				limiter.logger.Warn("request throttled", "ip", ip, "path", r.URL.Path)
				w.Header().Set("Retry-After", "1")
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
