package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// clientLimiter tracks one token bucket per client key. Kiosks and mobile
// apps retry aggressively after network blips; the limiter turns a burst of
// duplicate submissions into 429s instead of a pile of racing inserts.
type clientLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiter(r rate.Limit, burst int) *clientLimiter {
	cl := &clientLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     r,
		burst:    burst,
	}
	go cl.cleanup()
	return cl
}

func (cl *clientLimiter) get(key string) *rate.Limiter {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	entry, ok := cl.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(cl.rate, cl.burst)}
		cl.limiters[key] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

func (cl *clientLimiter) cleanup() {
	for range time.Tick(5 * time.Minute) {
		cl.mu.Lock()
		for key, entry := range cl.limiters {
			if time.Since(entry.lastSeen) > 10*time.Minute {
				delete(cl.limiters, key)
			}
		}
		cl.mu.Unlock()
	}
}

// RateLimitMiddleware limits each client IP to r requests per second with the
// given burst. Intended for the check-in endpoint.
func RateLimitMiddleware(r rate.Limit, burst int) func(http.Handler) http.Handler {
	cl := newClientLimiter(r, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			host, _, err := net.SplitHostPort(req.RemoteAddr)
			if err != nil {
				host = req.RemoteAddr
			}

			if !cl.get(host).Allow() {
				w.Header().Set("Retry-After", "1")
				http.Error(w, "Too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}
