package middleware

import (
	"net/http"
	"sync"
	"time"
)

// RateLimiter implements a fixed-window per-client rate limit
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int
	interval time.Duration
}

type visitor struct {
	count       int
	windowStart time.Time
}

// NewRateLimiter allows limit requests per interval per client address
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		interval: interval,
	}

	go rl.cleanup()

	return rl
}

// Limit is the middleware function
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(r.RemoteAddr) {
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(addr string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	v, exists := rl.visitors[addr]
	if !exists || now.Sub(v.windowStart) > rl.interval {
		rl.visitors[addr] = &visitor{count: 1, windowStart: now}
		return true
	}

	v.count++
	return v.count <= rl.limit
}

// cleanup periodically drops visitors whose window has long expired
func (rl *RateLimiter) cleanup() {
	for {
		time.Sleep(rl.interval)

		rl.mu.Lock()
		cutoff := time.Now().Add(-2 * rl.interval)
		for addr, v := range rl.visitors {
			if v.windowStart.Before(cutoff) {
				delete(rl.visitors, addr)
			}
		}
		rl.mu.Unlock()
	}
}
