package http

import (
	"sync"
	"sync/atomic"
	"time"
)

// Only mutating requests are rate limited; reads go through the report cache
// and are cheap. The window is sized for a human driving timers and the odd
// CSV import, not for bulk API clients.
const (
	mutationLimit  = 90
	mutationWindow = time.Minute
	visitorTTL     = 10 * time.Minute
	sweepInterval  = 5 * time.Minute
)

// rateLimiter counts mutating requests per client IP over a fixed window.
type rateLimiter struct {
	mu           sync.Mutex
	visitors     map[string]*visitor
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type visitor struct {
	windowStart time.Time
	count       int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		visitors:    make(map[string]*visitor),
		stopCleanup: make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// sweep drops visitors that have been idle past the TTL so the map does not
// grow with every IP ever seen.
func (rl *rateLimiter) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-visitorTTL)
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if v.windowStart.Before(cutoff) {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCleanup:
			return
		}
	}
}

// stop shuts down the sweep goroutine.
func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

// allow records one mutating request from clientIP and reports whether it
// stays inside the window limit.
func (rl *rateLimiter) allow(clientIP string, metrics *securityMetrics) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	v, ok := rl.visitors[clientIP]
	if !ok || now.Sub(v.windowStart) > mutationWindow {
		rl.visitors[clientIP] = &visitor{windowStart: now, count: 1}
		return true
	}

	v.count++
	if v.count > mutationLimit {
		if metrics != nil {
			atomic.AddInt64(&metrics.rateLimitHits, 1)
		}
		return false
	}
	return true
}
