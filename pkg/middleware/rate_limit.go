package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"stayhub/pkg/logger"
)

// ClientRateLimiter enforces a fixed-window request budget per client IP.
type ClientRateLimiter struct {
	limit    int
	window   time.Duration
	log      *logger.Logger
	mu       sync.Mutex
	counters map[string]*windowCounter
	stop     chan struct{}
	stopOnce sync.Once
}

type windowCounter struct {
	count       int
	windowStart time.Time
}

func NewClientRateLimiter(limit int, window time.Duration, log *logger.Logger) *ClientRateLimiter {
	rl := &ClientRateLimiter{
		limit:    limit,
		window:   window,
		log:      log,
		counters: make(map[string]*windowCounter),
		stop:     make(chan struct{}),
	}

	go rl.cleanupLoop()
	return rl
}

func (rl *ClientRateLimiter) Allow(clientIP string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	counter, ok := rl.counters[clientIP]
	if !ok || now.Sub(counter.windowStart) >= rl.window {
		rl.counters[clientIP] = &windowCounter{count: 1, windowStart: now}
		return true
	}

	if counter.count >= rl.limit {
		return false
	}
	counter.count++
	return true
}

func (rl *ClientRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for ip, counter := range rl.counters {
				if now.Sub(counter.windowStart) >= rl.window {
					delete(rl.counters, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *ClientRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func RateLimit(rl *ClientRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := extractClientIP(r)

			if !rl.Allow(clientIP) {
				rl.log.Warn("Rate limit exceeded",
					"request_id", RequestID(r.Context()),
					"client_ip", clientIP,
					"path", r.URL.Path,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"success":false,"message":"Too many requests"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func extractClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
