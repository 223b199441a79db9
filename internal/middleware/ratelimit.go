package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// SlidingWindow is an in-memory per-IP request limiter. The first request
// from an IP opens a window; requests inside an active window count
// against the limit; a request after the window has aged out resets it to
// count=1. State is process-local and lost on restart — this is an
// advisory throttle, not a security boundary. Entries for stale IPs are
// never evicted.
type SlidingWindow struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	entries map[string]*windowEntry
}

type windowEntry struct {
	start time.Time
	count int
}

// NewSlidingWindow creates a limiter allowing limit requests per window
func NewSlidingWindow(limit int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		limit:   limit,
		window:  window,
		now:     time.Now,
		entries: make(map[string]*windowEntry),
	}
}

// Allow reports whether a request from clientIP is within the limit
func (l *SlidingWindow) Allow(clientIP string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.entries[clientIP]
	if !ok || now.Sub(entry.start) >= l.window {
		l.entries[clientIP] = &windowEntry{start: now, count: 1}
		return true
	}
	if entry.count >= l.limit {
		return false
	}
	entry.count++
	return true
}

// RateLimit rejects requests over the per-IP limit with 429
func RateLimit(limiter *SlidingWindow) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(ClientIP(r)) {
				respondError(w, "Too many requests, try again later", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the request's client address without the port. The
// RealIP middleware has already folded X-Forwarded-For into RemoteAddr.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
