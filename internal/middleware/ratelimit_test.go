package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlidingWindowLimit(t *testing.T) {
	limiter := NewSlidingWindow(5, 15*time.Minute)

	for i := 0; i < 5; i++ {
		assert.True(t, limiter.Allow("10.0.0.1"), "request %d should pass", i+1)
	}
	assert.False(t, limiter.Allow("10.0.0.1"), "6th request must be rejected")
	assert.False(t, limiter.Allow("10.0.0.1"))
}

func TestSlidingWindowPerIP(t *testing.T) {
	limiter := NewSlidingWindow(1, 15*time.Minute)

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"))
	// A different address has its own window
	assert.True(t, limiter.Allow("10.0.0.2"))
}

func TestSlidingWindowResetsAfterWindow(t *testing.T) {
	now := time.Now()
	limiter := NewSlidingWindow(2, 15*time.Minute)
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"))

	// 14 minutes in: still inside the window
	now = now.Add(14 * time.Minute)
	assert.False(t, limiter.Allow("10.0.0.1"))

	// Past 15 minutes: window resets to count=1
	now = now.Add(2 * time.Minute)
	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"))
}

func TestSlidingWindowConcurrentAccess(t *testing.T) {
	limiter := NewSlidingWindow(50, time.Minute)

	var wg sync.WaitGroup
	allowed := make([]bool, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			allowed[i] = limiter.Allow("10.0.0.1")
		}(i)
	}
	wg.Wait()

	count := 0
	for _, ok := range allowed {
		if ok {
			count++
		}
	}
	assert.Equal(t, 50, count)
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewSlidingWindow(5, 15*time.Minute)
	handler := RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/embed/vote/abc", nil)
		req.RemoteAddr = "10.0.0.1:51234"
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/embed/vote/abc", nil)
	req.RemoteAddr = "10.0.0.1:51234"
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"Too many requests, try again later"}`, rec.Body.String())
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:9999"
	assert.Equal(t, "192.0.2.7", ClientIP(req))

	req.RemoteAddr = "192.0.2.7"
	assert.Equal(t, "192.0.2.7", ClientIP(req))
}
