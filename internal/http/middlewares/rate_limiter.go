package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

type bucket struct {
	count int
	start time.Time
}

type rateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	buckets map[string]*bucket
	now     func() time.Time
}

// RateLimiter allows at most limit requests per client IP in each window.
func RateLimiter(limit int, window time.Duration) echo.MiddlewareFunc {
	return newRateLimiter(limit, window, time.Now).middleware
}

func newRateLimiter(limit int, window time.Duration, now func() time.Time) *rateLimiter {
	return &rateLimiter{
		limit:   limit,
		window:  window,
		buckets: make(map[string]*bucket),
		now:     now,
	}
}

func (l *rateLimiter) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		remaining, retryAfter, ok := l.take(c.RealIP())

		h := c.Response().Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !ok {
			h.Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
		}

		return next(c)
	}
}

func (l *rateLimiter) take(key string) (int, time.Duration, bool) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok || now.Sub(b.start) >= l.window {
		l.evictExpired(now)
		b = &bucket{start: now}
		l.buckets[key] = b
	}

	if b.count >= l.limit {
		return 0, b.start.Add(l.window).Sub(now), false
	}

	b.count++
	return l.limit - b.count, 0, true
}

// evictExpired drops buckets whose window has passed. Called with mu held.
func (l *rateLimiter) evictExpired(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.start) >= l.window {
			delete(l.buckets, key)
		}
	}
}
