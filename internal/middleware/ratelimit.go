package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"healthroute/internal/errs"
)

// bucket tracks one client's remaining request allowance.
type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// Limiter is a per-key token bucket: each key may burst up to limit
// requests, and its allowance refills continuously at limit per window,
// so a client that pauses regains allowance gradually instead of all at
// once at a window edge. A key that starts with a full bucket can be
// admitted up to about twice limit within its first window.
type Limiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	capacity   float64
	refillRate float64 // tokens per second
}

func NewLimiter(limit int, window time.Duration) *Limiter {
	return &Limiter{
		buckets:    make(map[string]*bucket),
		capacity:   float64(limit),
		refillRate: float64(limit) / window.Seconds(),
	}
}

// Allow reports whether a request keyed by key should be admitted, and
// consumes one token if so.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.capacity, lastSeen: now}
		l.buckets[key] = b
	}

	b.tokens += now.Sub(b.lastSeen).Seconds() * l.refillRate
	if b.tokens > l.capacity {
		b.tokens = l.capacity
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// RateLimit builds a gin middleware enforcing a sustained rate of limit
// requests per window (bursts of up to limit), keyed by client IP.
func RateLimit(limit int, window time.Duration) gin.HandlerFunc {
	limiter := NewLimiter(limit, window)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		if !limiter.Allow(clientIP) {
			log.Warnf("rate limit exceeded for %s", clientIP)
			RenderError(c, http.StatusTooManyRequests, errs.New(errs.RateLimited, "rate limit exceeded, retry later"))
			c.Abort()
			return
		}
		c.Next()
	}
}
