package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/guttosm/tradesummary/internal/logger"
)

// RequestLogger is a Gin middleware that logs method, route, status code,
// request latency, and request ID (if available).
//
// Behavior:
//   - Captures start time before request handling.
//   - After request is processed, calculates latency.
//   - Logs at info for 2xx/3xx, warn for 4xx and error for 5xx.
//   - Attaches errors recorded with c.Error (see AbortWithError).
//
// Usage:
//
//	router := gin.New()
//	router.Use(middleware.RequestID(), middleware.RequestLogger())
//
// Example log output:
//
//	request_id=123e4567-e89b-12d3-a456-426614174000 method=GET route=/api/v1/summaries/:symbol status=200 latency_ms=3
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Start timer
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path

		// Process request
		c.Next()

		// Compute latency and get status
		latency := time.Since(start)
		status := c.Writer.Status()

		// Get request_id if available
		rid, _ := c.Get(RequestIDKey)

		ev := eventFor(status)
		if len(c.Errors) > 0 {
			ev = ev.Str("error", c.Errors.String())
		}

		// Structured JSON log
		ev.
			Str("request_id", toString(rid)).
			Str("method", method).
			Str("path", path).
			Str("route", c.FullPath()).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Int64("latency_ms", latency.Milliseconds()).
			Str("client_ip", c.ClientIP()).
			Msg("http_request")
	}
}

func eventFor(status int) *zerolog.Event {
	switch {
	case status >= http.StatusInternalServerError:
		return logger.L().Error()
	case status >= http.StatusBadRequest:
		return logger.L().Warn()
	default:
		return logger.L().Info()
	}
}

func toString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

const (
	DefaultRateLimit  = 60
	DefaultRateWindow = time.Minute
)

// client is one IP's fixed window: the request count since windowStart.
type client struct {
	windowStart time.Time
	count       int
}

// In-memory store for one limiter instance.
// NOTE: In production, consider Redis or another distributed store for multi-instance deployments.
type rateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*client
	window    time.Duration
	limit     int
	lastSweep time.Time
}

// RateLimiter limits each client IP to DefaultRateLimit requests per DefaultRateWindow.
//
// Usage:
//
//	router := gin.New()
//	router.Use(middleware.RateLimiter())
//
// Response when limit exceeded:
//
//	HTTP/1.1 429 Too Many Requests
//	{
//	    "error": "rate limit exceeded"
//	}
func RateLimiter() gin.HandlerFunc {
	return NewRateLimiter(DefaultRateLimit, DefaultRateWindow)
}

// NewRateLimiter returns a limiter allowing `limit` requests per fixed
// `window` per client IP. A client's window opens on its first request and
// later requests do not extend it. Clients idle for a full window are evicted.
// Each call owns its own store.
func NewRateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	rl := newRateLimiter(limit, window)
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP(), time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{clients: make(map[string]*client), window: window, limit: limit}
}

func (rl *rateLimiter) allow(ip string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastSweep) >= rl.window {
		rl.sweep(now)
	}

	cl, ok := rl.clients[ip]
	if !ok || now.Sub(cl.windowStart) >= rl.window {
		cl = &client{windowStart: now}
		rl.clients[ip] = cl
	}
	cl.count++
	return cl.count <= rl.limit
}

// sweep drops clients whose window has expired. Caller holds mu.
func (rl *rateLimiter) sweep(now time.Time) {
	for ip, cl := range rl.clients {
		if now.Sub(cl.windowStart) >= rl.window {
			delete(rl.clients, ip)
		}
	}
	rl.lastSweep = now
}
