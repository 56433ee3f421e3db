package v1

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type clientWindow struct {
	count       int
	windowStart time.Time
	lastSeen    time.Time
}

// ipLimiter caps requests per client IP at `requests` per fixed `window`.
// The window is anchored at the client's first request and resets as a
// whole once it elapses; there is no continuous refill inside a window.
type ipLimiter struct {
	requests int
	window   time.Duration

	mu      sync.Mutex
	clients map[string]*clientWindow
}

func newIPLimiter(requests int, window time.Duration) *ipLimiter {
	return &ipLimiter{
		requests: requests,
		window:   window,
		clients:  make(map[string]*clientWindow),
	}
}

// allow reports whether a request from ip at now fits the client's
// current window. When it does not, it returns how long the client has
// to wait for the window to reset.
func (l *ipLimiter) allow(ip string, now time.Time) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cl, ok := l.clients[ip]
	if !ok {
		cl = &clientWindow{windowStart: now}
		l.clients[ip] = cl
	}
	if now.Sub(cl.windowStart) >= l.window {
		cl.windowStart = now
		cl.count = 0
	}
	cl.lastSeen = now

	if cl.count >= l.requests {
		return false, cl.windowStart.Add(l.window).Sub(now)
	}
	cl.count++
	return true, 0
}

func (l *ipLimiter) sweep(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, cl := range l.clients {
		if now.Sub(cl.lastSeen) >= l.window {
			delete(l.clients, ip)
		}
	}
}

// RateLimitMiddleware enforces a fixed window of `requests` per `window`
// per client IP, intended for the authentication endpoints only.
// Counters are process-local and reset on restart. Rejected requests
// carry a Retry-After hint covering the remainder of the window.
func RateLimitMiddleware(logger zerolog.Logger, requests int, window time.Duration) gin.HandlerFunc {
	limiter := newIPLimiter(requests, window)

	go func() {
		ticker := time.NewTicker(time.Minute)
		for {
			<-ticker.C
			limiter.sweep(time.Now())
		}
	}()

	return func(c *gin.Context) {
		ip := c.ClientIP()

		ok, wait := limiter.allow(ip, time.Now())
		if !ok {
			retryAfter := int(math.Ceil(wait.Seconds()))
			logger.Warn().
				Str("ip", ip).
				Int("retry_after", retryAfter).
				Msg("rate limit exceeded")
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			abort(c, newAPIError(http.StatusTooManyRequests, "too many requests, please try again later"))
			return
		}

		c.Next()
	}
}
