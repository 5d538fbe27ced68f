// Package mw holds the gin middleware of the status API.
package mw

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ClientLimiter keeps one token bucket per client IP.
type ClientLimiter struct {
	mu      sync.Mutex
	clients map[string]*rate.Limiter
	r       rate.Limit
	b       int
}

// NewClientLimiter allows r requests per second with bursts of b for each client.
func NewClientLimiter(r rate.Limit, b int) *ClientLimiter {
	return &ClientLimiter{
		clients: make(map[string]*rate.Limiter),
		r:       r,
		b:       b,
	}
}

// Limiter returns the bucket for ip, creating it on first use.
func (l *ClientLimiter) Limiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.clients[ip]
	if !ok {
		limiter = rate.NewLimiter(l.r, l.b)
		l.clients[ip] = limiter
	}
	return limiter
}

// RateLimiter rejects requests over the per-client budget with 429.
func RateLimiter(r rate.Limit, b int) gin.HandlerFunc {
	limiter := NewClientLimiter(r, b)
	return func(c *gin.Context) {
		if !limiter.Limiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
