package mw

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiters hands out one token bucket per client IP and drops buckets
// that have been idle for a while.
type ipLimiters struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	r       rate.Limit
	b       int
}

func newIPLimiters(r rate.Limit, b int) *ipLimiters {
	l := &ipLimiters{
		clients: make(map[string]*clientLimiter),
		r:       r,
		b:       b,
	}
	go l.sweep()
	return l
}

func (l *ipLimiters) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	cl, ok := l.clients[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(l.r, l.b)}
		l.clients[ip] = cl
	}
	cl.lastSeen = time.Now()
	return cl.limiter
}

func (l *ipLimiters) sweep() {
	for range time.Tick(5 * time.Minute) {
		l.mu.Lock()
		for ip, cl := range l.clients {
			if time.Since(cl.lastSeen) > 10*time.Minute {
				delete(l.clients, ip)
			}
		}
		l.mu.Unlock()
	}
}

// RateLimiter is a middleware for per-IP request rate limiting.
func RateLimiter(r rate.Limit, burst int) gin.HandlerFunc {
	limiters := newIPLimiters(r, burst)
	return func(c *gin.Context) {
		if !limiters.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
