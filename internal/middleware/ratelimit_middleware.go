package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/toystore_api/internal/utils"
)

// Limit: 5 failed attempts per minute per IP.
const (
	invalidAuthLimit  = 5
	invalidAuthWindow = time.Minute
)

// Rate limiter ONLY for invalid auth attempts
type InvalidAuthRateLimiter struct {
	mu       sync.Mutex
	attempts map[string]*attemptInfo
	now      func() time.Time
}

type attemptInfo struct {
	count   int
	firstAt time.Time
}

func NewInvalidAuthRateLimiter() *InvalidAuthRateLimiter {
	rl := &InvalidAuthRateLimiter{
		attempts: make(map[string]*attemptInfo),
		now:      time.Now,
	}
	go rl.cleanup()
	return rl
}

// Allow records a failed attempt and reports whether ip is still under the limit.
func (r *InvalidAuthRateLimiter) Allow(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	info, exists := r.attempts[ip]
	if !exists || now.Sub(info.firstAt) > invalidAuthWindow {
		r.attempts[ip] = &attemptInfo{count: 1, firstAt: now}
		return true
	}

	if info.count >= invalidAuthLimit {
		return false
	}
	info.count++
	return true
}

// Blocked reports whether ip has used up its failed attempts for the current window.
func (r *InvalidAuthRateLimiter) Blocked(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, exists := r.attempts[ip]
	if !exists || r.now().Sub(info.firstAt) > invalidAuthWindow {
		return false
	}
	return info.count >= invalidAuthLimit
}

func (r *InvalidAuthRateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	for range ticker.C {
		r.mu.Lock()
		now := r.now()
		for ip, info := range r.attempts {
			if now.Sub(info.firstAt) > invalidAuthWindow {
				delete(r.attempts, ip)
			}
		}
		r.mu.Unlock()
	}
}

// LoginRateLimit rejects clients with too many failed logins and counts every
// 401 response as a failure.
func LoginRateLimit(rl *InvalidAuthRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if rl.Blocked(ip) {
			abortWith(c, utils.ErrTooManyAttempts)
			return
		}

		c.Next()

		if c.Writer.Status() == http.StatusUnauthorized {
			rl.Allow(ip)
		}
	}
}
