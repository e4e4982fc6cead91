// middleware/rate_limiter.go
package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type endpointLimit struct {
	limit rate.Limit
	burst int
}

// RateLimiter throttles per client IP and blocks IPs that exceed their budget
type RateLimiter struct {
	ips            map[string]*rate.Limiter
	blockedIPs     map[string]time.Time
	mu             sync.Mutex
	defaultLimit   rate.Limit
	defaultBurst   int
	blockDuration  time.Duration
	endpointLimits map[string]endpointLimit
	now            func() time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		ips:           make(map[string]*rate.Limiter),
		blockedIPs:    make(map[string]time.Time),
		defaultLimit:  rate.Every(100 * time.Millisecond), // 10 requests per second
		defaultBurst:  20,
		blockDuration: 5 * time.Minute,
		endpointLimits: map[string]endpointLimit{
			// money-moving endpoints get a tighter budget
			"/api/payments/:bookingId/order":  {limit: rate.Every(time.Second), burst: 5},
			"/api/payments/:bookingId/verify": {limit: rate.Every(time.Second), burst: 5},
			"/api/payments/:bookingId/cash":   {limit: rate.Every(time.Second), burst: 5},
			"/api/reviews":                    {limit: rate.Every(2 * time.Second), burst: 5},
			"/api/technicians/apply":          {limit: rate.Every(5 * time.Second), burst: 3},
		},
		now: time.Now,
	}
}

// Cleanup drops expired blocks every interval until ctx is done
func (r *RateLimiter) Cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.mu.Lock()
			now := r.now()
			for ip, blockUntil := range r.blockedIPs {
				if now.After(blockUntil) {
					delete(r.blockedIPs, ip)
					r.forget(ip)
				}
			}
			r.mu.Unlock()
		}
	}
}

func (r *RateLimiter) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if strings.HasPrefix(path, "/uploads/") || path == "/health" || path == "/metrics" {
				return next(c)
			}

			ip := c.RealIP()
			now := r.now()

			r.mu.Lock()
			if blockUntil, blocked := r.blockedIPs[ip]; blocked {
				if now.Before(blockUntil) {
					r.mu.Unlock()
					return tooManyRequests(c, blockUntil)
				}
				delete(r.blockedIPs, ip)
				r.forget(ip)
			}

			lim := endpointLimit{limit: r.defaultLimit, burst: r.defaultBurst}
			if l, ok := r.endpointLimits[c.Path()]; ok {
				lim = l
			}
			// limiters are per IP and route template
			key := ip + " " + c.Path()
			limiter, ok := r.ips[key]
			if !ok {
				limiter = rate.NewLimiter(lim.limit, lim.burst)
				r.ips[key] = limiter
			}

			if !limiter.AllowN(now, 1) {
				blockUntil := now.Add(r.blockDuration)
				r.blockedIPs[ip] = blockUntil
				r.mu.Unlock()
				return tooManyRequests(c, blockUntil)
			}
			r.mu.Unlock()

			return next(c)
		}
	}
}

// forget drops every route limiter of ip; callers hold mu
func (r *RateLimiter) forget(ip string) {
	prefix := ip + " "
	for key := range r.ips {
		if strings.HasPrefix(key, prefix) {
			delete(r.ips, key)
		}
	}
}

func tooManyRequests(c echo.Context, retryAfter time.Time) error {
	return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
		"success":    false,
		"error":      "Too many requests",
		"retryAfter": retryAfter.Format(time.RFC3339),
	})
}
