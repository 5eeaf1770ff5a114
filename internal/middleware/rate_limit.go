// internal/middleware/rate_limit.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/javajoker/ecommerce-backend/internal/i18n"
)

const visitorTTL = 3 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	visitors map[string]*visitor
	mtx      sync.Mutex
	rate     rate.Limit
	burst    int
	stop     chan struct{}
	once     sync.Once
}

func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     r,
		burst:    b,
		stop:     make(chan struct{}),
	}

	// Clean up old visitors every minute
	go rl.cleanupVisitors(time.Minute)

	return rl
}

// Stop ends the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanupVisitors(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.mtx.Lock()
			for ip, v := range rl.visitors {
				if now.Sub(v.lastSeen) > visitorTTL {
					delete(rl.visitors, ip)
				}
			}
			rl.mtx.Unlock()
		}
	}
}

func (rl *RateLimiter) getVisitor(ip string) *rate.Limiter {
	rl.mtx.Lock()
	defer rl.mtx.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(rl.rate, rl.burst)
		rl.visitors[ip] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.getVisitor(c.ClientIP()).Allow() {
			c.Header("Retry-After", "60")
			abort(c, http.StatusTooManyRequests, i18n.KeyRateLimited)
			return
		}
		c.Next()
	}
}

// RateLimits groups the limiters applied by the router.
type RateLimits struct {
	General *RateLimiter
	Auth    *RateLimiter
	Upload  *RateLimiter
}

// NewRateLimits builds the general, auth and upload limiters. General is
// requests per second; auth and upload are requests per minute.
func NewRateLimits(generalPerSecond float64, generalBurst, authPerMinute, uploadPerMinute int) *RateLimits {
	return &RateLimits{
		General: NewRateLimiter(rate.Limit(generalPerSecond), generalBurst),
		Auth:    NewRateLimiter(rate.Every(time.Minute/time.Duration(max(authPerMinute, 1))), max(authPerMinute, 1)),
		Upload:  NewRateLimiter(rate.Every(time.Minute/time.Duration(max(uploadPerMinute, 1))), max(uploadPerMinute, 1)),
	}
}

func (r *RateLimits) Stop() {
	r.General.Stop()
	r.Auth.Stop()
	r.Upload.Stop()
}

// Passthrough is used in place of a limiter when rate limiting is disabled.
func Passthrough() gin.HandlerFunc {
	return func(c *gin.Context) { c.Next() }
}

