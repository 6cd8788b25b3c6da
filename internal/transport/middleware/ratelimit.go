package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/frahmantamala/mastersight/internal"
	"github.com/frahmantamala/mastersight/pkg/logger"
)

type RateLimiterConfig struct {
	PerMinute       int
	Burst           int
	CleanupInterval time.Duration
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter throttles unauthenticated endpoints per client IP. State is
// per process.
type RateLimiter struct {
	limit      rate.Limit
	burst      int
	retryAfter int
	interval   time.Duration

	mu      sync.Mutex
	clients map[string]*clientLimiter

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.PerMinute <= 0 {
		cfg.PerMinute = 10
	}
	if cfg.Burst <= 0 {
		cfg.Burst = cfg.PerMinute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}

	rl := &RateLimiter{
		limit:      rate.Limit(float64(cfg.PerMinute) / 60.0),
		burst:      cfg.Burst,
		retryAfter: (60 + cfg.PerMinute - 1) / cfg.PerMinute,
		interval:   cfg.CleanupInterval,
		clients:    make(map[string]*clientLimiter),
		stopCh:     make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.limiterFor(ip).Allow() {
			logger.From(r.Context()).Warn("rate limit exceeded",
				slog.String("ip", ip),
				slog.String("path", r.URL.Path))
			rl.reject(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) ClientCount() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if c, ok := rl.clients[ip]; ok {
		c.lastAccess = time.Now()
		return c.limiter
	}
	c := &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst), lastAccess: time.Now()}
	rl.clients[ip] = c
	return c.limiter
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now())
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup drops clients idle for more than two intervals.
func (rl *RateLimiter) cleanup(now time.Time) {
	ttl := rl.interval * 2
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, c := range rl.clients {
		if now.Sub(c.lastAccess) > ttl {
			delete(rl.clients, ip)
		}
	}
}

func (rl *RateLimiter) reject(w http.ResponseWriter) {
	// seconds until one token is back
	w.Header().Set("Retry-After", strconv.Itoa(rl.retryAfter))

	status, body := internal.NewRateLimitedError("too many requests").ToHTTPResponse()
	writeJSON(w, status, body)
}

// clientIP uses RemoteAddr; chi's RealIP middleware rewrites it from
// X-Forwarded-For when the server sits behind a proxy.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
