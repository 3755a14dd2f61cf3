package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// RateLimitConfig limits requests per client IP.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	// IdleTTL drops limiters for clients not seen for this long.
	IdleTTL time.Duration
}

// LoginRateLimitConfig is tuned for password attempts.
func LoginRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{RequestsPerSecond: 0.2, BurstSize: 5, IdleTTL: 15 * time.Minute}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterStore struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	cfg       RateLimitConfig
	now       func() time.Time
	lastSweep time.Time
}

func (s *limiterStore) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	v, ok := s.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(s.cfg.RequestsPerSecond), s.cfg.BurstSize)}
		s.visitors[key] = v
	}
	v.lastSeen = now

	// Sweep at most once per IdleTTL.
	if s.cfg.IdleTTL > 0 && now.Sub(s.lastSweep) >= s.cfg.IdleTTL {
		s.sweep(now)
	}
	return v.limiter
}

func (s *limiterStore) sweep(now time.Time) {
	for k, v := range s.visitors {
		if now.Sub(v.lastSeen) > s.cfg.IdleTTL {
			delete(s.visitors, k)
		}
	}
	s.lastSweep = now
}

// RateLimit returns middleware that answers 429 once a client IP exceeds
// its token bucket.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	store := &limiterStore{visitors: make(map[string]*visitor), cfg: cfg, now: time.Now}
	limit := strconv.FormatFloat(cfg.RequestsPerSecond, 'f', -1, 64)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			lim := store.get(c.RealIP())
			c.Response().Header().Set("X-RateLimit-Limit", limit)

			res := lim.Reserve()
			if delay := res.Delay(); delay > 0 {
				res.Cancel()
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(delay/time.Second)+1))
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
