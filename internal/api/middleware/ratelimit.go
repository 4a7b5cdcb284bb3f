package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/acme/catalog-system/internal/api/metrics"
)

// Limiter decides whether one more request for key fits in the window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error)
}

// RateLimit refuses requests beyond limit per window and client IP with 429.
// Limiter errors let the request through.
func RateLimit(l Limiter, limit int, window time.Duration, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ok, retryAfter, err := l.Allow(c.Request().Context(), c.RealIP(), limit, window)
			if err != nil {
				log.Warn().Err(err).Str("ip", c.RealIP()).Msg("rate limiter unavailable")
				return next(c)
			}
			if !ok {
				metrics.RateLimitedTotal.Inc()
				secs := int(math.Ceil(retryAfter.Seconds()))
				c.Response().Header().Set(echo.HeaderRetryAfter, strconv.Itoa(secs))
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
			}
			return next(c)
		}
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalLimiter is an in-process token bucket per key, used when no shared
// store is configured.
type LocalLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
}

func NewLocalLimiter() *LocalLimiter {
	return &LocalLimiter{visitors: make(map[string]*visitor), now: time.Now}
}

const sweepThreshold = 10000

func (l *LocalLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.visitors[key]
	if !ok {
		if len(l.visitors) >= sweepThreshold {
			l.sweep(now, window)
		}
		v = &visitor{limiter: rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit)}
		l.visitors[key] = v
	}
	v.lastSeen = now

	r := v.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay, nil
	}
	return true, 0, nil
}

func (l *LocalLimiter) sweep(now time.Time, window time.Duration) {
	for k, v := range l.visitors {
		if now.Sub(v.lastSeen) > window {
			delete(l.visitors, k)
		}
	}
}
