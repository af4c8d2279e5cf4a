package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/anonto42/aray/backend/internal/models"
	"github.com/anonto42/aray/backend/internal/observability"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter decides whether one more request for key fits in the budget
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Backend() string
}

// RedisLimiter is a fixed-window counter shared by every instance through Redis.
type RedisLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

// NewRedisLimiter creates a RedisLimiter
func NewRedisLimiter(rdb *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, limit: limit, window: window}
}

// Allow increments the counter of key. The window starts with the first
// request: SET NX seeds the key with its expiry and INCR keeps that TTL, both
// inside one MULTI so a key never exists without an expiry.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.rdb == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	redisKey := "rl:writes:" + key

	var incr *redis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, redisKey, 0, l.window)
		incr = pipe.Incr(ctx, redisKey)
		return nil
	})
	if err != nil {
		return false, err
	}
	return incr.Val() <= int64(l.limit), nil
}

func (l *RedisLimiter) Backend() string { return "redis" }

// LocalLimiter keeps one token bucket per key in process memory.
type LocalLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	every    rate.Limit
	burst    int
}

// NewLocalLimiter allows limit requests per window per key, refilled evenly
func NewLocalLimiter(limit int, window time.Duration) *LocalLimiter {
	if limit < 1 {
		limit = 1
	}
	return &LocalLimiter{
		limiters: make(map[string]*rate.Limiter),
		every:    rate.Every(window / time.Duration(limit)),
		burst:    limit,
	}
}

// Allow takes one token from the bucket of key
func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.every, l.burst)
		l.limiters[key] = lim
	}
	l.mu.Unlock()
	return lim.Allow(), nil
}

func (l *LocalLimiter) Backend() string { return "local" }

// RateLimit limits state-changing requests per authenticated user, or per IP for anonymous callers.
// Read-only methods pass through. Limiter errors fail open.
func RateLimit(l Limiter, logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			key := "ip:" + c.RealIP()
			if uid := UserIDFromContext(c); uid != 0 {
				key = fmt.Sprintf("user:%d", uid)
			}

			allowed, err := l.Allow(c.Request().Context(), key)
			if err != nil {
				observability.RedisErrors.WithLabelValues("rate_limit").Inc()
				logger.WarnContext(c.Request().Context(), "rate limiter unavailable, allowing request",
					slog.String("key", key),
					slog.String("error", err.Error()),
				)
				return next(c)
			}
			if !allowed {
				observability.RateLimitRejections.WithLabelValues(l.Backend()).Inc()
				return c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
					Error: "rate limit exceeded",
					Code:  models.CodeRateLimited,
				})
			}
			return next(c)
		}
	}
}
