package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimiter limits requests per client IP using store.
func RateLimiter(store middleware.RateLimiterStore) echo.MiddlewareFunc {
	config := middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.String(http.StatusForbidden, "Unable to identify client.")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.String(http.StatusTooManyRequests, "Too many requests. Please try again later.")
		},
	}
	return middleware.RateLimiterWithConfig(config)
}

// NewMemoryLimiterStore allows perMinute requests per client, refilled evenly
// over the minute. It suits single-instance deployments.
func NewMemoryLimiterStore(perMinute int) middleware.RateLimiterStore {
	return middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(perMinute) / 60),
		Burst:     perMinute,
		ExpiresIn: 3 * time.Minute,
	})
}

// RedisLimiterStore is a fixed-window limiter shared by every instance using
// the same Redis.
type RedisLimiterStore struct {
	client redis.UniversalClient
	limit  int64
	window time.Duration
	prefix string
	logger *slog.Logger
}

// NewRedisLimiterStore allows limit requests per client per window.
func NewRedisLimiterStore(client redis.UniversalClient, limit int, window time.Duration, logger *slog.Logger) *RedisLimiterStore {
	return &RedisLimiterStore{
		client: client,
		limit:  int64(limit),
		window: window,
		prefix: "signin:ratelimit:",
		logger: logger,
	}
}

// Allow implements middleware.RateLimiterStore. Redis failures fail open.
func (s *RedisLimiterStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	key := s.prefix + identifier
	n, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		s.logger.Error("Rate limiter unavailable, allowing request", "error", err)
		return true, nil
	}
	if n == 1 {
		if err := s.client.Expire(ctx, key, s.window).Err(); err != nil {
			s.logger.Error("Failed to set rate limit window", "key", key, "error", err)
		}
	}
	return n <= s.limit, nil
}
