package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/config"
	apperrors "github.com/spec-kit/account-service/pkg/util"
)

// WindowStore is the slice of the redis command surface the limiter needs.
// *redis.Client satisfies it directly.
type WindowStore interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// Limiter enforces fixed-window request quotas per client address, backed by
// Redis so the window survives restarts and is shared across replicas.
type Limiter struct {
	store   WindowStore
	logger  *zap.Logger
	enabled bool
}

// NewLimiter builds a limiter. A nil store disables limiting.
func NewLimiter(store WindowStore, cfg config.RateLimitConfig, logger *zap.Logger) *Limiter {
	return &Limiter{
		store:   store,
		logger:  logger,
		enabled: cfg.Enabled && store != nil,
	}
}

// Class returns a middleware enforcing the quota for one endpoint class.
// When Redis is unreachable the limiter fails open: a degraded cache must not
// take authentication down with it.
func (l *Limiter) Class(name string, quota config.RateLimitQuota) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !l.enabled || quota.Requests <= 0 {
			return c.Next()
		}

		key := fmt.Sprintf("ratelimit:%s:%s", name, c.IP())
		ctx := c.Context()

		count, err := l.store.Incr(ctx, key).Result()
		if err != nil {
			l.logger.Warn("rate limiter unavailable, failing open",
				zap.String("class", name), zap.Error(err))
			return c.Next()
		}
		if count == 1 {
			if err := l.store.Expire(ctx, key, quota.Window).Err(); err != nil {
				l.logger.Warn("rate limiter expire failed",
					zap.String("class", name), zap.Error(err))
			}
		}
		if count > int64(quota.Requests) {
			return apperrors.NewRateLimited(
				fmt.Sprintf("too many %s requests, retry later", name))
		}
		return c.Next()
	}
}
