// Package ratelimit throttles abuse-prone endpoints such as security code
// validation with a fixed-window counter kept in Redis.
package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/projecthub/pkg/projecthub/auth"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyTpl = "throttle:%s:%s" // throttle:${scope}:${caller}

// Limiter decides whether one more call for key is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisLimiter counts calls per key in windows of fixed length.
type RedisLimiter struct {
	redis  *redis.Client
	limit  int64
	window time.Duration
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{redis: client, limit: int64(limit), window: window}
}

// Allow increments the counter for key and reports whether it is still within the limit.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	pipe := l.redis.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, l.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to update throttle counter: %w", err)
	}
	return incr.Val() <= l.limit, nil
}

// Middleware rejects callers that exceeded the limiter for scope with 429.
// A nil limiter disables throttling. Limiter failures let the request through.
func Middleware(l Limiter, scope string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil {
			c.Next()
			return
		}

		caller := c.ClientIP()
		if p, ok := auth.GetPrincipal(c); ok {
			caller = string(p.Kind) + "-" + strconv.FormatUint(uint64(p.ID), 10)
		}
		key := fmt.Sprintf(keyTpl, scope, caller)

		allowed, err := l.Allow(c.Request.Context(), key)
		if err != nil {
			log.Warn("throttle unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, try again later"})
			return
		}
		c.Next()
	}
}
