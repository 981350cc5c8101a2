package middleware

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/portalevent/portal-api/internal/api/handler/v1/response"
)

var errRateLimited = errors.New("too many requests, try again later")

// RateLimiter is a fixed-window counter keyed by route and client IP.
// A nil client disables limiting.
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

func (l *RateLimiter) Limit(scope string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if l.client == nil || l.limit <= 0 {
			ctx.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%s", scope, ctx.ClientIP())
		count, ttl, err := l.hit(ctx, key)
		if err != nil {
			// Redis being down must not take the endpoint with it.
			zap.L().Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
			ctx.Next()
			return
		}

		remaining := l.limit - int(count)
		if remaining < 0 {
			remaining = 0
		}
		ctx.Header("X-RateLimit-Limit", strconv.Itoa(l.limit))
		ctx.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if int(count) > l.limit {
			ctx.Header("Retry-After", strconv.Itoa(int(ttl.Round(time.Second).Seconds())))
			response.RenderErr(ctx, response.ErrTooManyRequests(errRateLimited))
			return
		}

		ctx.Next()
	}
}

func (l *RateLimiter) hit(ctx *gin.Context, key string) (int64, time.Duration, error) {
	c := ctx.Request.Context()

	count, err := l.client.Incr(c, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("l.client.Incr -> %w", err)
	}
	if count == 1 {
		if err = l.client.Expire(c, key, l.window).Err(); err != nil {
			return 0, 0, fmt.Errorf("l.client.Expire -> %w", err)
		}
	}

	ttl, err := l.client.TTL(c, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("l.client.TTL -> %w", err)
	}
	if ttl < 0 {
		ttl = l.window
	}

	return count, ttl, nil
}
