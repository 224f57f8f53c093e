package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/metashield/jirasync/internal/shared/logger"
	"github.com/metashield/jirasync/internal/shared/utils"
)

// RateLimiter provides Redis-backed rate limiting of the sync triggers using
// a fixed-window counter per client IP and route. All instances share Redis,
// so the limit holds across replicas. A nil client disables limiting.
type RateLimiter struct {
	redisClient *redis.Client
	limit       int
	window      time.Duration
	now         func() time.Time
	logger      logger.Interface
}

// NewRateLimiter creates a new Redis-backed rate limiter.
// limit is the maximum number of requests allowed per window.
func NewRateLimiter(redisClient *redis.Client, limit int, window time.Duration, logger logger.Interface) *RateLimiter {
	if window < time.Second {
		window = time.Minute
	}
	return &RateLimiter{
		redisClient: redisClient,
		limit:       limit,
		window:      window,
		now:         time.Now,
		logger:      logger,
	}
}

// Limit returns a Gin middleware that enforces the rate limit per client IP.
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.redisClient == nil || rl.limit <= 0 {
			c.Next()
			return
		}

		windowSeconds := int64(rl.window.Seconds())
		windowBucket := rl.now().Unix() / windowSeconds
		key := fmt.Sprintf("jirasync:ratelimit:%s:%s:%d", c.FullPath(), c.ClientIP(), windowBucket)

		ctx := c.Request.Context()

		count, err := rl.redisClient.Incr(ctx, key).Result()
		if err != nil {
			// Redis unavailable: allow the request rather than block every trigger
			rl.logger.Warnw("rate limiter unavailable, allowing request",
				"path", c.FullPath(),
				"error", err,
			)
			c.Next()
			return
		}

		if count == 1 {
			rl.redisClient.Expire(ctx, key, rl.window+time.Second)
		}

		if count > int64(rl.limit) {
			retryAfter := windowSeconds - rl.now().Unix()%windowSeconds
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			rl.logger.Warnw("sync trigger rate limited",
				"path", c.FullPath(),
				"client_ip", c.ClientIP(),
				"count", count,
			)
			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
