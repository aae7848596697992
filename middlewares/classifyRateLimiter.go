package middlewares

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// ClassifyRateLimiter caps how many images one client may send for
// classification per day. Counters live in Redis under prefix:<client ip>.
// When Redis is unreachable the request is let through.
func ClassifyRateLimiter(client *redis.Client, prefix string, limit int, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		clientKey := prefix + ":" + c.ClientIP()

		// Increment client's count with TTL
		count, err := client.Incr(ctx, clientKey).Result()
		if err != nil {
			logger.Warn("rate limiter: redis incr failed, allowing request", "err", err)
			c.Next()
			return
		}

		// Set TTL only for the first increment
		if count == 1 {
			if err := client.Expire(ctx, clientKey, 24*time.Hour).Err(); err != nil {
				logger.Warn("rate limiter: redis expire failed", "key", clientKey, "err", err)
			}
		}

		if count > int64(limit) {
			retryAfter, _ := client.TTL(ctx, clientKey).Result()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "daily classification limit reached",
				"retry_after": retryAfter.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
