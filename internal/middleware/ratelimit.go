package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/cyberhunter-club/cyber-hunter-backend/internal/service"
	"github.com/cyberhunter-club/cyber-hunter-backend/pkg/response"
)

// RateLimit guards an action with the redis SetNX limiter. Privileged
// leaderboard recomputes use this so a full O(N log N) pass can't be
// hammered in a loop.
func RateLimit(rdb *redis.Client, action string, limit time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := response.GetUserID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			c.Abort()
			return
		}

		allowed, err := service.CheckAndSetRateLimit(c.Request.Context(), rdb, userID, action, limit)
		if err != nil {
			// Limiter trouble shouldn't block the request; the action itself
			// is idempotent.
			c.Next()
			return
		}
		if !allowed {
			ttl, _ := service.GetRateLimitTTL(c.Request.Context(), rdb, userID, action)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": fmt.Sprintf("rate limit exceeded, retry in %s", ttl.Round(time.Second)),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
