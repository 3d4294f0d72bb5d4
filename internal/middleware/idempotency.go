package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Waihonggg/leave-app-system/internal/shared/contextutil"
)

// Idempotency guards double form submissions on POST endpoints. A client that
// sends an Idempotency-Key holds a short redis lock for the duration of the
// request; a second request with the same key while the first is in flight
// gets a 409. With no redis client configured the guard is a passthrough.
func Idempotency(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		idempKey := c.GetHeader("Idempotency-Key")
		if idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		username := contextutil.GetUsername(c.Request.Context())
		lockKey := fmt.Sprintf("idemp:%s:%s:%s:lock", c.FullPath(), username, idempKey)

		// Short expiry so a crashed request releases the lock on its own.
		isNew, _ := rdb.SetNX(c.Request.Context(), lockKey, "locked", 30*time.Second).Result()
		if !isNew {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"success": false,
				"message": "Your request is already being processed.",
			})
			return
		}

		c.Next()

		rdb.Del(c.Request.Context(), lockKey)
	}
}
