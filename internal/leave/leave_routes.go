package leave

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Waihonggg/leave-app-system/internal/auth"
	"github.com/Waihonggg/leave-app-system/internal/middleware"
)

// RegisterRoutes wires the workflow endpoints. The decision endpoints stay
// outside the session group on purpose: they are reached from emailed links,
// and the row/id match inside Decide is their guard against stale or
// tampered links.
func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	sessions auth.SessionStore,
	rdb *redis.Client,
) {
	authed := r.Group("")
	authed.Use(middleware.SessionAuth(sessions))
	{
		authed.GET("/leave-data", handler.LeaveData)
		authed.POST("/apply-leave",
			middleware.RateLimitByUser(1, 3),
			middleware.Idempotency(rdb),
			handler.Apply,
		)
		authed.POST("/cancel-leave", handler.CancelLeave)
	}

	r.GET("/approve-leave", handler.Approve)
	r.POST("/approve-leave", handler.Approve)
	r.GET("/reject-leave", handler.Reject)
	r.POST("/reject-leave", handler.Reject)
}
