package leave

import (
	"go-leavetrack/internal/authz"
	"go-leavetrack/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	authzService authz.Service,
	rdb *redis.Client,
) {
	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware())
	{
		leaves.POST("", middleware.Authorize(authzService, authz.ResourceLeave, authz.ActionCreate), middleware.Idempotency(rdb), handler.Create)
		leaves.GET("", middleware.Authorize(authzService, authz.ResourceLeave, authz.ActionRead), handler.GetAll)
		leaves.GET("/:id", middleware.Authorize(authzService, authz.ResourceLeave, authz.ActionRead), handler.GetByID)
		leaves.PUT("/:id", middleware.Authorize(authzService, authz.ResourceLeave, authz.ActionEdit), handler.Edit)
		leaves.POST("/:id/approve", middleware.Authorize(authzService, authz.ResourceLeave, authz.ActionApprove), middleware.Idempotency(rdb), handler.Approve)
		leaves.POST("/:id/reject", middleware.Authorize(authzService, authz.ResourceLeave, authz.ActionReject), middleware.Idempotency(rdb), handler.Reject)
		leaves.POST("/:id/cancel", middleware.Authorize(authzService, authz.ResourceLeave, authz.ActionCancel), middleware.Idempotency(rdb), handler.Cancel)
	}
}
