package employee

import (
	"go-leavetrack/internal/authz"
	"go-leavetrack/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	authzService authz.Service,
) {
	employees := r.Group("/employees")
	employees.Use(middleware.AuthMiddleware())
	{
		employees.GET("", middleware.Authorize(authzService, authz.ResourceEmployee, authz.ActionRead), handler.List)
		employees.GET("/:id", middleware.Authorize(authzService, authz.ResourceEmployee, authz.ActionRead), handler.GetByID)
		employees.PUT("/:id/role", middleware.Authorize(authzService, authz.ResourceEmployee, authz.ActionManage), handler.UpdateRole)
	}
}
