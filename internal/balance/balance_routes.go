package balance

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
	balances := r.Group("/balances")
	balances.Use(middleware.AuthMiddleware())
	{
		balances.GET("/employee/:employeeId", middleware.Authorize(authzService, authz.ResourceBalance, authz.ActionRead), handler.GetForEmployee)
		balances.PUT("/:id", middleware.Authorize(authzService, authz.ResourceBalance, authz.ActionWrite), handler.SetBalance)
		balances.POST("/reset", middleware.Authorize(authzService, authz.ResourceBalance, authz.ActionReset), handler.ResetYear)
	}
}
