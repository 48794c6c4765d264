package report

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
	reports := r.Group("/reports")
	reports.Use(middleware.AuthMiddleware())
	{
		reports.GET("/summary/:employeeId", middleware.Authorize(authzService, authz.ResourceReport, authz.ActionRead), handler.YearSummary)
		reports.GET("/on-leave", middleware.Authorize(authzService, authz.ResourceReport, authz.ActionRead), handler.OnLeave)
		reports.GET("/calendar", middleware.Authorize(authzService, authz.ResourceReport, authz.ActionRead), handler.MonthCalendar)
	}
}
