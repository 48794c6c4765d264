package app

import (
	"database/sql"

	"go-leavetrack/internal/audit"
	"go-leavetrack/internal/auth"
	"go-leavetrack/internal/authz"
	"go-leavetrack/internal/balance"
	"go-leavetrack/internal/employee"
	"go-leavetrack/internal/leave"
	"go-leavetrack/internal/messaging/kafka"
	"go-leavetrack/internal/middleware"
	"go-leavetrack/internal/report"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	auditRepo := audit.NewRepository(gormDB)
	authRepo := auth.NewRepository(gormDB)
	balanceRepo := balance.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	reportRepo := report.NewRepository(gormDB)

	// --- Authorization Core ---
	authzService, err := authz.NewService()
	if err != nil {
		return err
	}

	// --- Services ---
	authService := auth.NewService(db, authRepo, employeeRepo)
	balanceService := balance.NewService(db, balanceRepo, authzService)
	employeeService := employee.NewService(db, employeeRepo, authzService)
	leaveService := leave.NewServiceWithOutbox(
		db, leaveRepo, balanceRepo, auditRepo, outboxRepo, authzService, leave.PolicyFromEnv(),
	)
	reportService := report.NewService(reportRepo, balanceRepo, rdb, authzService)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	balanceHandler := balance.NewHandler(balanceService)
	employeeHandler := employee.NewHandler(employeeService)
	leaveHandler := leave.NewHandlerWithRedis(leaveService, rdb)
	reportHandler := report.NewHandler(reportService)

	// --- Routes Registration ---
	router.Use(middleware.RequestID())

	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		balance.RegisterRoutes(api, balanceHandler, authzService)
		employee.RegisterRoutes(api, employeeHandler, authzService)
		leave.RegisterRoutes(api, leaveHandler, authzService, rdb)
		report.RegisterRoutes(api, reportHandler, authzService)
	}

	return nil
}
