package router

import (
	"staff_sync_backend/internal/access"
	"staff_sync_backend/internal/handlers"
	"staff_sync_backend/internal/middleware"
	"staff_sync_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Dependencies are the services the HTTP layer is built on.
type Dependencies struct {
	AuthService       services.AuthService
	AttendanceService services.AttendanceService
	CommentService    services.CommentService
	ReportService     services.ReportService
	Policy            *access.Policy
}

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.AuthService)
	staffHandler := handlers.NewStaffHandler(deps.AuthService)
	attendanceHandler := handlers.NewAttendanceHandler(deps.AttendanceService)
	navigationHandler := handlers.NewNavigationHandler(deps.Policy)
	commentHandler := handlers.NewCommentHandler(deps.CommentService)
	reportHandler := handlers.NewReportHandler(deps.ReportService)

	apiV1 := engine.Group("/api/v1")
	SetupPublicAuthRoutes(apiV1.Group("/auth"), authHandler)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware(deps.AuthService))
	{
		SetupAuthenticatedAuthRoutes(authenticated.Group("/auth"), authHandler)
		SetupNavigationRoutes(authenticated, navigationHandler)
		SetupAttendanceRoutes(authenticated, attendanceHandler, deps.Policy)
		SetupStaffRoutes(authenticated, staffHandler, deps.Policy)
		SetupCommentRoutes(authenticated, commentHandler, deps.Policy)
		SetupDashboardRoutes(authenticated, reportHandler, deps.Policy)
		SetupReportRoutes(authenticated, reportHandler, deps.Policy)
	}
}
