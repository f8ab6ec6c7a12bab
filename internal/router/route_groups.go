package router

import (
	"staff_sync_backend/internal/access"
	"staff_sync_backend/internal/handlers"
	"staff_sync_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupPublicAuthRoutes sets up /register and /login.
func SetupPublicAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/register", authHandler.Signup)
	group.POST("/login", authHandler.Login)
}

// SetupAuthenticatedAuthRoutes sets up the session-bound auth routes.
func SetupAuthenticatedAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/logout", authHandler.Logout)
	group.GET("/me", authHandler.GetCurrentUser)
	group.PUT("/credentials", authHandler.UpdateCredentials)
	group.PUT("/profile", authHandler.UpdateProfile)
}

// SetupNavigationRoutes sets up the page listing and redirect resolution routes.
func SetupNavigationRoutes(authenticatedGroup *gin.RouterGroup, navigationHandler *handlers.NavigationHandler) {
	navigationRoutes := authenticatedGroup.Group("/navigation")
	{
		navigationRoutes.GET("/pages", navigationHandler.GetPages)
		navigationRoutes.GET("/resolve", navigationHandler.Resolve)
	}
}

// SetupAttendanceRoutes sets up the check-in clock and attendance rows.
func SetupAttendanceRoutes(authenticatedGroup *gin.RouterGroup, attendanceHandler *handlers.AttendanceHandler, policy *access.Policy) {
	attendanceRoutes := authenticatedGroup.Group("/attendance")
	attendanceRoutes.Use(middleware.PageAccessMiddleware(policy, access.PageAttendance))
	{
		attendanceRoutes.POST("/check-in", attendanceHandler.CheckIn)
		attendanceRoutes.POST("/check-out", attendanceHandler.CheckOut)
		attendanceRoutes.GET("/status", attendanceHandler.GetStatus)
		attendanceRoutes.GET("/records", attendanceHandler.GetRecords)
		attendanceRoutes.PATCH("/records/:id", middleware.PageAccessMiddleware(policy, access.PageStaff), attendanceHandler.UpdateRecord)
	}
}

// SetupStaffRoutes sets up the staff directory.
func SetupStaffRoutes(authenticatedGroup *gin.RouterGroup, staffHandler *handlers.StaffHandler, policy *access.Policy) {
	staffRoutes := authenticatedGroup.Group("/users")
	staffRoutes.Use(middleware.PageAccessMiddleware(policy, access.PageStaff))
	{
		staffRoutes.GET("", staffHandler.GetStaffMembers)
		staffRoutes.POST("", staffHandler.CreateStaffMember)
		staffRoutes.DELETE("/:id", staffHandler.DeleteStaffMember)
	}
}

// SetupCommentRoutes sets up staff comments. Reviewing needs the staff page.
func SetupCommentRoutes(authenticatedGroup *gin.RouterGroup, commentHandler *handlers.CommentHandler, policy *access.Policy) {
	commentRoutes := authenticatedGroup.Group("/comments")
	{
		commentRoutes.POST("", commentHandler.CreateComment)
		commentRoutes.GET("", commentHandler.GetComments)
		commentRoutes.PATCH("/:id/status", middleware.PageAccessMiddleware(policy, access.PageStaff), commentHandler.ReviewComment)
	}
}

// SetupDashboardRoutes sets up the dashboard routes.
func SetupDashboardRoutes(authenticatedGroup *gin.RouterGroup, reportHandler *handlers.ReportHandler, policy *access.Policy) {
	dashboardRoutes := authenticatedGroup.Group("/dashboard")
	dashboardRoutes.Use(middleware.PageAccessMiddleware(policy, access.PageDashboard))
	{
		dashboardRoutes.GET("/summary", reportHandler.GetDashboardSummary)
	}
}

// SetupReportRoutes sets up the report and analytics routes.
func SetupReportRoutes(authenticatedGroup *gin.RouterGroup, reportHandler *handlers.ReportHandler, policy *access.Policy) {
	reportRoutes := authenticatedGroup.Group("/reports")
	reportRoutes.Use(middleware.PageAccessMiddleware(policy, access.PageReports))
	{
		reportRoutes.GET("/attendance", reportHandler.GetAttendanceReport)
	}

	analyticsRoutes := authenticatedGroup.Group("/analytics")
	analyticsRoutes.Use(middleware.PageAccessMiddleware(policy, access.PageAnalytics))
	{
		analyticsRoutes.GET("/attendance", reportHandler.GetAttendanceAnalytics)
	}
}
