package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/qatrack/lib/notifier"
	"github.com/qatrack/middleware"
	"github.com/qatrack/services"
	"github.com/qatrack/status"
)

// Dependencies are the shared services the routes are built on
type Dependencies struct {
	Auth     *services.AuthService
	Policy   status.Policy
	Notifier *notifier.Notifier
}

// RegisterRoutes registers all v1 API routes
func RegisterRoutes(router *gin.RouterGroup, deps Dependencies) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// Auth endpoints install their own middleware where needed
	NewAuthController(deps.Auth).RegisterRoutes(router)

	// Everything else requires an authenticated actor
	authRouter := router.Group("")
	authRouter.Use(middleware.AuthMiddleware(deps.Auth))

	NewProjectController(services.NewProjectService(deps.Policy)).RegisterRoutes(authRouter)
	NewPageController().RegisterRoutes(authRouter)
	NewAssignmentController(services.NewAssignmentService(deps.Policy, deps.Notifier)).RegisterRoutes(authRouter)
	NewTeamController(services.NewTeamService(deps.Notifier)).RegisterRoutes(authRouter)
	NewEnvironmentController().RegisterRoutes(authRouter)
	NewIssueController().RegisterRoutes(authRouter)
	NewAssetController().RegisterRoutes(authRouter)
	NewTimeLogController().RegisterRoutes(authRouter)
	NewNotificationController().RegisterRoutes(authRouter)
}
