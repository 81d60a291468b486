package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/qatrack/dto"
	"github.com/qatrack/services"
)

// EnvironmentController handles environment-related API endpoints
type EnvironmentController struct {
	environmentService *services.EnvironmentService
}

// NewEnvironmentController creates a new environment controller
func NewEnvironmentController() *EnvironmentController {
	return &EnvironmentController{
		environmentService: services.NewEnvironmentService(),
	}
}

// RegisterRoutes registers environment routes
func (ec *EnvironmentController) RegisterRoutes(router *gin.RouterGroup) {
	environments := router.Group("/environments")
	{
		environments.GET("", ec.ListEnvironments)
		environments.GET("/:id", ec.GetEnvironment)
		environments.POST("", ec.CreateEnvironment)
		environments.PUT("/:id", ec.UpdateEnvironment)
		environments.DELETE("/:id", ec.DeleteEnvironment)
	}
}

// ListEnvironments retrieves all environments
func (ec *EnvironmentController) ListEnvironments(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	environments, err := ec.environmentService.ListEnvironments(a)
	if err != nil {
		handleError(ctx, err)
		return
	}

	success(ctx, http.StatusOK, dto.NewEnvironmentListResponse(environments))
}

// GetEnvironment retrieves a specific environment
func (ec *EnvironmentController) GetEnvironment(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	env, err := ec.environmentService.GetEnvironmentDetail(a, ctx.Param("id"))
	if err != nil {
		handleError(ctx, err)
		return
	}
	success(ctx, http.StatusOK, dto.NewEnvironmentResponse(env))
}

// CreateEnvironment creates a new environment
func (ec *EnvironmentController) CreateEnvironment(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	var req dto.EnvironmentRequest
	if !bind(ctx, &req) {
		return
	}
	env, err := ec.environmentService.CreateEnvironment(a, req)
	if err != nil {
		handleError(ctx, err)
		return
	}
	success(ctx, http.StatusCreated, dto.NewEnvironmentResponse(env))
}

// UpdateEnvironment updates an existing environment
func (ec *EnvironmentController) UpdateEnvironment(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	var req dto.EnvironmentRequest
	if !bind(ctx, &req) {
		return
	}
	env, err := ec.environmentService.UpdateEnvironment(a, ctx.Param("id"), req)
	if err != nil {
		handleError(ctx, err)
		return
	}
	success(ctx, http.StatusOK, dto.NewEnvironmentResponse(env))
}

// DeleteEnvironment deletes an environment no page links to
func (ec *EnvironmentController) DeleteEnvironment(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	if err := ec.environmentService.DeleteEnvironment(a, ctx.Param("id")); err != nil {
		handleError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Environment deleted successfully",
	})
}
