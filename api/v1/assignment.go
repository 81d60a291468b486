package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/qatrack/dto"
	"github.com/qatrack/services"
)

// AssignmentController handles page role assignment and environment status
type AssignmentController struct {
	assignmentService *services.AssignmentService
}

// NewAssignmentController creates a new assignment controller
func NewAssignmentController(assignmentService *services.AssignmentService) *AssignmentController {
	return &AssignmentController{assignmentService: assignmentService}
}

// RegisterRoutes registers assignment routes
func (ac *AssignmentController) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects")
	{
		projects.GET("/:id/status", ac.PageStatuses)
		projects.POST("/:id/assignments/bulk", ac.BulkAssign)
		projects.POST("/:id/assignments/quick", ac.QuickAssignAll)
	}

	pages := router.Group("/pages")
	{
		pages.PUT("/:id/assignment", ac.AssignPage)
		pages.PATCH("/:id/environments/:environmentId", ac.UpdateEnvironmentStatus)
	}
}

// AssignPage sets the roles and environments of one page
func (ac *AssignmentController) AssignPage(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req dto.AssignPageRequest
	if !bind(c, &req) {
		return
	}
	result, err := ac.assignmentService.AssignPage(a, c.Param("id"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, result)
}

// BulkAssign applies roles and environments to selected pages of a project
func (ac *AssignmentController) BulkAssign(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req dto.BulkAssignRequest
	if !bind(c, &req) {
		return
	}
	result, err := ac.assignmentService.BulkAssign(a, c.Param("id"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, result)
}

// QuickAssignAll applies roles and environments to every page of a project
func (ac *AssignmentController) QuickAssignAll(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req dto.QuickAssignRequest
	if !bind(c, &req) {
		return
	}
	result, err := ac.assignmentService.QuickAssignAll(a, c.Param("id"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, result)
}

// UpdateEnvironmentStatus changes the testing or QA status of one page environment
func (ac *AssignmentController) UpdateEnvironmentStatus(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req dto.EnvironmentStatusRequest
	if !bind(c, &req) {
		return
	}
	row, err := ac.assignmentService.UpdateEnvironmentStatus(a, c.Param("id"), c.Param("environmentId"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, row)
}

// PageStatuses returns the aggregated status of every page of a project
func (ac *AssignmentController) PageStatuses(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	statuses, err := ac.assignmentService.PageStatuses(a, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, statuses)
}
