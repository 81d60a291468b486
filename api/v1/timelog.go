package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/qatrack/dto"
	"github.com/qatrack/services"
)

// TimeLogController handles time tracking
type TimeLogController struct {
	timeLogService *services.TimeLogService
}

// NewTimeLogController creates a new time log controller
func NewTimeLogController() *TimeLogController {
	return &TimeLogController{timeLogService: services.NewTimeLogService()}
}

// RegisterRoutes registers time log routes
func (tc *TimeLogController) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects")
	{
		projects.GET("/:id/timelogs", tc.ListTimeLogs)
		projects.POST("/:id/timelogs", tc.LogTime)
		projects.GET("/:id/hours", tc.ProjectHours)
	}
}

// ListTimeLogs lists the time logs of a project visible to the caller
func (tc *TimeLogController) ListTimeLogs(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	entries, err := tc.timeLogService.ListTimeLogs(a, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, entries)
}

// LogTime records hours for the caller
func (tc *TimeLogController) LogTime(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req dto.TimeLogRequest
	if !bind(c, &req) {
		return
	}
	entry, err := tc.timeLogService.LogTime(a, c.Param("id"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusCreated, entry)
}

// ProjectHours compares logged hours with budget and allocation
func (tc *TimeLogController) ProjectHours(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	hours, err := tc.timeLogService.ProjectHours(a, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, hours)
}
