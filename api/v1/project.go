package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/qatrack/dto"
	"github.com/qatrack/services"
)

// ProjectController handles project endpoints
type ProjectController struct {
	projectService  *services.ProjectService
	activityService *services.ActivityService
}

// NewProjectController creates a new project controller
func NewProjectController(projectService *services.ProjectService) *ProjectController {
	return &ProjectController{
		projectService:  projectService,
		activityService: services.NewActivityService(),
	}
}

// RegisterRoutes registers project routes
func (pc *ProjectController) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects")
	{
		projects.GET("", pc.ListProjects)
		projects.POST("", pc.CreateProject)
		projects.GET("/:id", pc.GetProject)
		projects.PUT("/:id", pc.UpdateProject)
		projects.DELETE("/:id", pc.DeleteProject)
		projects.GET("/:id/stats", pc.GetProjectStats)
		projects.GET("/:id/activity", pc.GetProjectActivity)
		projects.POST("/:id/archive", pc.ArchiveProject)
		projects.POST("/:id/duplicate", pc.DuplicateProject)
	}
}

// ListProjects godoc
// @Summary List projects with pagination and filtering
// @Description Get all projects for admin, or only the projects a user leads or works on
// @Tags projects
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Param search query string false "Search term for project title/description/client"
// @Param status query string false "Project status"
// @Param sortBy query string false "Field to sort by (created_at, updated_at, title, status)"
// @Param sortOrder query string false "Sort order (asc or desc)"
// @Success 200 {object} dto.ProjectListResponse
// @Router /projects [get]
func (pc *ProjectController) ListProjects(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	filter := dto.ProjectFilter{
		Actor:     a,
		Search:    c.Query("search"),
		Status:    c.Query("status"),
		SortBy:    c.DefaultQuery("sortBy", "created_at"),
		SortOrder: c.DefaultQuery("sortOrder", "desc"),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "pageSize", 10),
	}

	response, err := pc.projectService.ListProjects(filter)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, response)
}

// GetProject godoc
// @Summary Get a project by ID
// @Tags projects
// @Param id path string true "Project ID"
// @Success 200 {object} dto.ProjectResponse
// @Router /projects/{id} [get]
func (pc *ProjectController) GetProject(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	project, err := pc.projectService.GetProject(a, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, dto.NewProjectResponse(project))
}

// GetProjectStats godoc
// @Summary Get project statistics
// @Description Page status counts, team composition and hours for a project
// @Tags projects
// @Param id path string true "Project ID"
// @Success 200 {object} dto.ProjectStatsResponse
// @Router /projects/{id}/stats [get]
func (pc *ProjectController) GetProjectStats(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	stats, err := pc.projectService.GetProjectStats(a, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, stats)
}

// GetProjectActivity returns the most recent activity records of a project
func (pc *ProjectController) GetProjectActivity(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	project, err := pc.projectService.GetProject(a, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	history, err := pc.activityService.History("project", project.ID, queryInt(c, "limit", 50))
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, history)
}

// CreateProject godoc
// @Summary Create a new project
// @Tags projects
// @Param project body dto.CreateProjectRequest true "Project Data"
// @Success 201 {object} dto.ProjectResponse
// @Router /projects [post]
func (pc *ProjectController) CreateProject(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req dto.CreateProjectRequest
	if !bind(c, &req) {
		return
	}

	project, err := pc.projectService.CreateProject(a, req)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusCreated, dto.NewProjectResponse(project))
}

// UpdateProject godoc
// @Summary Update a project
// @Tags projects
// @Param id path string true "Project ID"
// @Param project body dto.UpdateProjectRequest true "Project Data"
// @Success 200 {object} dto.ProjectResponse
// @Router /projects/{id} [put]
func (pc *ProjectController) UpdateProject(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req dto.UpdateProjectRequest
	if !bind(c, &req) {
		return
	}

	project, err := pc.projectService.UpdateProject(a, c.Param("id"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, dto.NewProjectResponse(project))
}

// ArchiveProject marks a project completed and archived
func (pc *ProjectController) ArchiveProject(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	project, err := pc.projectService.ArchiveProject(a, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, dto.NewProjectResponse(project))
}

// DuplicateProject copies a project with its pages and team
func (pc *ProjectController) DuplicateProject(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req dto.DuplicateProjectRequest
	if c.Request.ContentLength > 0 && !bind(c, &req) {
		return
	}

	project, err := pc.projectService.DuplicateProject(a, c.Param("id"), req.Title)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusCreated, dto.NewProjectResponse(project))
}

// DeleteProject godoc
// @Summary Delete a project
// @Description Deletes a project with its pages, issues, assets, time logs and team
// @Tags projects
// @Param id path string true "Project ID"
// @Success 200 {object} map[string]interface{}
// @Router /projects/{id} [delete]
func (pc *ProjectController) DeleteProject(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := pc.projectService.DeleteProject(a, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Project deleted successfully",
	})
}
