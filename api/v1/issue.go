package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/qatrack/dto"
	"github.com/qatrack/repositories"
	"github.com/qatrack/services"
)

// IssueController handles issue endpoints
type IssueController struct {
	issueService *services.IssueService
}

// NewIssueController creates a new issue controller
func NewIssueController() *IssueController {
	return &IssueController{issueService: services.NewIssueService()}
}

type linkPagesRequest struct {
	PageIDs []string `json:"pageIds" binding:"required,min=1"`
}

// RegisterRoutes registers issue routes
func (ic *IssueController) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects")
	{
		projects.GET("/:id/issues", ic.ListIssues)
		projects.POST("/:id/issues", ic.CreateIssue)
	}

	issues := router.Group("/issues")
	{
		issues.GET("/:id", ic.GetIssue)
		issues.PUT("/:id", ic.UpdateIssue)
		issues.DELETE("/:id", ic.DeleteIssue)
		issues.POST("/:id/pages", ic.LinkPages)
	}
}

// ListIssues lists issues of a project, filtered by ?pageId= and ?status=
func (ic *IssueController) ListIssues(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	issues, err := ic.issueService.ListIssues(a, repositories.IssueFilter{
		ProjectID: c.Param("id"),
		PageID:    c.Query("pageId"),
		Status:    c.Query("status"),
	})
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, issues)
}

// GetIssue retrieves one issue
func (ic *IssueController) GetIssue(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	issue, err := ic.issueService.GetIssue(a, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, issue)
}

// CreateIssue creates an issue in a project
func (ic *IssueController) CreateIssue(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req dto.CreateIssueRequest
	if !bind(c, &req) {
		return
	}
	issue, err := ic.issueService.CreateIssue(a, c.Param("id"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusCreated, issue)
}

// UpdateIssue edits an issue; a stale expectedUpdatedAt answers 409
func (ic *IssueController) UpdateIssue(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req dto.UpdateIssueRequest
	if !bind(c, &req) {
		return
	}
	issue, err := ic.issueService.UpdateIssue(a, c.Param("id"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, issue)
}

// LinkPages attaches an issue to more pages
func (ic *IssueController) LinkPages(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req linkPagesRequest
	if !bind(c, &req) {
		return
	}
	issue, err := ic.issueService.LinkPages(a, c.Param("id"), req.PageIDs)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, issue)
}

// DeleteIssue removes an issue
func (ic *IssueController) DeleteIssue(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := ic.issueService.DeleteIssue(a, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Issue deleted successfully",
	})
}
