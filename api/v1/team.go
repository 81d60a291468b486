package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/qatrack/dto"
	"github.com/qatrack/services"
)

// TeamController handles project team membership
type TeamController struct {
	teamService *services.TeamService
}

// NewTeamController creates a new team controller
func NewTeamController(teamService *services.TeamService) *TeamController {
	return &TeamController{teamService: teamService}
}

// RegisterRoutes registers team routes
func (tc *TeamController) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects")
	{
		projects.GET("/:id/team", tc.ListTeam)
		projects.POST("/:id/team", tc.AddMember)
		projects.DELETE("/:id/team/:assignmentId", tc.RemoveMember)
		projects.POST("/:id/team/:assignmentId/restore", tc.RestoreMember)
	}
}

// ListTeam lists the team of a project; ?includeRemoved=true adds removed members
func (tc *TeamController) ListTeam(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	team, err := tc.teamService.ListTeam(a, c.Param("id"), c.Query("includeRemoved") == "true")
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, team)
}

// AddMember adds a user to a project team
func (tc *TeamController) AddMember(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req dto.AddMemberRequest
	if !bind(c, &req) {
		return
	}
	result, err := tc.teamService.AddMember(a, c.Param("id"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	code := http.StatusOK
	if result.Outcome == services.MemberCreated {
		code = http.StatusCreated
	}
	success(c, code, result)
}

// RemoveMember soft-removes a team member
func (tc *TeamController) RemoveMember(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	result, err := tc.teamService.RemoveMember(a, c.Param("id"), c.Param("assignmentId"))
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, result)
}

// RestoreMember reactivates a removed team member
func (tc *TeamController) RestoreMember(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	assignment, err := tc.teamService.RestoreMember(a, c.Param("id"), c.Param("assignmentId"))
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, assignment)
}
