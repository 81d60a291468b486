package dto

import (
	"time"

	"github.com/qatrack/models"
)

// ProjectFilter represents filter criteria for projects
type ProjectFilter struct {
	Actor     Actor
	Search    string
	Status    string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// ProjectListResponse represents paginated project list response
type ProjectListResponse struct {
	Projects   []models.Project `json:"projects"`
	TotalCount int64            `json:"totalCount"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalPages int              `json:"totalPages"`
}

// CreateProjectRequest represents the request payload for creating a new project
type CreateProjectRequest struct {
	Title       string               `json:"title" binding:"required"`
	Description string               `json:"description"`
	ClientName  string               `json:"clientName"`
	Status      models.ProjectStatus `json:"status"`
	TotalHours  float64              `json:"totalHours" binding:"gte=0"`
	LeadID      *string              `json:"leadId"`
}

// UpdateProjectRequest represents the request payload for updating an existing project
type UpdateProjectRequest struct {
	Title       string               `json:"title" binding:"required"`
	Description string               `json:"description"`
	ClientName  string               `json:"clientName"`
	Status      models.ProjectStatus `json:"status"`
	TotalHours  float64              `json:"totalHours" binding:"gte=0"`
	LeadID      *string              `json:"leadId"`
}

// DuplicateProjectRequest names the copy of a project
type DuplicateProjectRequest struct {
	Title string `json:"title"`
}

// ProjectStatsResponse represents project statistics for dashboard view
type ProjectStatsResponse struct {
	Project struct {
		ID        string               `json:"id"`
		Title     string               `json:"title"`
		Status    models.ProjectStatus `json:"status"`
		CreatedAt string               `json:"createdAt"`
	} `json:"project"`

	Pages struct {
		Total      int            `json:"total"`
		ByStatus   map[string]int `json:"byStatus"`
		Completion float64        `json:"completion"`
	} `json:"pages"`

	Team struct {
		Total  int            `json:"total"`
		ByRole map[string]int `json:"byRole"`
	} `json:"team"`

	Hours ProjectHoursResponse `json:"hours"`
}

// ProjectHoursResponse compares logged hours with the budget
type ProjectHoursResponse struct {
	Budget    float64            `json:"budget"`
	Allocated float64            `json:"allocated"`
	Logged    float64            `json:"logged"`
	Remaining float64            `json:"remaining"`
	ByUser    map[string]float64 `json:"byUser"`
}

// ProjectResponse represents the standard response format for a project
type ProjectResponse struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	ClientName  string               `json:"clientName"`
	Status      models.ProjectStatus `json:"status"`
	TotalHours  float64              `json:"totalHours"`
	LeadID      *string              `json:"leadId"`
	ArchivedAt  *time.Time           `json:"archivedAt"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// NewProjectResponse maps a project model to its response DTO
func NewProjectResponse(p models.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		ClientName:  p.ClientName,
		Status:      p.Status,
		TotalHours:  p.TotalHours,
		LeadID:      p.LeadID,
		ArchivedAt:  p.ArchivedAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
