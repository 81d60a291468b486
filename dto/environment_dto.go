package dto

import (
	"strings"
	"time"

	"github.com/qatrack/models"
)

// EnvironmentRequest creates or renames a shared testing environment
type EnvironmentRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}

// Normalized trims surrounding whitespace from the name and description
func (r EnvironmentRequest) Normalized() EnvironmentRequest {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	return r
}

type EnvironmentResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewEnvironmentResponse maps an environment model to its response DTO
func NewEnvironmentResponse(env models.Environment) EnvironmentResponse {
	return EnvironmentResponse{
		ID:          env.ID,
		Name:        env.Name,
		Description: env.Description,
		CreatedAt:   env.CreatedAt,
		UpdatedAt:   env.UpdatedAt,
	}
}

// EnvironmentListResponse wraps a list of environments
type EnvironmentListResponse struct {
	Environments []EnvironmentResponse `json:"environments"`
	Total        int                   `json:"total"`
}

// NewEnvironmentListResponse maps environments in order
func NewEnvironmentListResponse(envs []models.Environment) EnvironmentListResponse {
	list := EnvironmentListResponse{Environments: make([]EnvironmentResponse, 0, len(envs)), Total: len(envs)}
	for _, env := range envs {
		list.Environments = append(list.Environments, NewEnvironmentResponse(env))
	}
	return list
}
