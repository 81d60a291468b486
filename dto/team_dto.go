package dto

import "github.com/qatrack/models"

// AddMemberRequest adds a user to a project team
type AddMemberRequest struct {
	UserID         string          `json:"userId" binding:"required"`
	Role           models.TeamRole `json:"role" binding:"required"`
	HoursAllocated float64         `json:"hoursAllocated" binding:"gte=0"`
}

// MemberResult reports what an add call did
type MemberResult struct {
	Assignment models.UserAssignment `json:"assignment"`
	Outcome    string                `json:"outcome"` // created | revived | skipped
}

// RemoveResult reports the bindings cleared by a removal
type RemoveResult struct {
	Assignment         models.UserAssignment `json:"assignment"`
	PagesCleared       int64                 `json:"pagesCleared"`
	EnvironmentCleared int64                 `json:"environmentsCleared"`
}
