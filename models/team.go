package models

import (
	"time"

	"gorm.io/gorm"
)

// TeamRole is the role a user holds on a project team
type TeamRole string

const (
	TeamRoleProjectLead TeamRole = "project_lead"
	TeamRoleQA          TeamRole = "qa"
	TeamRoleATTester    TeamRole = "at_tester"
	TeamRoleFTTester    TeamRole = "ft_tester"
)

// IsValid reports whether r is a known team role
func (r TeamRole) IsValid() bool {
	switch r {
	case TeamRoleProjectLead, TeamRoleQA, TeamRoleATTester, TeamRoleFTTester:
		return true
	}
	return false
}

// RoleColumn returns the page/page_environments column holding this role,
// or "" for roles that are not bound to pages.
func (r TeamRole) RoleColumn() string {
	switch r {
	case TeamRoleATTester:
		return "at_tester_id"
	case TeamRoleFTTester:
		return "ft_tester_id"
	case TeamRoleQA:
		return "qa_id"
	}
	return ""
}

// UserAssignment is project team membership. Rows are never hard-deleted:
// removal sets IsRemoved and restore clears it on the same row.
type UserAssignment struct {
	ID             string     `json:"id" gorm:"primaryKey;type:uuid"`
	ProjectID      string     `json:"projectId" gorm:"type:uuid;not null;uniqueIndex:idx_assignment_member"`
	UserID         string     `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_assignment_member;index"`
	Role           TeamRole   `json:"role" gorm:"type:varchar(20);not null;uniqueIndex:idx_assignment_member"`
	HoursAllocated float64    `json:"hoursAllocated" gorm:"default:0"`
	AssignedBy     string     `json:"assignedBy" gorm:"type:uuid;default:null"`
	IsRemoved      bool       `json:"isRemoved" gorm:"not null;default:false;index"`
	RemovedAt      *time.Time `json:"removedAt"`
	RemovedBy      *string    `json:"removedBy" gorm:"type:uuid"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`

	// Relations
	User    *User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Project *Project `json:"-" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

// TableName sets the table name for UserAssignment model
func (UserAssignment) TableName() string {
	return "user_assignments"
}

// BeforeCreate assigns a UUID when none was provided
func (a *UserAssignment) BeforeCreate(tx *gorm.DB) error {
	assignID(&a.ID)
	return nil
}
