package models

import (
	"time"

	"gorm.io/gorm"
)

// ProjectStatus represents the lifecycle state of a project
type ProjectStatus string

const (
	ProjectStatusNotStarted ProjectStatus = "not_started"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusOnHold     ProjectStatus = "on_hold"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusCancelled  ProjectStatus = "cancelled"
)

// IsValid reports whether s is a known project status
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusNotStarted, ProjectStatusInProgress, ProjectStatusOnHold,
		ProjectStatusCompleted, ProjectStatusCancelled:
		return true
	}
	return false
}

// Project represents a testing project
type Project struct {
	ID          string        `json:"id" gorm:"primaryKey;type:uuid"`
	Title       string        `json:"title" gorm:"not null"`
	Description string        `json:"description" gorm:"default:null"`
	ClientName  string        `json:"clientName" gorm:"default:null"`
	Status      ProjectStatus `json:"status" gorm:"type:varchar(20);default:'not_started';index"`
	TotalHours  float64       `json:"totalHours" gorm:"default:0"`
	LeadID      *string       `json:"leadId" gorm:"type:uuid;index"`
	CreatedBy   string        `json:"createdBy" gorm:"type:uuid;not null"`
	ArchivedAt  *time.Time    `json:"archivedAt"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`

	// Relations
	Lead  *User  `json:"lead,omitempty" gorm:"foreignKey:LeadID;constraint:OnDelete:SET NULL"`
	Pages []Page `json:"pages,omitempty" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate assigns a UUID when none was provided
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// IsLedBy reports whether userID is the project lead
func (p Project) IsLedBy(userID string) bool {
	return p.LeadID != nil && *p.LeadID == userID
}
