package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActivityLog is an append-only audit record of a mutation
type ActivityLog struct {
	ID         string         `json:"id" gorm:"primaryKey;type:uuid"`
	ActorID    string         `json:"actorId" gorm:"type:uuid;index"`
	Action     string         `json:"action" gorm:"type:varchar(50);not null;index"`
	EntityType string         `json:"entityType" gorm:"type:varchar(30);not null;index:idx_activity_entity"`
	EntityID   string         `json:"entityId" gorm:"type:uuid;index:idx_activity_entity"`
	Details    datatypes.JSON `json:"details"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// BeforeCreate assigns a UUID when none was provided
func (a *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	assignID(&a.ID)
	return nil
}

// Notification is a user-facing message with an optional deep link
type Notification struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	UserID    string    `json:"userId" gorm:"type:uuid;not null;index"`
	Message   string    `json:"message" gorm:"not null"`
	Link      string    `json:"link" gorm:"default:null"`
	IsRead    bool      `json:"isRead" gorm:"default:false"`
	CreatedAt time.Time `json:"createdAt"`
}

// BeforeCreate assigns a UUID when none was provided
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	assignID(&n.ID)
	return nil
}

// TimeLog records hours a user spent on a project, optionally on one page
type TimeLog struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid"`
	ProjectID   string    `json:"projectId" gorm:"type:uuid;not null;index"`
	UserID      string    `json:"userId" gorm:"type:uuid;not null;index"`
	PageID      *string   `json:"pageId" gorm:"type:uuid;index"`
	Hours       float64   `json:"hours" gorm:"not null"`
	Description string    `json:"description" gorm:"default:null"`
	LogDate     time.Time `json:"logDate" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt"`
}

// BeforeCreate assigns a UUID when none was provided
func (t *TimeLog) BeforeCreate(tx *gorm.DB) error {
	assignID(&t.ID)
	return nil
}
