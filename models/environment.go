package models

import (
	"time"

	"gorm.io/gorm"
)

// Environment represents a reusable testing target such as "Staging-Chrome".
// Environments are not owned by a project; pages reference them through PageEnvironment.
type Environment struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid"`
	Name        string    `json:"name" gorm:"not null;uniqueIndex"`
	Description string    `json:"description" gorm:"default:null"` // Optional description
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName sets the table name for Environment model
func (Environment) TableName() string {
	return "environments"
}

// BeforeCreate assigns a UUID when none was provided
func (e *Environment) BeforeCreate(tx *gorm.DB) error {
	assignID(&e.ID)
	return nil
}
