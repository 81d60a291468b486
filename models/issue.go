package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// IssueStatus represents the workflow state of an issue
type IssueStatus string

const (
	IssueStatusOpen       IssueStatus = "open"
	IssueStatusInProgress IssueStatus = "in_progress"
	IssueStatusFixed      IssueStatus = "fixed"
	IssueStatusReopened   IssueStatus = "reopened"
	IssueStatusClosed     IssueStatus = "closed"
	IssueStatusWontFix    IssueStatus = "wont_fix"
)

// IsValid reports whether s is a known issue status
func (s IssueStatus) IsValid() bool {
	switch s {
	case IssueStatusOpen, IssueStatusInProgress, IssueStatusFixed, IssueStatusReopened,
		IssueStatusClosed, IssueStatusWontFix:
		return true
	}
	return false
}

// Issue is a defect found while testing. PageID is the primary page; PageLinks
// holds every page the issue spans, the primary one included.
type Issue struct {
	ID           string                      `json:"id" gorm:"primaryKey;type:uuid"`
	ProjectID    string                      `json:"projectId" gorm:"type:uuid;not null;index"`
	PageID       *string                     `json:"pageId" gorm:"type:uuid;index"`
	Title        string                      `json:"title" gorm:"not null"`
	Description  string                      `json:"description" gorm:"type:text"` // HTML
	Status       IssueStatus                 `json:"status" gorm:"type:varchar(20);not null;default:'open';index"`
	QAStatuses   datatypes.JSONSlice[string] `json:"qaStatuses"`
	Severity     string                      `json:"severity" gorm:"type:varchar(20);default:null"`
	Priority     string                      `json:"priority" gorm:"type:varchar(20);default:null"`
	CustomFields datatypes.JSONMap           `json:"customFields"`
	ReporterID   string                      `json:"reporterId" gorm:"type:uuid;default:null"`
	CreatedAt    time.Time                   `json:"createdAt"`
	UpdatedAt    time.Time                   `json:"updatedAt"`

	// Relations
	PageLinks []IssuePage `json:"pageLinks,omitempty" gorm:"foreignKey:IssueID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate assigns a UUID when none was provided
func (i *Issue) BeforeCreate(tx *gorm.DB) error {
	assignID(&i.ID)
	return nil
}

// IssuePage links an issue to one of the pages it appears on
type IssuePage struct {
	IssueID   string    `json:"issueId" gorm:"primaryKey;type:uuid"`
	PageID    string    `json:"pageId" gorm:"primaryKey;type:uuid;index"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName sets the table name for IssuePage model
func (IssuePage) TableName() string {
	return "issue_pages"
}
