package models

import (
	"time"

	"gorm.io/gorm"
)

// Page represents a screen under test. The role columns are the page-level
// defaults used when an environment row carries no override.
type Page struct {
	ID         string    `json:"id" gorm:"primaryKey;type:uuid"`
	ProjectID  string    `json:"projectId" gorm:"type:uuid;not null;index"`
	Name       string    `json:"name" gorm:"not null"`
	URL        string    `json:"url" gorm:"default:null"`
	ScreenName string    `json:"screenName" gorm:"default:null"`
	PageNumber *string   `json:"pageNumber" gorm:"default:null"`
	AtTesterID *string   `json:"atTesterId" gorm:"type:uuid;index"`
	FtTesterID *string   `json:"ftTesterId" gorm:"type:uuid;index"`
	QAID       *string   `json:"qaId" gorm:"column:qa_id;type:uuid;index"`
	CreatedBy  string    `json:"createdBy" gorm:"type:uuid;default:null"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	// Relations
	Environments []PageEnvironment `json:"environments,omitempty" gorm:"foreignKey:PageID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate assigns a UUID when none was provided
func (p *Page) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// TestingStatus is the testing progress of one page on one environment
type TestingStatus string

const (
	TestingNotStarted  TestingStatus = "not_started"
	TestingInProgress  TestingStatus = "in_progress"
	TestingCompleted   TestingStatus = "completed"
	TestingOnHold      TestingStatus = "on_hold"
	TestingNeedsReview TestingStatus = "needs_review"
	TestingInFixing    TestingStatus = "in_fixing"
)

// IsValid reports whether s is a known testing status
func (s TestingStatus) IsValid() bool {
	switch s {
	case TestingNotStarted, TestingInProgress, TestingCompleted, TestingOnHold,
		TestingNeedsReview, TestingInFixing:
		return true
	}
	return false
}

// QAStatus is the review state of one page on one environment
type QAStatus string

const (
	QAPending   QAStatus = "pending"
	QANA        QAStatus = "na"
	QACompleted QAStatus = "completed"
)

// IsValid reports whether s is a known QA status
func (s QAStatus) IsValid() bool {
	switch s {
	case QAPending, QANA, QACompleted:
		return true
	}
	return false
}

// PageEnvironment binds a page to an environment with its own role holders
// and statuses. At most one row exists per (page, environment) pair.
type PageEnvironment struct {
	PageID        string        `json:"pageId" gorm:"primaryKey;type:uuid"`
	EnvironmentID string        `json:"environmentId" gorm:"primaryKey;type:uuid;index"`
	AtTesterID    *string       `json:"atTesterId" gorm:"type:uuid;index"`
	FtTesterID    *string       `json:"ftTesterId" gorm:"type:uuid;index"`
	QAID          *string       `json:"qaId" gorm:"column:qa_id;type:uuid;index"`
	Status        TestingStatus `json:"status" gorm:"type:varchar(20);not null;default:'not_started'"`
	QAStatus      QAStatus      `json:"qaStatus" gorm:"column:qa_status;type:varchar(20);not null;default:'pending'"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`

	// Relations
	Environment *Environment `json:"environment,omitempty" gorm:"foreignKey:EnvironmentID;constraint:OnDelete:RESTRICT"`
}

// TableName sets the table name for PageEnvironment model
func (PageEnvironment) TableName() string {
	return "page_environments"
}

// PageSummary is an optional denormalized row per page kept for reporting.
// Deployments may run without this table, so cleanups against it are best-effort.
type PageSummary struct {
	PageID      string    `json:"pageId" gorm:"primaryKey;type:uuid"`
	ProjectID   string    `json:"projectId" gorm:"type:uuid;index"`
	StatusLabel string    `json:"statusLabel" gorm:"type:varchar(32)"`
	IssueCount  int       `json:"issueCount"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
