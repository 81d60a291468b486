package dto

import (
	"time"

	"github.com/qatrack/models"
)

// CreateIssueRequest creates an issue on a primary page and optional extra pages
type CreateIssueRequest struct {
	Title        string                 `json:"title" binding:"required"`
	Description  string                 `json:"description"`
	PageID       *string                `json:"pageId"`
	PageIDs      []string               `json:"pageIds"`
	Status       models.IssueStatus     `json:"status"`
	QAStatuses   []string               `json:"qaStatuses"`
	Severity     string                 `json:"severity"`
	Priority     string                 `json:"priority"`
	CustomFields map[string]interface{} `json:"customFields"`
}

// UpdateIssueRequest edits an issue. ExpectedUpdatedAt must match the stored
// value or the edit is rejected as a conflict.
type UpdateIssueRequest struct {
	Title             *string                `json:"title"`
	Description       *string                `json:"description"`
	Status            *models.IssueStatus    `json:"status"`
	QAStatuses        []string               `json:"qaStatuses"`
	Severity          *string                `json:"severity"`
	Priority          *string                `json:"priority"`
	CustomFields      map[string]interface{} `json:"customFields"`
	PageIDs           []string               `json:"pageIds"`
	ExpectedUpdatedAt time.Time              `json:"expectedUpdatedAt" binding:"required"`
}
