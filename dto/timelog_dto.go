package dto

import "time"

// TimeLogRequest records hours against a project
type TimeLogRequest struct {
	PageID      *string   `json:"pageId"`
	Hours       float64   `json:"hours" binding:"required,gt=0,lte=24"`
	Description string    `json:"description"`
	LogDate     time.Time `json:"logDate"`
}
