package dto

import (
	"github.com/qatrack/models"
)

// PageRequest is the structure for page creation/update requests
type PageRequest struct {
	Name       string  `json:"name" binding:"required"`
	URL        string  `json:"url"`
	ScreenName string  `json:"screenName"`
	PageNumber *string `json:"pageNumber"`
}

// RoleSet is an independently nullable (AT tester, FT tester, QA) triple
type RoleSet struct {
	AtTesterID *string `json:"atTesterId"`
	FtTesterID *string `json:"ftTesterId"`
	QAID       *string `json:"qaId"`
}

// IsEmpty reports whether no role was supplied
func (r RoleSet) IsEmpty() bool {
	return r.AtTesterID == nil && r.FtTesterID == nil && r.QAID == nil
}

// IDs returns the supplied user IDs
func (r RoleSet) IDs() []string {
	var ids []string
	for _, id := range []*string{r.AtTesterID, r.FtTesterID, r.QAID} {
		if id != nil {
			ids = append(ids, *id)
		}
	}
	return ids
}

// AssignPageRequest assigns roles and environments to one page. Roles holds
// the page-level defaults; EnvironmentRoles holds per-environment overrides,
// and an environment missing from it is bound with the page-level roles.
type AssignPageRequest struct {
	RoleSet
	EnvironmentIDs   []string           `json:"environmentIds"`
	EnvironmentRoles map[string]RoleSet `json:"environmentRoles"`
}

// BulkAssignRequest assigns one role triple to many pages and environments
type BulkAssignRequest struct {
	RoleSet
	PageIDs        []string `json:"pageIds" binding:"required,min=1"`
	EnvironmentIDs []string `json:"environmentIds"`
}

// QuickAssignRequest assigns one role triple to every page of a project
type QuickAssignRequest struct {
	RoleSet
	EnvironmentIDs []string `json:"environmentIds"`
}

// EnvironmentStatusRequest updates the statuses of one (page, environment) row
type EnvironmentStatusRequest struct {
	Status   *models.TestingStatus `json:"status"`
	QAStatus *models.QAStatus      `json:"qaStatus"`
}

// AssignmentResult reports what an assignment operation touched
type AssignmentResult struct {
	PagesUpdated        int   `json:"pagesUpdated"`
	EnvironmentsLinked  int   `json:"environmentsLinked"`
	EnvironmentsRemoved int64 `json:"environmentsRemoved"`
}

// PageStatusItem is one row of the aggregated page status view
type PageStatusItem struct {
	PageID       string                   `json:"pageId"`
	Name         string                   `json:"name"`
	PageNumber   *string                  `json:"pageNumber"`
	Status       string                   `json:"status"`
	StatusLabel  string                   `json:"statusLabel"`
	IssueCount   int                      `json:"issueCount"`
	Environments []models.PageEnvironment `json:"environments"`
}

// PageStatusResponse is the aggregated status view of a project
type PageStatusResponse struct {
	Pages   []PageStatusItem `json:"pages"`
	Summary map[string]int   `json:"summary"`
}

// ImportRowError describes a skipped CSV row
type ImportRowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ImportResult reports the outcome of a CSV page import
type ImportResult struct {
	Created int              `json:"created"`
	Skipped []ImportRowError `json:"skipped"`
}
