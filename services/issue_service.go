package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/qatrack/dto"
	"github.com/qatrack/models"
	"github.com/qatrack/repositories"
	"gorm.io/gorm"
)

// IssueService handles business logic for issues
type IssueService struct {
	issueRepo *repositories.IssueRepository
	pageRepo  *repositories.PageRepository
	access    projectAccess
	activity  *ActivityService
}

// NewIssueService creates a new issue service instance
func NewIssueService() *IssueService {
	return &IssueService{
		issueRepo: repositories.NewIssueRepository(),
		pageRepo:  repositories.NewPageRepository(),
		access:    newProjectAccess(),
		activity:  NewActivityService(),
	}
}

// ListIssues lists the issues of a project
func (s *IssueService) ListIssues(actor dto.Actor, filter repositories.IssueFilter) ([]models.Issue, error) {
	if _, err := s.access.view(actor, filter.ProjectID); err != nil {
		return nil, err
	}
	if filter.Status != "" && !models.IssueStatus(filter.Status).IsValid() {
		return nil, validationError("invalid issue status %q", filter.Status)
	}
	return s.issueRepo.Find(filter)
}

// GetIssue retrieves one issue
func (s *IssueService) GetIssue(actor dto.Actor, issueID string) (models.Issue, error) {
	issue, err := s.issueRepo.FindByID(issueID)
	if err != nil {
		return issue, notFoundOr(err, "issue")
	}
	if _, err := s.access.view(actor, issue.ProjectID); err != nil {
		return models.Issue{}, err
	}
	return issue, nil
}

// CreateIssue creates an issue on its primary page and links every page it spans
func (s *IssueService) CreateIssue(actor dto.Actor, projectID string, req dto.CreateIssueRequest) (models.Issue, error) {
	if _, err := s.access.require(actor, projectID, models.PermManageIssues); err != nil {
		return models.Issue{}, err
	}

	var pageIDs []string
	if req.PageID != nil {
		pageIDs = append(pageIDs, *req.PageID)
	}
	pageIDs = uniqueIDs(append(pageIDs, req.PageIDs...))
	if err := s.validatePages(projectID, pageIDs); err != nil {
		return models.Issue{}, err
	}

	issue := models.Issue{
		ProjectID:    projectID,
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Status:       req.Status,
		QAStatuses:   req.QAStatuses,
		Severity:     req.Severity,
		Priority:     req.Priority,
		CustomFields: req.CustomFields,
		ReporterID:   actor.UserID,
	}
	if len(pageIDs) > 0 {
		issue.PageID = &pageIDs[0]
	}
	if issue.Status == "" {
		issue.Status = models.IssueStatusOpen
	}
	if issue.Title == "" {
		return models.Issue{}, validationError("title is required")
	}
	if !issue.Status.IsValid() {
		return models.Issue{}, validationError("invalid issue status %q", issue.Status)
	}

	err := transaction(func(tx *gorm.DB) error {
		repo := s.issueRepo.WithTx(tx)
		if err := repo.Create(&issue); err != nil {
			return fmt.Errorf("failed to create issue: %w", err)
		}
		if err := repo.AddLinks(issue.ID, pageIDs); err != nil {
			return fmt.Errorf("failed to link pages: %w", err)
		}
		return s.activity.Record(tx, actor, ActionCreate, "issue", issue.ID, map[string]interface{}{
			"project_id": projectID,
			"page_ids":   pageIDs,
		})
	})
	if err != nil {
		return models.Issue{}, err
	}
	return s.issueRepo.FindByID(issue.ID)
}

// UpdateIssue edits an issue. The edit is rejected with ErrConflict when the
// stored issue changed after req.ExpectedUpdatedAt.
func (s *IssueService) UpdateIssue(actor dto.Actor, issueID string, req dto.UpdateIssueRequest) (models.Issue, error) {
	current, err := s.issueRepo.FindByID(issueID)
	if err != nil {
		return models.Issue{}, notFoundOr(err, "issue")
	}
	if _, err := s.access.require(actor, current.ProjectID, models.PermManageIssues); err != nil {
		return models.Issue{}, err
	}
	if req.PageIDs != nil {
		req.PageIDs = uniqueIDs(req.PageIDs)
		if err := s.validatePages(current.ProjectID, req.PageIDs); err != nil {
			return models.Issue{}, err
		}
	}

	var issue models.Issue
	err = transaction(func(tx *gorm.DB) error {
		repo := s.issueRepo.WithTx(tx)
		var err error
		// The row lock makes a concurrent edit wait and then see our UpdatedAt
		if issue, err = repo.FindByIDForUpdate(issueID); err != nil {
			return notFoundOr(err, "issue")
		}
		if !sameInstant(issue.UpdatedAt, req.ExpectedUpdatedAt) {
			return newError(ErrConflict, "this issue was modified by another user; reload and try again")
		}

		if req.Title != nil {
			issue.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			issue.Description = *req.Description
		}
		if req.Status != nil {
			issue.Status = *req.Status
		}
		if req.QAStatuses != nil {
			issue.QAStatuses = req.QAStatuses
		}
		if req.Severity != nil {
			issue.Severity = *req.Severity
		}
		if req.Priority != nil {
			issue.Priority = *req.Priority
		}
		if req.CustomFields != nil {
			issue.CustomFields = req.CustomFields
		}
		if issue.Title == "" {
			return validationError("title is required")
		}
		if !issue.Status.IsValid() {
			return validationError("invalid issue status %q", issue.Status)
		}

		if req.PageIDs != nil {
			if err := repo.ReplaceLinks(issue.ID, req.PageIDs); err != nil {
				return fmt.Errorf("failed to update page links: %w", err)
			}
			if issue.PageID == nil || !contains(req.PageIDs, *issue.PageID) {
				issue.PageID = nil
				if len(req.PageIDs) > 0 {
					issue.PageID = &req.PageIDs[0]
				}
			}
		}

		issue.PageLinks = nil
		if err := repo.Save(&issue); err != nil {
			return fmt.Errorf("failed to update issue: %w", err)
		}
		return s.activity.Record(tx, actor, ActionUpdate, "issue", issue.ID, map[string]interface{}{
			"status": issue.Status,
		})
	})
	if err != nil {
		return models.Issue{}, err
	}
	return s.issueRepo.FindByID(issueID)
}

// LinkPages attaches an issue to more pages of its project
func (s *IssueService) LinkPages(actor dto.Actor, issueID string, pageIDs []string) (models.Issue, error) {
	issue, err := s.issueRepo.FindByID(issueID)
	if err != nil {
		return models.Issue{}, notFoundOr(err, "issue")
	}
	if _, err := s.access.require(actor, issue.ProjectID, models.PermManageIssues); err != nil {
		return models.Issue{}, err
	}
	pageIDs = uniqueIDs(pageIDs)
	if len(pageIDs) == 0 {
		return models.Issue{}, validationError("select at least one page")
	}
	if err := s.validatePages(issue.ProjectID, pageIDs); err != nil {
		return models.Issue{}, err
	}

	err = transaction(func(tx *gorm.DB) error {
		repo := s.issueRepo.WithTx(tx)
		if err := repo.AddLinks(issue.ID, pageIDs); err != nil {
			return fmt.Errorf("failed to link pages: %w", err)
		}
		if issue.PageID == nil {
			issue.PageID = &pageIDs[0]
			issue.PageLinks = nil
			if err := repo.Save(&issue); err != nil {
				return fmt.Errorf("failed to set primary page: %w", err)
			}
		}
		return s.activity.Record(tx, actor, ActionUpdate, "issue", issue.ID, map[string]interface{}{
			"linked_page_ids": pageIDs,
		})
	})
	if err != nil {
		return models.Issue{}, err
	}
	return s.issueRepo.FindByID(issueID)
}

// DeleteIssue removes an issue and its page links
func (s *IssueService) DeleteIssue(actor dto.Actor, issueID string) error {
	issue, err := s.issueRepo.FindByID(issueID)
	if err != nil {
		return notFoundOr(err, "issue")
	}
	if _, err := s.access.require(actor, issue.ProjectID, models.PermManageIssues); err != nil {
		return err
	}
	return transaction(func(tx *gorm.DB) error {
		if err := s.issueRepo.WithTx(tx).DeleteByIDs([]string{issue.ID}); err != nil {
			return fmt.Errorf("failed to delete issue: %w", err)
		}
		return s.activity.Record(tx, actor, ActionDelete, "issue", issue.ID, map[string]interface{}{
			"title": issue.Title,
		})
	})
}

func (s *IssueService) validatePages(projectID string, pageIDs []string) error {
	if len(pageIDs) == 0 {
		return nil
	}
	pages, err := s.pageRepo.FindByIDsInProject(projectID, pageIDs)
	if err != nil {
		return fmt.Errorf("failed to load pages: %w", err)
	}
	if len(pages) != len(pageIDs) {
		return validationError("one or more pages do not belong to this project")
	}
	return nil
}

// sameInstant compares timestamps at the precision the database keeps
func sameInstant(a, b time.Time) bool {
	return a.Truncate(time.Microsecond).Equal(b.Truncate(time.Microsecond))
}
