package services

import (
	"fmt"
	"strings"

	"github.com/qatrack/dto"
	"github.com/qatrack/models"
	"github.com/qatrack/repositories"
	"gorm.io/gorm"
)

// PageService handles business logic for pages
type PageService struct {
	pageRepo    *repositories.PageRepository
	pageEnvRepo *repositories.PageEnvironmentRepository
	issueRepo   *repositories.IssueRepository
	timeLogRepo *repositories.TimeLogRepository
	access      projectAccess
	activity    *ActivityService
}

// NewPageService creates a new page service instance
func NewPageService() *PageService {
	return &PageService{
		pageRepo:    repositories.NewPageRepository(),
		pageEnvRepo: repositories.NewPageEnvironmentRepository(),
		issueRepo:   repositories.NewIssueRepository(),
		timeLogRepo: repositories.NewTimeLogRepository(),
		access:      newProjectAccess(),
		activity:    NewActivityService(),
	}
}

// ListPages lists the pages of a project with their environment rows
func (s *PageService) ListPages(actor dto.Actor, projectID string) ([]models.Page, error) {
	if _, err := s.access.view(actor, projectID); err != nil {
		return nil, err
	}
	return s.pageRepo.FindByProjectID(projectID)
}

// GetPage retrieves one page with its environment rows
func (s *PageService) GetPage(actor dto.Actor, pageID string) (models.Page, error) {
	page, err := s.pageRepo.FindByID(pageID)
	if err != nil {
		return page, notFoundOr(err, "page")
	}
	if _, err := s.access.view(actor, page.ProjectID); err != nil {
		return models.Page{}, err
	}
	return page, nil
}

// CreatePage adds a page to a project
func (s *PageService) CreatePage(actor dto.Actor, projectID string, req dto.PageRequest) (models.Page, error) {
	if _, err := s.access.require(actor, projectID, models.PermManagePages); err != nil {
		return models.Page{}, err
	}
	page := models.Page{
		ProjectID:  projectID,
		Name:       strings.TrimSpace(req.Name),
		URL:        strings.TrimSpace(req.URL),
		ScreenName: strings.TrimSpace(req.ScreenName),
		PageNumber: req.PageNumber,
		CreatedBy:  actor.UserID,
	}
	if page.Name == "" {
		return models.Page{}, validationError("page name is required")
	}

	err := transaction(func(tx *gorm.DB) error {
		if err := s.pageRepo.WithTx(tx).Create(&page); err != nil {
			return fmt.Errorf("failed to create page: %w", err)
		}
		return s.activity.Record(tx, actor, ActionCreate, "page", page.ID, map[string]interface{}{
			"project_id": projectID,
			"name":       page.Name,
		})
	})
	return page, err
}

// UpdatePage modifies a page's own fields. Roles and environments are changed
// through the assignment operations.
func (s *PageService) UpdatePage(actor dto.Actor, pageID string, req dto.PageRequest) (models.Page, error) {
	page, err := s.pageRepo.FindByID(pageID)
	if err != nil {
		return models.Page{}, notFoundOr(err, "page")
	}
	if _, err := s.access.require(actor, page.ProjectID, models.PermManagePages); err != nil {
		return models.Page{}, err
	}

	page.Name = strings.TrimSpace(req.Name)
	page.URL = strings.TrimSpace(req.URL)
	page.ScreenName = strings.TrimSpace(req.ScreenName)
	page.PageNumber = req.PageNumber
	if page.Name == "" {
		return models.Page{}, validationError("page name is required")
	}

	err = transaction(func(tx *gorm.DB) error {
		if err := s.pageRepo.WithTx(tx).Update(page); err != nil {
			return fmt.Errorf("failed to update page: %w", err)
		}
		return s.activity.Record(tx, actor, ActionUpdate, "page", page.ID, map[string]interface{}{
			"name": page.Name,
		})
	})
	return page, err
}

// DeletePage removes a page in one transaction together with its environment
// rows, its summary row, its issue links and the issues linked to no other page.
// Issues that span other pages survive and move their primary page.
func (s *PageService) DeletePage(actor dto.Actor, pageID string) error {
	page, err := s.pageRepo.FindByID(pageID)
	if err != nil {
		return notFoundOr(err, "page")
	}
	if _, err := s.access.require(actor, page.ProjectID, models.PermManagePages); err != nil {
		return err
	}

	return transaction(func(tx *gorm.DB) error {
		orphans, err := s.deleteCascade(tx, page.ID)
		if err != nil {
			return err
		}
		return s.activity.Record(tx, actor, ActionDelete, "page", page.ID, map[string]interface{}{
			"project_id":     page.ProjectID,
			"name":           page.Name,
			"deleted_issues": orphans,
		})
	})
}

// deleteCascade owns every dependent-row cleanup of a page delete and returns
// the IDs of the purged issues
func (s *PageService) deleteCascade(tx *gorm.DB, pageID string) ([]string, error) {
	if err := s.pageEnvRepo.WithTx(tx).DeleteByPageIDs([]string{pageID}); err != nil {
		return nil, fmt.Errorf("failed to delete page environments: %w", err)
	}
	bestEffortSummaries(tx, "page delete", func(repo *repositories.PageSummaryRepository) error {
		return repo.DeleteByPage(pageID)
	})

	issueRepo := s.issueRepo.WithTx(tx)
	orphans, err := issueRepo.OrphanedByPage(pageID)
	if err != nil {
		return nil, fmt.Errorf("failed to find orphaned issues: %w", err)
	}
	if err := issueRepo.DeleteByIDs(orphans); err != nil {
		return nil, fmt.Errorf("failed to delete orphaned issues: %w", err)
	}
	if err := issueRepo.RepointPrimaryPage(pageID); err != nil {
		return nil, fmt.Errorf("failed to move issues off the page: %w", err)
	}
	if err := issueRepo.DeleteLinksForPage(pageID); err != nil {
		return nil, fmt.Errorf("failed to delete issue links: %w", err)
	}
	if err := s.timeLogRepo.WithTx(tx).ClearPage(pageID); err != nil {
		return nil, fmt.Errorf("failed to detach time logs: %w", err)
	}

	rows, err := s.pageRepo.WithTx(tx).Delete(pageID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete page: %w", err)
	}
	if rows == 0 {
		return nil, newError(ErrNotFound, "page not found")
	}
	return orphans, nil
}
