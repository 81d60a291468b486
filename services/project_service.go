package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/qatrack/dto"
	"github.com/qatrack/models"
	"github.com/qatrack/repositories"
	"github.com/qatrack/status"
	"github.com/qatrack/utils"
	"gorm.io/gorm"
)

// ProjectService handles business logic for projects
type ProjectService struct {
	projectRepo *repositories.ProjectRepository
	pageRepo    *repositories.PageRepository
	pageEnvRepo *repositories.PageEnvironmentRepository
	teamRepo    *repositories.TeamRepository
	userRepo    *repositories.UserRepository
	issueRepo   *repositories.IssueRepository
	assetRepo   *repositories.AssetRepository
	timeLogRepo *repositories.TimeLogRepository
	access      projectAccess
	activity    *ActivityService
	assignments *AssignmentService
}

// NewProjectService creates a new project service instance
func NewProjectService(policy status.Policy) *ProjectService {
	return &ProjectService{
		projectRepo: repositories.NewProjectRepository(),
		pageRepo:    repositories.NewPageRepository(),
		pageEnvRepo: repositories.NewPageEnvironmentRepository(),
		teamRepo:    repositories.NewTeamRepository(),
		userRepo:    repositories.NewUserRepository(),
		issueRepo:   repositories.NewIssueRepository(),
		assetRepo:   repositories.NewAssetRepository(),
		timeLogRepo: repositories.NewTimeLogRepository(),
		access:      newProjectAccess(),
		activity:    NewActivityService(),
		assignments: NewAssignmentService(policy, nil),
	}
}

// ListProjects retrieves projects with pagination, filtering and sorting
// Admin can see all projects, everyone else only projects they lead or work on
func (s *ProjectService) ListProjects(filter dto.ProjectFilter) (dto.ProjectListResponse, error) {
	var response dto.ProjectListResponse

	if !filter.Actor.Can(models.PermViewProjects) {
		return response, forbidden("you don't have permission to view projects")
	}

	// Set defaults if not provided
	if filter.Page <= 0 {
		filter.Page = 1
	}

	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 10
	}

	if filter.SortBy == "" {
		filter.SortBy = "created_at"
	}

	if filter.SortOrder != "asc" && filter.SortOrder != "desc" {
		filter.SortOrder = "desc"
	}

	// Valid sort columns (whitelist approach for security)
	validSortColumns := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"title":      true,
		"status":     true,
	}

	if !validSortColumns[filter.SortBy] {
		filter.SortBy = "created_at"
	}

	if filter.Status != "" && !models.ProjectStatus(filter.Status).IsValid() {
		return response, validationError("invalid project status %q", filter.Status)
	}

	projects, totalCount, err := s.projectRepo.FindWithPagination(
		filter.Page,
		filter.PageSize,
		filter.SortBy,
		filter.SortOrder,
		filter.Actor.UserID,
		filter.Actor.IsAdmin(),
		filter.Search,
		filter.Status,
	)
	if err != nil {
		return response, err
	}

	totalPages := int(totalCount) / filter.PageSize
	if int(totalCount)%filter.PageSize > 0 {
		totalPages++
	}

	response = dto.ProjectListResponse{
		Projects:   projects,
		TotalCount: totalCount,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
	}

	return response, nil
}

// GetProject retrieves a project the actor may see
func (s *ProjectService) GetProject(actor dto.Actor, projectID string) (models.Project, error) {
	return s.access.view(actor, projectID)
}

// CreateProject creates a new project. A project lead creating a project
// without naming a lead becomes its lead.
func (s *ProjectService) CreateProject(actor dto.Actor, req dto.CreateProjectRequest) (models.Project, error) {
	if !actor.Can(models.PermManageProjects) {
		return models.Project{}, forbidden("you don't have permission to create projects")
	}
	project := models.Project{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		ClientName:  req.ClientName,
		Status:      req.Status,
		TotalHours:  req.TotalHours,
		LeadID:      req.LeadID,
		CreatedBy:   actor.UserID,
	}
	if project.Status == "" {
		project.Status = models.ProjectStatusNotStarted
	}
	if project.LeadID == nil && actor.Role == models.RoleProjectLead {
		project.LeadID = &actor.UserID
	}
	if err := s.validateProject(project); err != nil {
		return models.Project{}, err
	}

	err := transaction(func(tx *gorm.DB) error {
		created, err := s.projectRepo.WithTx(tx).Create(project)
		if err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		project = created
		return s.activity.Record(tx, actor, ActionCreate, "project", project.ID, map[string]interface{}{
			"title": project.Title,
		})
	})
	return project, err
}

// UpdateProject modifies an existing project
func (s *ProjectService) UpdateProject(actor dto.Actor, projectID string, req dto.UpdateProjectRequest) (models.Project, error) {
	project, err := s.access.require(actor, projectID, models.PermManageProjects)
	if err != nil {
		return models.Project{}, err
	}

	project.Title = strings.TrimSpace(req.Title)
	project.Description = req.Description
	project.ClientName = req.ClientName
	project.TotalHours = req.TotalHours
	project.LeadID = req.LeadID
	if req.Status != "" {
		project.Status = req.Status
	}
	if err := s.validateProject(project); err != nil {
		return models.Project{}, err
	}

	err = transaction(func(tx *gorm.DB) error {
		if err := s.projectRepo.WithTx(tx).Update(project); err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}
		return s.activity.Record(tx, actor, ActionUpdate, "project", project.ID, map[string]interface{}{
			"title":  project.Title,
			"status": project.Status,
		})
	})
	return project, err
}

// ArchiveProject marks a project completed and stamps the archive time
func (s *ProjectService) ArchiveProject(actor dto.Actor, projectID string) (models.Project, error) {
	project, err := s.access.require(actor, projectID, models.PermManageProjects)
	if err != nil {
		return models.Project{}, err
	}
	if project.ArchivedAt != nil {
		return models.Project{}, validationError("project is already archived")
	}

	now := time.Now()
	project.Status = models.ProjectStatusCompleted
	project.ArchivedAt = &now

	err = transaction(func(tx *gorm.DB) error {
		if err := s.projectRepo.WithTx(tx).Update(project); err != nil {
			return fmt.Errorf("failed to archive project: %w", err)
		}
		return s.activity.Record(tx, actor, ActionArchive, "project", project.ID, nil)
	})
	return project, err
}

// DuplicateProject copies a project with its pages, environment links with
// their roles (statuses start over) and its active team
func (s *ProjectService) DuplicateProject(actor dto.Actor, projectID, title string) (models.Project, error) {
	source, err := s.access.require(actor, projectID, models.PermManageProjects)
	if err != nil {
		return models.Project{}, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Copy of " + source.Title
	}

	var copied models.Project
	err = transaction(func(tx *gorm.DB) error {
		created, err := s.projectRepo.WithTx(tx).Create(models.Project{
			Title:       title,
			Description: source.Description,
			ClientName:  source.ClientName,
			Status:      models.ProjectStatusNotStarted,
			TotalHours:  source.TotalHours,
			LeadID:      source.LeadID,
			CreatedBy:   actor.UserID,
		})
		if err != nil {
			return fmt.Errorf("failed to create project copy: %w", err)
		}
		copied = created

		pageRepo := s.pageRepo.WithTx(tx)
		pages, err := pageRepo.FindByProjectID(source.ID)
		if err != nil {
			return fmt.Errorf("failed to load pages: %w", err)
		}
		var links []models.PageEnvironment
		for _, p := range pages {
			page := models.Page{
				ProjectID:  copied.ID,
				Name:       p.Name,
				URL:        p.URL,
				ScreenName: p.ScreenName,
				PageNumber: p.PageNumber,
				AtTesterID: p.AtTesterID,
				FtTesterID: p.FtTesterID,
				QAID:       p.QAID,
				CreatedBy:  actor.UserID,
			}
			if err := pageRepo.Create(&page); err != nil {
				return fmt.Errorf("failed to copy page %s: %w", p.Name, err)
			}
			for _, env := range p.Environments {
				links = append(links, models.PageEnvironment{
					PageID:        page.ID,
					EnvironmentID: env.EnvironmentID,
					AtTesterID:    env.AtTesterID,
					FtTesterID:    env.FtTesterID,
					QAID:          env.QAID,
				})
			}
		}
		if err := s.pageEnvRepo.WithTx(tx).Upsert(links); err != nil {
			return fmt.Errorf("failed to copy environment links: %w", err)
		}

		teamRepo := s.teamRepo.WithTx(tx)
		team, err := teamRepo.FindByProject(source.ID, false)
		if err != nil {
			return fmt.Errorf("failed to load team: %w", err)
		}
		for _, member := range team {
			if err := teamRepo.Create(&models.UserAssignment{
				ProjectID:      copied.ID,
				UserID:         member.UserID,
				Role:           member.Role,
				HoursAllocated: member.HoursAllocated,
				AssignedBy:     actor.UserID,
			}); err != nil {
				return fmt.Errorf("failed to copy team: %w", err)
			}
		}

		return s.activity.Record(tx, actor, ActionDuplicate, "project", copied.ID, map[string]interface{}{
			"source_id": source.ID,
			"pages":     len(pages),
			"team":      len(team),
		})
	})
	if err != nil {
		return models.Project{}, err
	}
	return copied, nil
}

// DeleteProject removes a project and everything that belongs to it in one transaction
func (s *ProjectService) DeleteProject(actor dto.Actor, projectID string) error {
	if !actor.Can(models.PermDeleteProjects) {
		return forbidden("you don't have permission to delete projects")
	}
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		return notFoundOr(err, "project")
	}

	return transaction(func(tx *gorm.DB) error {
		if err := s.deleteCascade(tx, project.ID); err != nil {
			return err
		}
		return s.activity.Record(tx, actor, ActionDelete, "project", project.ID, map[string]interface{}{
			"title": project.Title,
		})
	})
}

// deleteCascade owns every dependent-row cleanup of a project delete
func (s *ProjectService) deleteCascade(tx *gorm.DB, projectID string) error {
	if err := s.timeLogRepo.WithTx(tx).DeleteByProject(projectID); err != nil {
		return fmt.Errorf("failed to delete time logs: %w", err)
	}
	if err := s.assetRepo.WithTx(tx).DeleteByProject(projectID); err != nil {
		return fmt.Errorf("failed to delete assets: %w", err)
	}
	if err := s.issueRepo.WithTx(tx).DeleteByProject(projectID); err != nil {
		return fmt.Errorf("failed to delete issues: %w", err)
	}
	pageRepo := s.pageRepo.WithTx(tx)
	pageIDs, err := pageRepo.IDsByProject(projectID)
	if err != nil {
		return fmt.Errorf("failed to load pages: %w", err)
	}
	if err := s.pageEnvRepo.WithTx(tx).DeleteByPageIDs(pageIDs); err != nil {
		return fmt.Errorf("failed to delete page environments: %w", err)
	}
	bestEffortSummaries(tx, "project delete", func(repo *repositories.PageSummaryRepository) error {
		return repo.DeleteByProject(projectID)
	})
	if err := pageRepo.DeleteByProject(projectID); err != nil {
		return fmt.Errorf("failed to delete pages: %w", err)
	}
	if err := s.teamRepo.WithTx(tx).DeleteByProject(projectID); err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	rows, err := s.projectRepo.WithTx(tx).Delete(projectID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if rows == 0 {
		return newError(ErrNotFound, "project not found")
	}
	return nil
}

// GetProjectStats retrieves statistics for a project
func (s *ProjectService) GetProjectStats(actor dto.Actor, projectID string) (dto.ProjectStatsResponse, error) {
	project, err := s.access.view(actor, projectID)
	if err != nil {
		return dto.ProjectStatsResponse{}, err
	}

	stats := dto.ProjectStatsResponse{}
	stats.Project.ID = project.ID
	stats.Project.Title = project.Title
	stats.Project.Status = project.Status
	stats.Project.CreatedAt = project.CreatedAt.Format(time.RFC3339)

	pages, err := s.pageRepo.FindByProjectID(projectID)
	if err != nil {
		return stats, fmt.Errorf("failed to load pages: %w", err)
	}
	policy, err := s.assignments.ProjectPolicy(projectID)
	if err != nil {
		return stats, err
	}
	stats.Pages.Total = len(pages)
	stats.Pages.ByStatus = make(map[string]int)
	for _, p := range pages {
		stats.Pages.ByStatus[string(status.Aggregate(status.FromPage(p), policy))]++
	}
	stats.Pages.Completion = utils.CalculatePercentage(stats.Pages.ByStatus[string(status.Completed)], len(pages))

	team, err := s.teamRepo.FindByProject(projectID, false)
	if err != nil {
		return stats, fmt.Errorf("failed to load team: %w", err)
	}
	stats.Team.Total = len(team)
	stats.Team.ByRole = make(map[string]int)
	for _, member := range team {
		stats.Team.ByRole[string(member.Role)]++
	}

	stats.Hours, err = projectHours(project, s.teamRepo, s.timeLogRepo)
	return stats, err
}

func (s *ProjectService) validateProject(project models.Project) error {
	if project.Title == "" {
		return validationError("title is required")
	}
	if !project.Status.IsValid() {
		return validationError("invalid project status %q", project.Status)
	}
	if project.TotalHours < 0 {
		return validationError("total hours cannot be negative")
	}
	if project.LeadID != nil {
		if _, err := s.userRepo.FindByID(*project.LeadID); err != nil {
			return validationError("project lead does not exist")
		}
	}
	return nil
}
