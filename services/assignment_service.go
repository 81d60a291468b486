package services

import (
	"fmt"

	"github.com/qatrack/dto"
	"github.com/qatrack/lib/notifier"
	"github.com/qatrack/models"
	"github.com/qatrack/repositories"
	"github.com/qatrack/status"
	"gorm.io/gorm"
)

// AssignmentService binds testers and QA to pages and (page, environment) pairs
// and derives the aggregated page status
type AssignmentService struct {
	pageRepo    *repositories.PageRepository
	pageEnvRepo *repositories.PageEnvironmentRepository
	envRepo     *repositories.EnvironmentRepository
	userRepo    *repositories.UserRepository
	teamRepo    *repositories.TeamRepository
	issueRepo   *repositories.IssueRepository
	access      projectAccess
	activity    *ActivityService
	notifier    *notifier.Notifier
	policy      status.Policy
}

// NewAssignmentService creates a new assignment service instance. policy is
// used when the project team holds none of the page-bound roles.
func NewAssignmentService(policy status.Policy, n *notifier.Notifier) *AssignmentService {
	return &AssignmentService{
		pageRepo:    repositories.NewPageRepository(),
		pageEnvRepo: repositories.NewPageEnvironmentRepository(),
		envRepo:     repositories.NewEnvironmentRepository(),
		userRepo:    repositories.NewUserRepository(),
		teamRepo:    repositories.NewTeamRepository(),
		issueRepo:   repositories.NewIssueRepository(),
		access:      newProjectAccess(),
		activity:    NewActivityService(),
		notifier:    n,
		policy:      policy,
	}
}

// AssignPage overwrites the page-level role defaults (nulling roles that were
// not supplied) and makes the page's environment rows exactly
// req.EnvironmentIDs. Rows for environments left out are deleted together with
// any status recorded on them.
func (s *AssignmentService) AssignPage(actor dto.Actor, pageID string, req dto.AssignPageRequest) (dto.AssignmentResult, error) {
	var result dto.AssignmentResult

	page, err := s.pageRepo.FindByID(pageID)
	if err != nil {
		return result, notFoundOr(err, "page")
	}
	project, err := s.access.require(actor, page.ProjectID, models.PermManageAssignments)
	if err != nil {
		return result, err
	}

	envIDs := uniqueIDs(req.EnvironmentIDs)
	userIDs := req.RoleSet.IDs()
	for envID, roles := range req.EnvironmentRoles {
		if !contains(envIDs, envID) {
			return result, validationError("environment %s has roles but is not selected", envID)
		}
		userIDs = append(userIDs, roles.IDs()...)
	}
	if err := s.validateUsers(userIDs); err != nil {
		return result, err
	}
	if err := s.validateEnvironments(envIDs); err != nil {
		return result, err
	}

	rows := make([]models.PageEnvironment, 0, len(envIDs))
	for _, envID := range envIDs {
		roles := req.RoleSet
		if override, ok := req.EnvironmentRoles[envID]; ok {
			roles = override
		}
		rows = append(rows, models.PageEnvironment{
			PageID:        page.ID,
			EnvironmentID: envID,
			AtTesterID:    roles.AtTesterID,
			FtTesterID:    roles.FtTesterID,
			QAID:          roles.QAID,
		})
	}

	err = transaction(func(tx *gorm.DB) error {
		if err := s.pageRepo.WithTx(tx).SetRoles(page.ID, req.AtTesterID, req.FtTesterID, req.QAID); err != nil {
			return fmt.Errorf("failed to update page roles: %w", err)
		}
		pageEnvRepo := s.pageEnvRepo.WithTx(tx)
		if err := pageEnvRepo.Upsert(rows); err != nil {
			return fmt.Errorf("failed to link environments: %w", err)
		}
		removed, err := pageEnvRepo.DeleteByPageExcept(page.ID, envIDs)
		if err != nil {
			return fmt.Errorf("failed to unlink environments: %w", err)
		}
		result = dto.AssignmentResult{PagesUpdated: 1, EnvironmentsLinked: len(rows), EnvironmentsRemoved: removed}
		s.refreshSummaries(tx, page.ProjectID)
		return s.activity.Record(tx, actor, ActionAssign, "page", page.ID, map[string]interface{}{
			"at_tester_id":    req.AtTesterID,
			"ft_tester_id":    req.FtTesterID,
			"qa_id":           req.QAID,
			"environment_ids": envIDs,
			"removed":         removed,
		})
	})
	if err != nil {
		return dto.AssignmentResult{}, err
	}

	s.notifyAssignees(project, userIDs, 1)
	return result, nil
}

// BulkAssign applies one role triple to the selected pages of a project.
// Page-level roles are updated only for the roles that were supplied, and
// every (page, environment) pair of the cross product is upserted.
func (s *AssignmentService) BulkAssign(actor dto.Actor, projectID string, req dto.BulkAssignRequest) (dto.AssignmentResult, error) {
	project, err := s.access.require(actor, projectID, models.PermManageAssignments)
	if err != nil {
		return dto.AssignmentResult{}, err
	}

	pageIDs := uniqueIDs(req.PageIDs)
	if len(pageIDs) == 0 {
		return dto.AssignmentResult{}, validationError("select at least one page")
	}
	pages, err := s.pageRepo.FindByIDsInProject(projectID, pageIDs)
	if err != nil {
		return dto.AssignmentResult{}, fmt.Errorf("failed to load pages: %w", err)
	}
	if len(pages) != len(pageIDs) {
		return dto.AssignmentResult{}, validationError("one or more pages do not belong to this project")
	}

	return s.assignMany(actor, project, pages, req.RoleSet, req.EnvironmentIDs)
}

// QuickAssignAll applies one role triple to every page of the project. With
// no environments selected only the page-level defaults are touched.
func (s *AssignmentService) QuickAssignAll(actor dto.Actor, projectID string, req dto.QuickAssignRequest) (dto.AssignmentResult, error) {
	project, err := s.access.require(actor, projectID, models.PermManageAssignments)
	if err != nil {
		return dto.AssignmentResult{}, err
	}
	pages, err := s.pageRepo.FindByProjectID(projectID)
	if err != nil {
		return dto.AssignmentResult{}, fmt.Errorf("failed to load pages: %w", err)
	}
	if len(pages) == 0 {
		return dto.AssignmentResult{}, nil
	}
	return s.assignMany(actor, project, pages, req.RoleSet, req.EnvironmentIDs)
}

// assignMany applies roles to pages and upserts the pages x environments cross
// product. A new row takes each role not supplied from its page's defaults;
// an existing row keeps it.
func (s *AssignmentService) assignMany(actor dto.Actor, project models.Project, pages []models.Page, roles dto.RoleSet, environmentIDs []string) (dto.AssignmentResult, error) {
	envIDs := uniqueIDs(environmentIDs)
	if roles.IsEmpty() && len(envIDs) == 0 {
		return dto.AssignmentResult{}, validationError("select a role or an environment to assign")
	}
	if err := s.validateUsers(roles.IDs()); err != nil {
		return dto.AssignmentResult{}, err
	}
	if err := s.validateEnvironments(envIDs); err != nil {
		return dto.AssignmentResult{}, err
	}

	updates, columns := supplied(roles)
	pageIDs := make([]string, 0, len(pages))
	rows := make([]models.PageEnvironment, 0, len(pages)*len(envIDs))
	for _, page := range pages {
		pageIDs = append(pageIDs, page.ID)
		for _, envID := range envIDs {
			rows = append(rows, models.PageEnvironment{
				PageID:        page.ID,
				EnvironmentID: envID,
				AtTesterID:    orDefault(roles.AtTesterID, page.AtTesterID),
				FtTesterID:    orDefault(roles.FtTesterID, page.FtTesterID),
				QAID:          orDefault(roles.QAID, page.QAID),
			})
		}
	}

	var result dto.AssignmentResult
	err := transaction(func(tx *gorm.DB) error {
		if err := s.pageRepo.WithTx(tx).UpdateRolesPartial(pageIDs, updates); err != nil {
			return fmt.Errorf("failed to update page roles: %w", err)
		}
		if len(rows) > 0 {
			// With no roles supplied existing rows keep their bindings.
			upsertColumns := columns
			if len(upsertColumns) == 0 {
				upsertColumns = []string{"page_id"}
			}
			if err := s.pageEnvRepo.WithTx(tx).Upsert(rows, upsertColumns...); err != nil {
				return fmt.Errorf("failed to link environments: %w", err)
			}
		}
		result = dto.AssignmentResult{PagesUpdated: len(pageIDs), EnvironmentsLinked: len(rows)}
		s.refreshSummaries(tx, project.ID)
		return s.activity.Record(tx, actor, ActionAssign, "project", project.ID, map[string]interface{}{
			"page_ids":        pageIDs,
			"environment_ids": envIDs,
			"roles":           updates,
		})
	})
	if err != nil {
		return dto.AssignmentResult{}, err
	}

	s.notifyAssignees(project, roles.IDs(), len(pageIDs))
	return result, nil
}

// UpdateEnvironmentStatus sets the testing and/or QA status of one (page, environment) row
func (s *AssignmentService) UpdateEnvironmentStatus(actor dto.Actor, pageID, environmentID string, req dto.EnvironmentStatusRequest) (models.PageEnvironment, error) {
	page, err := s.pageRepo.FindByID(pageID)
	if err != nil {
		return models.PageEnvironment{}, notFoundOr(err, "page")
	}
	if _, err := s.access.require(actor, page.ProjectID, models.PermUpdateStatus); err != nil {
		return models.PageEnvironment{}, err
	}

	updates := map[string]interface{}{}
	if req.Status != nil {
		if !req.Status.IsValid() {
			return models.PageEnvironment{}, validationError("invalid testing status %q", *req.Status)
		}
		updates["status"] = *req.Status
	}
	if req.QAStatus != nil {
		if !req.QAStatus.IsValid() {
			return models.PageEnvironment{}, validationError("invalid QA status %q", *req.QAStatus)
		}
		updates["qa_status"] = *req.QAStatus
	}
	if len(updates) == 0 {
		return models.PageEnvironment{}, validationError("status or qaStatus is required")
	}

	var row models.PageEnvironment
	err = transaction(func(tx *gorm.DB) error {
		repo := s.pageEnvRepo.WithTx(tx)
		affected, err := repo.UpdateStatus(pageID, environmentID, updates)
		if err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}
		if affected == 0 {
			return newError(ErrNotFound, "environment is not linked to this page")
		}
		if row, err = repo.Find(pageID, environmentID); err != nil {
			return err
		}
		s.refreshSummaries(tx, page.ProjectID)
		return s.activity.Record(tx, actor, ActionStatus, "page", pageID, map[string]interface{}{
			"environment_id": environmentID,
			"status":         row.Status,
			"qa_status":      row.QAStatus,
		})
	})
	return row, err
}

// PageStatuses returns every page of the project with its aggregated status.
// It only reads; the stored page summaries are refreshed by the mutations.
func (s *AssignmentService) PageStatuses(actor dto.Actor, projectID string) (dto.PageStatusResponse, error) {
	if _, err := s.access.view(actor, projectID); err != nil {
		return dto.PageStatusResponse{}, err
	}

	pages, labels, issueCounts, err := s.projectLabels(nil, projectID)
	if err != nil {
		return dto.PageStatusResponse{}, err
	}

	items := make([]dto.PageStatusItem, 0, len(pages))
	for i, p := range pages {
		items = append(items, dto.PageStatusItem{
			PageID:       p.ID,
			Name:         p.Name,
			PageNumber:   p.PageNumber,
			Status:       string(labels[i]),
			StatusLabel:  labels[i].Display(),
			IssueCount:   issueCounts[p.ID],
			Environments: p.Environments,
		})
	}

	summary := make(map[string]int)
	for label, count := range status.Summarize(labels) {
		summary[string(label)] = count
	}

	return dto.PageStatusResponse{Pages: items, Summary: summary}, nil
}

// ProjectPolicy returns the staffing policy for a project's pages
func (s *AssignmentService) ProjectPolicy(projectID string) (status.Policy, error) {
	return s.projectPolicy(nil, projectID)
}

func (s *AssignmentService) projectPolicy(tx *gorm.DB, projectID string) (status.Policy, error) {
	roles, err := s.teamRepo.WithTx(tx).ActiveRoles(projectID)
	if err != nil {
		return status.Policy{}, fmt.Errorf("failed to load team roles: %w", err)
	}
	return status.PolicyForTeam(roles, s.policy), nil
}

func orDefault(id, fallback *string) *string {
	if id != nil {
		return id
	}
	return fallback
}

// projectLabels aggregates every page of the project. A nil tx reads outside
// any transaction.
func (s *AssignmentService) projectLabels(tx *gorm.DB, projectID string) ([]models.Page, []status.Label, map[string]int, error) {
	pages, err := s.pageRepo.WithTx(tx).FindByProjectID(projectID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load pages: %w", err)
	}
	policy, err := s.projectPolicy(tx, projectID)
	if err != nil {
		return nil, nil, nil, err
	}
	issueCounts, err := s.issueRepo.WithTx(tx).CountByPage(projectID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to count issues: %w", err)
	}
	labels := make([]status.Label, len(pages))
	for i, p := range pages {
		labels[i] = status.Aggregate(status.FromPage(p), policy)
	}
	return pages, labels, issueCounts, nil
}

// refreshSummaries rewrites the stored page summaries of a project inside tx
func (s *AssignmentService) refreshSummaries(tx *gorm.DB, projectID string) {
	bestEffortSummaries(tx, "refresh", func(repo *repositories.PageSummaryRepository) error {
		pages, labels, issueCounts, err := s.projectLabels(tx, projectID)
		if err != nil {
			return err
		}
		return repo.Upsert(summaryRows(projectID, pages, labels, issueCounts))
	})
}

func (s *AssignmentService) validateUsers(ids []string) error {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil
	}
	for _, id := range ids {
		if !models.IsValidID(id) {
			return validationError("invalid user id %q", id)
		}
	}
	count, err := s.userRepo.CountExisting(ids)
	if err != nil {
		return fmt.Errorf("failed to check users: %w", err)
	}
	if int(count) != len(ids) {
		return validationError("one or more assigned users do not exist or are inactive")
	}
	return nil
}

func (s *AssignmentService) validateEnvironments(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	envs, err := s.envRepo.FindByIDs(ids)
	if err != nil {
		return fmt.Errorf("failed to load environments: %w", err)
	}
	if len(envs) != len(ids) {
		return validationError("one or more environments do not exist")
	}
	return nil
}

func (s *AssignmentService) notifyAssignees(project models.Project, userIDs []string, pages int) {
	for _, id := range uniqueIDs(userIDs) {
		s.notifier.Notify(id, notifier.TemplatePageAssigned, map[string]interface{}{
			"project": project.Title,
			"count":   pages,
		}, "/projects/"+project.ID)
	}
}

// supplied returns the page column updates and role column names for the
// roles present in r
func supplied(r dto.RoleSet) (map[string]interface{}, []string) {
	updates := map[string]interface{}{}
	var columns []string
	for i, id := range []*string{r.AtTesterID, r.FtTesterID, r.QAID} {
		if id == nil {
			continue
		}
		column := repositories.RoleColumns[i]
		updates[column] = *id
		columns = append(columns, column)
	}
	return updates, columns
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
