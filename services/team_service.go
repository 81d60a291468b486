package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/qatrack/dto"
	"github.com/qatrack/lib/notifier"
	"github.com/qatrack/models"
	"github.com/qatrack/repositories"
	"gorm.io/gorm"
)

// Outcomes of AddMember
const (
	MemberCreated = "created"
	MemberRevived = "revived"
	MemberSkipped = "skipped"
)

// TeamService manages project team membership
type TeamService struct {
	teamRepo    *repositories.TeamRepository
	userRepo    *repositories.UserRepository
	pageRepo    *repositories.PageRepository
	pageEnvRepo *repositories.PageEnvironmentRepository
	access      projectAccess
	activity    *ActivityService
	notifier    *notifier.Notifier
}

// NewTeamService creates a new team service instance
func NewTeamService(n *notifier.Notifier) *TeamService {
	return &TeamService{
		teamRepo:    repositories.NewTeamRepository(),
		userRepo:    repositories.NewUserRepository(),
		pageRepo:    repositories.NewPageRepository(),
		pageEnvRepo: repositories.NewPageEnvironmentRepository(),
		access:      newProjectAccess(),
		activity:    NewActivityService(),
		notifier:    n,
	}
}

// ListTeam returns the team of a project
func (s *TeamService) ListTeam(actor dto.Actor, projectID string, includeRemoved bool) ([]models.UserAssignment, error) {
	if _, err := s.access.view(actor, projectID); err != nil {
		return nil, err
	}
	return s.teamRepo.FindByProject(projectID, includeRemoved)
}

// AddMember adds a user to the team with a role. An active assignment is left
// alone; a soft-removed one is revived instead of inserting a duplicate.
func (s *TeamService) AddMember(actor dto.Actor, projectID string, req dto.AddMemberRequest) (dto.MemberResult, error) {
	project, err := s.access.require(actor, projectID, models.PermManageTeam)
	if err != nil {
		return dto.MemberResult{}, err
	}
	if !req.Role.IsValid() {
		return dto.MemberResult{}, validationError("invalid team role %q", req.Role)
	}
	if req.HoursAllocated < 0 {
		return dto.MemberResult{}, validationError("allocated hours cannot be negative")
	}
	user, err := s.userRepo.FindByID(req.UserID)
	if err != nil {
		return dto.MemberResult{}, notFoundOr(err, "user")
	}
	if !user.IsActive {
		return dto.MemberResult{}, validationError("user %s is inactive", user.DisplayName())
	}

	var result dto.MemberResult
	err = transaction(func(tx *gorm.DB) error {
		repo := s.teamRepo.WithTx(tx)
		existing, err := repo.FindMember(projectID, req.UserID, req.Role)
		switch {
		case err == nil && !existing.IsRemoved:
			result = dto.MemberResult{Assignment: existing, Outcome: MemberSkipped}
			return nil
		case err == nil:
			existing.IsRemoved = false
			existing.RemovedAt = nil
			existing.RemovedBy = nil
			existing.HoursAllocated = req.HoursAllocated
			existing.AssignedBy = actor.UserID
			if err := repo.Save(&existing); err != nil {
				return fmt.Errorf("failed to revive team member: %w", err)
			}
			result = dto.MemberResult{Assignment: existing, Outcome: MemberRevived}
		case errors.Is(err, gorm.ErrRecordNotFound):
			assignment := models.UserAssignment{
				ProjectID:      projectID,
				UserID:         req.UserID,
				Role:           req.Role,
				HoursAllocated: req.HoursAllocated,
				AssignedBy:     actor.UserID,
			}
			if err := repo.Create(&assignment); err != nil {
				return fmt.Errorf("failed to add team member: %w", err)
			}
			result = dto.MemberResult{Assignment: assignment, Outcome: MemberCreated}
		default:
			return err
		}
		return s.activity.Record(tx, actor, ActionAddMember, "project", projectID, map[string]interface{}{
			"user_id": req.UserID,
			"role":    req.Role,
			"outcome": result.Outcome,
		})
	})
	if err != nil {
		return dto.MemberResult{}, err
	}

	if result.Outcome != MemberSkipped {
		s.notify(project, result.Assignment, notifier.TemplateTeamAdded)
	}
	return result, nil
}

// RemoveMember soft-removes an assignment and clears every page-level and
// environment-level binding of that user for that role in the project
func (s *TeamService) RemoveMember(actor dto.Actor, projectID, assignmentID string) (dto.RemoveResult, error) {
	project, err := s.access.require(actor, projectID, models.PermManageTeam)
	if err != nil {
		return dto.RemoveResult{}, err
	}
	assignment, err := s.findAssignment(projectID, assignmentID)
	if err != nil {
		return dto.RemoveResult{}, err
	}
	if assignment.IsRemoved {
		return dto.RemoveResult{}, validationError("team member is already removed")
	}

	var result dto.RemoveResult
	err = transaction(func(tx *gorm.DB) error {
		now := time.Now()
		assignment.IsRemoved = true
		assignment.RemovedAt = &now
		assignment.RemovedBy = &actor.UserID
		if err := s.teamRepo.WithTx(tx).Save(&assignment); err != nil {
			return fmt.Errorf("failed to remove team member: %w", err)
		}
		result.Assignment = assignment

		if column := assignment.Role.RoleColumn(); column != "" {
			if result.PagesCleared, err = s.pageRepo.WithTx(tx).NullRoleForUser(projectID, column, assignment.UserID); err != nil {
				return fmt.Errorf("failed to clear page roles: %w", err)
			}
			if result.EnvironmentCleared, err = s.pageEnvRepo.WithTx(tx).NullRoleForUser(projectID, column, assignment.UserID); err != nil {
				return fmt.Errorf("failed to clear environment roles: %w", err)
			}
		}
		return s.activity.Record(tx, actor, ActionRemoveMember, "project", projectID, map[string]interface{}{
			"user_id":              assignment.UserID,
			"role":                 assignment.Role,
			"pages_cleared":        result.PagesCleared,
			"environments_cleared": result.EnvironmentCleared,
		})
	})
	if err != nil {
		return dto.RemoveResult{}, err
	}

	s.notify(project, assignment, notifier.TemplateTeamRemoved)
	return result, nil
}

// RestoreMember reactivates the same assignment row. Bindings cleared on
// removal are not restored and must be assigned again.
func (s *TeamService) RestoreMember(actor dto.Actor, projectID, assignmentID string) (models.UserAssignment, error) {
	project, err := s.access.require(actor, projectID, models.PermManageTeam)
	if err != nil {
		return models.UserAssignment{}, err
	}
	assignment, err := s.findAssignment(projectID, assignmentID)
	if err != nil {
		return models.UserAssignment{}, err
	}
	if !assignment.IsRemoved {
		return models.UserAssignment{}, validationError("team member is not removed")
	}

	err = transaction(func(tx *gorm.DB) error {
		assignment.IsRemoved = false
		assignment.RemovedAt = nil
		assignment.RemovedBy = nil
		if err := s.teamRepo.WithTx(tx).Save(&assignment); err != nil {
			return fmt.Errorf("failed to restore team member: %w", err)
		}
		return s.activity.Record(tx, actor, ActionRestoreMember, "project", projectID, map[string]interface{}{
			"user_id": assignment.UserID,
			"role":    assignment.Role,
		})
	})
	if err != nil {
		return models.UserAssignment{}, err
	}

	s.notify(project, assignment, notifier.TemplateTeamRestored)
	return assignment, nil
}

func (s *TeamService) findAssignment(projectID, assignmentID string) (models.UserAssignment, error) {
	assignment, err := s.teamRepo.FindByID(assignmentID)
	if err != nil {
		return assignment, notFoundOr(err, "team member")
	}
	if assignment.ProjectID != projectID {
		return models.UserAssignment{}, newError(ErrNotFound, "team member not found")
	}
	return assignment, nil
}

func (s *TeamService) notify(project models.Project, assignment models.UserAssignment, template string) {
	s.notifier.Notify(assignment.UserID, template, map[string]interface{}{
		"project": project.Title,
		"role":    string(assignment.Role),
	}, "/projects/"+project.ID)
}
