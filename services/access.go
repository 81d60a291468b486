package services

import (
	"fmt"

	"github.com/qatrack/database"
	"github.com/qatrack/dto"
	"github.com/qatrack/models"
	"github.com/qatrack/repositories"
	"gorm.io/gorm"
)

// transaction runs fn in a single database transaction
func transaction(fn func(tx *gorm.DB) error) error {
	return database.DB.Transaction(fn)
}

// projectAccess resolves what an actor may do on a project
type projectAccess struct {
	projectRepo *repositories.ProjectRepository
}

func newProjectAccess() projectAccess {
	return projectAccess{projectRepo: repositories.NewProjectRepository()}
}

// view loads the project if the actor may see it: admins see everything,
// everyone else needs to lead it or be an active team member
func (a projectAccess) view(actor dto.Actor, projectID string) (models.Project, error) {
	if !actor.Can(models.PermViewProjects) {
		return models.Project{}, forbidden("you don't have permission to view projects")
	}
	project, err := a.projectRepo.FindByID(projectID)
	if err != nil {
		return models.Project{}, notFoundOr(err, "project")
	}
	if actor.IsAdmin() || project.IsLedBy(actor.UserID) {
		return project, nil
	}
	member, err := a.projectRepo.IsMember(projectID, actor.UserID)
	if err != nil {
		return models.Project{}, fmt.Errorf("failed to check project membership: %w", err)
	}
	if !member {
		return models.Project{}, forbidden("you don't have permission to access this project")
	}
	return project, nil
}

// require loads the project if the actor may see it and holds perm on it.
// Project-management permissions are limited to the project's lead.
func (a projectAccess) require(actor dto.Actor, projectID string, perm models.Permission) (models.Project, error) {
	project, err := a.view(actor, projectID)
	if err != nil {
		return project, err
	}
	if !actor.Can(perm) {
		return models.Project{}, forbidden("you don't have permission to perform this action")
	}
	if actor.IsAdmin() {
		return project, nil
	}
	switch perm {
	case models.PermManageProjects, models.PermManagePages, models.PermManageAssignments, models.PermManageTeam:
		if actor.Role == models.RoleProjectLead && !project.IsLedBy(actor.UserID) {
			return models.Project{}, forbidden("only the project lead can perform this action")
		}
	}
	return project, nil
}
