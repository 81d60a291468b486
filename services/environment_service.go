package services

import (
	"fmt"

	"github.com/qatrack/dto"
	"github.com/qatrack/models"
	"github.com/qatrack/repositories"
	"gorm.io/gorm"
)

// EnvironmentService handles business logic for environments. Environments
// are shared by every project.
type EnvironmentService struct {
	environmentRepo *repositories.EnvironmentRepository
	activity        *ActivityService
}

// NewEnvironmentService creates a new environment service instance
func NewEnvironmentService() *EnvironmentService {
	return &EnvironmentService{
		environmentRepo: repositories.NewEnvironmentRepository(),
		activity:        NewActivityService(),
	}
}

// ListEnvironments retrieves all environments
func (s *EnvironmentService) ListEnvironments(actor dto.Actor) ([]models.Environment, error) {
	if !actor.Can(models.PermViewProjects) {
		return nil, forbidden("you don't have permission to view environments")
	}
	return s.environmentRepo.FindAll()
}

// GetEnvironmentDetail retrieves a specific environment
func (s *EnvironmentService) GetEnvironmentDetail(actor dto.Actor, environmentID string) (models.Environment, error) {
	if !actor.Can(models.PermViewProjects) {
		return models.Environment{}, forbidden("you don't have permission to view environments")
	}
	env, err := s.environmentRepo.FindByID(environmentID)
	if err != nil {
		return env, notFoundOr(err, "environment")
	}
	return env, nil
}

// CreateEnvironment creates a new environment with a unique name
func (s *EnvironmentService) CreateEnvironment(actor dto.Actor, req dto.EnvironmentRequest) (models.Environment, error) {
	if !actor.Can(models.PermManageEnvironment) {
		return models.Environment{}, forbidden("you don't have permission to manage environments")
	}
	req = req.Normalized()
	env := models.Environment{Name: req.Name, Description: req.Description}
	if err := s.validateName(env.Name, ""); err != nil {
		return models.Environment{}, err
	}

	err := transaction(func(tx *gorm.DB) error {
		created, err := s.environmentRepo.WithTx(tx).Create(env)
		if err != nil {
			return fmt.Errorf("failed to create environment: %w", err)
		}
		env = created
		return s.activity.Record(tx, actor, ActionCreate, "environment", env.ID, map[string]interface{}{
			"name": env.Name,
		})
	})
	return env, err
}

// UpdateEnvironment updates an existing environment
func (s *EnvironmentService) UpdateEnvironment(actor dto.Actor, environmentID string, req dto.EnvironmentRequest) (models.Environment, error) {
	if !actor.Can(models.PermManageEnvironment) {
		return models.Environment{}, forbidden("you don't have permission to manage environments")
	}
	env, err := s.environmentRepo.FindByID(environmentID)
	if err != nil {
		return env, notFoundOr(err, "environment")
	}

	req = req.Normalized()
	env.Name = req.Name
	env.Description = req.Description
	if err := s.validateName(env.Name, env.ID); err != nil {
		return models.Environment{}, err
	}

	err = transaction(func(tx *gorm.DB) error {
		if err := s.environmentRepo.WithTx(tx).Update(env); err != nil {
			return fmt.Errorf("failed to update environment: %w", err)
		}
		return s.activity.Record(tx, actor, ActionUpdate, "environment", env.ID, map[string]interface{}{
			"name": env.Name,
		})
	})
	return env, err
}

// DeleteEnvironment deletes an environment that no page links to
func (s *EnvironmentService) DeleteEnvironment(actor dto.Actor, environmentID string) error {
	if !actor.Can(models.PermManageEnvironment) {
		return forbidden("you don't have permission to manage environments")
	}
	env, err := s.environmentRepo.FindByID(environmentID)
	if err != nil {
		return notFoundOr(err, "environment")
	}

	return transaction(func(tx *gorm.DB) error {
		repo := s.environmentRepo.WithTx(tx)
		links, err := repo.CountPageLinks(env.ID)
		if err != nil {
			return fmt.Errorf("failed to count page links: %w", err)
		}
		if links > 0 {
			return newError(ErrConflict, "environment %s is linked to %d page(s); unlink it first", env.Name, links)
		}
		if err := repo.Delete(env.ID); err != nil {
			return fmt.Errorf("failed to delete environment: %w", err)
		}
		return s.activity.Record(tx, actor, ActionDelete, "environment", env.ID, map[string]interface{}{
			"name": env.Name,
		})
	})
}

func (s *EnvironmentService) validateName(name, excludeID string) error {
	if name == "" {
		return validationError("environment name is required")
	}
	taken, err := s.environmentRepo.ExistsByName(name, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check environment name: %w", err)
	}
	if taken {
		return validationError("an environment named %q already exists", name)
	}
	return nil
}
