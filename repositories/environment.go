package repositories

import (
	"github.com/qatrack/models"
	"gorm.io/gorm"
)

// EnvironmentRepository handles database operations for environments
type EnvironmentRepository struct {
	tx *gorm.DB
}

// NewEnvironmentRepository creates a new environment repository instance
func NewEnvironmentRepository() *EnvironmentRepository {
	return &EnvironmentRepository{}
}

// WithTx returns a repository bound to the given transaction
func (r *EnvironmentRepository) WithTx(tx *gorm.DB) *EnvironmentRepository {
	return &EnvironmentRepository{tx: tx}
}

// FindAll retrieves every environment ordered by name
func (r *EnvironmentRepository) FindAll() ([]models.Environment, error) {
	var environments []models.Environment
	result := conn(r.tx).Order("name asc").Find(&environments)
	return environments, result.Error
}

// FindByID retrieves an environment by its ID
func (r *EnvironmentRepository) FindByID(id string) (models.Environment, error) {
	var environment models.Environment
	result := conn(r.tx).First(&environment, "id = ?", id)
	return environment, result.Error
}

// FindByIDs retrieves the environments with the given IDs
func (r *EnvironmentRepository) FindByIDs(ids []string) ([]models.Environment, error) {
	var environments []models.Environment
	if len(ids) == 0 {
		return environments, nil
	}
	result := conn(r.tx).Where("id IN ?", ids).Find(&environments)
	return environments, result.Error
}

// FindByName retrieves an environment by its unique name
func (r *EnvironmentRepository) FindByName(name string) (models.Environment, error) {
	var environment models.Environment
	result := conn(r.tx).First(&environment, "name = ?", name)
	return environment, result.Error
}

// ExistsByName checks if an environment with the given name exists, ignoring excludeID
func (r *EnvironmentRepository) ExistsByName(name, excludeID string) (bool, error) {
	var count int64
	db := conn(r.tx).Model(&models.Environment{}).Where("name = ?", name)
	if excludeID != "" {
		db = db.Where("id <> ?", excludeID)
	}
	result := db.Count(&count)
	return count > 0, result.Error
}

// Create inserts a new environment into the database
func (r *EnvironmentRepository) Create(environment models.Environment) (models.Environment, error) {
	result := conn(r.tx).Create(&environment)
	return environment, result.Error
}

// Update modifies an existing environment
func (r *EnvironmentRepository) Update(environment models.Environment) error {
	result := conn(r.tx).Save(&environment)
	return result.Error
}

// Delete removes an environment from the database
func (r *EnvironmentRepository) Delete(id string) error {
	result := conn(r.tx).Delete(&models.Environment{}, "id = ?", id)
	return result.Error
}

// CountPageLinks counts the pages linked to an environment
func (r *EnvironmentRepository) CountPageLinks(environmentID string) (int64, error) {
	var count int64
	result := conn(r.tx).Model(&models.PageEnvironment{}).Where("environment_id = ?", environmentID).Count(&count)
	return count, result.Error
}
