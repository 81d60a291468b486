package repositories

import (
	"github.com/qatrack/models"
	"gorm.io/gorm"
)

// TeamRepository handles database operations for project team assignments
type TeamRepository struct {
	tx *gorm.DB
}

// NewTeamRepository creates a new team repository instance
func NewTeamRepository() *TeamRepository {
	return &TeamRepository{}
}

// WithTx returns a repository bound to the given transaction
func (r *TeamRepository) WithTx(tx *gorm.DB) *TeamRepository {
	return &TeamRepository{tx: tx}
}

// FindByProject retrieves the team of a project, optionally including removed members
func (r *TeamRepository) FindByProject(projectID string, includeRemoved bool) ([]models.UserAssignment, error) {
	var assignments []models.UserAssignment
	db := conn(r.tx).Preload("User").Where("project_id = ?", projectID)
	if !includeRemoved {
		db = db.Where("is_removed = ?", false)
	}
	result := db.Order("role asc").Order("created_at asc").Find(&assignments)
	return assignments, result.Error
}

// FindMember retrieves the assignment row for (project, user, role) whether removed or not
func (r *TeamRepository) FindMember(projectID, userID string, role models.TeamRole) (models.UserAssignment, error) {
	var assignment models.UserAssignment
	result := conn(r.tx).First(&assignment, "project_id = ? AND user_id = ? AND role = ?", projectID, userID, role)
	return assignment, result.Error
}

// FindByID retrieves an assignment by its ID
func (r *TeamRepository) FindByID(id string) (models.UserAssignment, error) {
	var assignment models.UserAssignment
	result := conn(r.tx).First(&assignment, "id = ?", id)
	return assignment, result.Error
}

// Create inserts a new assignment
func (r *TeamRepository) Create(assignment *models.UserAssignment) error {
	return conn(r.tx).Omit("User", "Project").Create(assignment).Error
}

// Save writes every column of an existing assignment
func (r *TeamRepository) Save(assignment *models.UserAssignment) error {
	return conn(r.tx).Omit("User", "Project").Save(assignment).Error
}

// ActiveRoles returns the distinct roles held by active members of a project
func (r *TeamRepository) ActiveRoles(projectID string) ([]models.TeamRole, error) {
	var roles []models.TeamRole
	result := conn(r.tx).Model(&models.UserAssignment{}).
		Where("project_id = ? AND is_removed = ?", projectID, false).
		Distinct().Pluck("role", &roles)
	return roles, result.Error
}

// IsActiveMember reports whether the user holds an active assignment with the role on the project
func (r *TeamRepository) IsActiveMember(projectID, userID string, role models.TeamRole) (bool, error) {
	var count int64
	result := conn(r.tx).Model(&models.UserAssignment{}).
		Where("project_id = ? AND user_id = ? AND role = ? AND is_removed = ?", projectID, userID, role, false).
		Count(&count)
	return count > 0, result.Error
}

// AllocatedHours sums the allocated hours of active members
func (r *TeamRepository) AllocatedHours(projectID string) (float64, error) {
	var total float64
	result := conn(r.tx).Model(&models.UserAssignment{}).
		Where("project_id = ? AND is_removed = ?", projectID, false).
		Select("COALESCE(SUM(hours_allocated), 0)").Scan(&total)
	return total, result.Error
}

// DeleteByProject removes every assignment of a project
func (r *TeamRepository) DeleteByProject(projectID string) error {
	return conn(r.tx).Where("project_id = ?", projectID).Delete(&models.UserAssignment{}).Error
}
