package repositories

import (
	"strings"

	"github.com/qatrack/database"
	"github.com/qatrack/models"
	"gorm.io/gorm"
)

// conn returns tx when set, otherwise the global database
func conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return database.DB
}

// ProjectRepository handles database operations for projects
type ProjectRepository struct {
	tx *gorm.DB
}

// NewProjectRepository creates a new project repository instance
func NewProjectRepository() *ProjectRepository {
	return &ProjectRepository{}
}

// WithTx returns a repository bound to the given transaction
func (r *ProjectRepository) WithTx(tx *gorm.DB) *ProjectRepository {
	return &ProjectRepository{tx: tx}
}

// DB returns the database instance
func (r *ProjectRepository) DB() *gorm.DB {
	return conn(r.tx)
}

// FindByID retrieves a project by its ID
func (r *ProjectRepository) FindByID(id string) (models.Project, error) {
	var project models.Project
	result := r.DB().First(&project, "id = ?", id)
	return project, result.Error
}

// Create inserts a new project into the database
func (r *ProjectRepository) Create(project models.Project) (models.Project, error) {
	result := r.DB().Create(&project)
	return project, result.Error
}

// Update modifies an existing project
func (r *ProjectRepository) Update(project models.Project) error {
	result := r.DB().Save(&project)
	return result.Error
}

// Exists checks if a project exists
func (r *ProjectRepository) Exists(id string) (bool, error) {
	var count int64
	err := r.DB().Model(&models.Project{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// IsMember reports whether the user leads the project or holds an active team assignment
func (r *ProjectRepository) IsMember(projectID, userID string) (bool, error) {
	var count int64
	err := r.DB().Model(&models.Project{}).
		Where("id = ?", projectID).
		Where(memberClause, userID, userID, false).
		Count(&count).Error
	return count > 0, err
}

const memberClause = "(lead_id = ? OR id IN (SELECT project_id FROM user_assignments WHERE user_id = ? AND is_removed = ?))"

// FindWithPagination retrieves projects with pagination, filtering and sorting
func (r *ProjectRepository) FindWithPagination(
	page, pageSize int,
	sortBy, sortOrder string,
	userID string,
	isAdmin bool,
	search string,
	status string) ([]models.Project, int64, error) {

	var projects []models.Project
	var totalCount int64

	db := r.DB().Model(&models.Project{})

	// Non-admins only see projects they lead or are on the team of
	if !isAdmin && userID != "" {
		db = db.Where(memberClause, userID, userID, false)
	}

	if search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		db = db.Where("(LOWER(title) LIKE ? OR LOWER(client_name) LIKE ?)", searchPattern, searchPattern)
	}

	if status != "" {
		db = db.Where("status = ?", status)
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize

	orderString := sortBy + " " + sortOrder
	if err := db.Order(orderString).Limit(pageSize).Offset(offset).Find(&projects).Error; err != nil {
		return nil, 0, err
	}

	return projects, totalCount, nil
}

// Delete removes the project row. Dependent rows must already be gone.
func (r *ProjectRepository) Delete(id string) (int64, error) {
	result := r.DB().Delete(&models.Project{}, "id = ?", id)
	return result.RowsAffected, result.Error
}
