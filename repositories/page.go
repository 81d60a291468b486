package repositories

import (
	"github.com/qatrack/models"
	"gorm.io/gorm"
)

// PageRepository handles database operations for pages
type PageRepository struct {
	tx *gorm.DB
}

// NewPageRepository creates a new page repository instance
func NewPageRepository() *PageRepository {
	return &PageRepository{}
}

// WithTx returns a repository bound to the given transaction
func (r *PageRepository) WithTx(tx *gorm.DB) *PageRepository {
	return &PageRepository{tx: tx}
}

// FindByID retrieves a page with its environment rows
func (r *PageRepository) FindByID(id string) (models.Page, error) {
	var page models.Page
	result := conn(r.tx).Preload("Environments").First(&page, "id = ?", id)
	return page, result.Error
}

// FindByProjectID retrieves all pages of a project with their environment rows
func (r *PageRepository) FindByProjectID(projectID string) ([]models.Page, error) {
	var pages []models.Page
	result := conn(r.tx).Preload("Environments").
		Where("project_id = ?", projectID).
		Order("created_at asc").Order("id asc").
		Find(&pages)
	return pages, result.Error
}

// FindByIDsInProject retrieves the pages with the given IDs that belong to projectID
func (r *PageRepository) FindByIDsInProject(projectID string, ids []string) ([]models.Page, error) {
	var pages []models.Page
	if len(ids) == 0 {
		return pages, nil
	}
	result := conn(r.tx).Where("project_id = ? AND id IN ?", projectID, ids).Find(&pages)
	return pages, result.Error
}

// IDsByProject returns the IDs of every page in a project
func (r *PageRepository) IDsByProject(projectID string) ([]string, error) {
	var ids []string
	result := conn(r.tx).Model(&models.Page{}).Where("project_id = ?", projectID).Order("created_at asc").Pluck("id", &ids)
	return ids, result.Error
}

// Create inserts a new page into the database
func (r *PageRepository) Create(page *models.Page) error {
	return conn(r.tx).Omit("Environments").Create(page).Error
}

// Update modifies an existing page's own columns
func (r *PageRepository) Update(page models.Page) error {
	return conn(r.tx).Omit("Environments").Save(&page).Error
}

// SetRoles overwrites the page-level role defaults, writing NULL for nil values
func (r *PageRepository) SetRoles(pageID string, atTesterID, ftTesterID, qaID *string) error {
	return conn(r.tx).Model(&models.Page{}).Where("id = ?", pageID).Updates(map[string]interface{}{
		"at_tester_id": atTesterID,
		"ft_tester_id": ftTesterID,
		"qa_id":        qaID,
	}).Error
}

// UpdateRolesPartial sets only the supplied page-level role columns on every given page
func (r *PageRepository) UpdateRolesPartial(pageIDs []string, updates map[string]interface{}) error {
	if len(pageIDs) == 0 || len(updates) == 0 {
		return nil
	}
	return conn(r.tx).Model(&models.Page{}).Where("id IN ?", pageIDs).Updates(updates).Error
}

// NullRoleForUser clears a page-level role column wherever it references userID in the project
func (r *PageRepository) NullRoleForUser(projectID, column, userID string) (int64, error) {
	result := conn(r.tx).Model(&models.Page{}).
		Where("project_id = ? AND "+column+" = ?", projectID, userID).
		Update(column, nil)
	return result.RowsAffected, result.Error
}

// Delete removes a page row
func (r *PageRepository) Delete(id string) (int64, error) {
	result := conn(r.tx).Delete(&models.Page{}, "id = ?", id)
	return result.RowsAffected, result.Error
}

// DeleteByProject removes every page of a project
func (r *PageRepository) DeleteByProject(projectID string) error {
	return conn(r.tx).Where("project_id = ?", projectID).Delete(&models.Page{}).Error
}

// CountByProject counts the pages of a project
func (r *PageRepository) CountByProject(projectID string) (int64, error) {
	var count int64
	result := conn(r.tx).Model(&models.Page{}).Where("project_id = ?", projectID).Count(&count)
	return count, result.Error
}
