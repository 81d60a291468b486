package repositories

import (
	"time"

	"github.com/qatrack/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PageEnvironmentRepository handles database operations for (page, environment) bindings
type PageEnvironmentRepository struct {
	tx *gorm.DB
}

// NewPageEnvironmentRepository creates a new page environment repository instance
func NewPageEnvironmentRepository() *PageEnvironmentRepository {
	return &PageEnvironmentRepository{}
}

// WithTx returns a repository bound to the given transaction
func (r *PageEnvironmentRepository) WithTx(tx *gorm.DB) *PageEnvironmentRepository {
	return &PageEnvironmentRepository{tx: tx}
}

// RoleColumns are the role binding columns shared by pages and page environments
var RoleColumns = []string{"at_tester_id", "ft_tester_id", "qa_id"}

// Upsert inserts the rows, or on an existing (page_id, environment_id) pair
// overwrites only roleColumns (every role column when none are given).
// Recorded statuses survive reassignment.
func (r *PageEnvironmentRepository) Upsert(rows []models.PageEnvironment, roleColumns ...string) error {
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		if rows[i].Status == "" {
			rows[i].Status = models.TestingNotStarted
		}
		if rows[i].QAStatus == "" {
			rows[i].QAStatus = models.QAPending
		}
	}
	if len(roleColumns) == 0 {
		roleColumns = RoleColumns
	}
	updates := append(append([]string{}, roleColumns...), "updated_at")
	return conn(r.tx).Omit("Environment").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "page_id"}, {Name: "environment_id"}},
		DoUpdates: clause.AssignmentColumns(updates),
	}).Create(&rows).Error
}

// FindByPageID retrieves the environment rows of one page
func (r *PageEnvironmentRepository) FindByPageID(pageID string) ([]models.PageEnvironment, error) {
	var rows []models.PageEnvironment
	result := conn(r.tx).Where("page_id = ?", pageID).Order("environment_id asc").Find(&rows)
	return rows, result.Error
}

// FindByPageIDs retrieves the environment rows of several pages
func (r *PageEnvironmentRepository) FindByPageIDs(pageIDs []string) ([]models.PageEnvironment, error) {
	var rows []models.PageEnvironment
	if len(pageIDs) == 0 {
		return rows, nil
	}
	result := conn(r.tx).Where("page_id IN ?", pageIDs).Find(&rows)
	return rows, result.Error
}

// Find retrieves a single (page, environment) row
func (r *PageEnvironmentRepository) Find(pageID, environmentID string) (models.PageEnvironment, error) {
	var row models.PageEnvironment
	result := conn(r.tx).First(&row, "page_id = ? AND environment_id = ?", pageID, environmentID)
	return row, result.Error
}

// DeleteByPageExcept removes the page's rows for every environment not in keep
func (r *PageEnvironmentRepository) DeleteByPageExcept(pageID string, keep []string) (int64, error) {
	db := conn(r.tx).Where("page_id = ?", pageID)
	if len(keep) > 0 {
		db = db.Where("environment_id NOT IN ?", keep)
	}
	result := db.Delete(&models.PageEnvironment{})
	return result.RowsAffected, result.Error
}

// DeleteByPageIDs removes every environment row of the given pages
func (r *PageEnvironmentRepository) DeleteByPageIDs(pageIDs []string) error {
	if len(pageIDs) == 0 {
		return nil
	}
	return conn(r.tx).Where("page_id IN ?", pageIDs).Delete(&models.PageEnvironment{}).Error
}

// UpdateStatus sets the testing and/or QA status of one row
func (r *PageEnvironmentRepository) UpdateStatus(pageID, environmentID string, updates map[string]interface{}) (int64, error) {
	updates["updated_at"] = time.Now()
	result := conn(r.tx).Model(&models.PageEnvironment{}).
		Where("page_id = ? AND environment_id = ?", pageID, environmentID).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// NullRoleForUser clears a role column wherever it references userID on pages of the project
func (r *PageEnvironmentRepository) NullRoleForUser(projectID, column, userID string) (int64, error) {
	result := conn(r.tx).Model(&models.PageEnvironment{}).
		Where(column+" = ?", userID).
		Where("page_id IN (?)", conn(r.tx).Model(&models.Page{}).Select("id").Where("project_id = ?", projectID)).
		Update(column, nil)
	return result.RowsAffected, result.Error
}
