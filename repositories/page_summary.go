package repositories

import (
	"github.com/qatrack/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PageSummaryRepository handles the optional reporting table of per-page labels.
// Callers treat every operation as best-effort.
type PageSummaryRepository struct {
	tx *gorm.DB
}

// NewPageSummaryRepository creates a new page summary repository instance
func NewPageSummaryRepository() *PageSummaryRepository {
	return &PageSummaryRepository{}
}

// WithTx returns a repository bound to the given transaction
func (r *PageSummaryRepository) WithTx(tx *gorm.DB) *PageSummaryRepository {
	return &PageSummaryRepository{tx: tx}
}

// Available reports whether the summary table exists
func (r *PageSummaryRepository) Available() bool {
	return conn(r.tx).Migrator().HasTable(&models.PageSummary{})
}

// Upsert writes the summary rows, replacing existing ones
func (r *PageSummaryRepository) Upsert(rows []models.PageSummary) error {
	if len(rows) == 0 {
		return nil
	}
	return conn(r.tx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "page_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status_label", "issue_count", "updated_at"}),
	}).Create(&rows).Error
}

// DeleteByPage removes the summary row of a page
func (r *PageSummaryRepository) DeleteByPage(pageID string) error {
	return conn(r.tx).Where("page_id = ?", pageID).Delete(&models.PageSummary{}).Error
}

// DeleteByProject removes the summary rows of a project
func (r *PageSummaryRepository) DeleteByProject(projectID string) error {
	return conn(r.tx).Where("project_id = ?", projectID).Delete(&models.PageSummary{}).Error
}
