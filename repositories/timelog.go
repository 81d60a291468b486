package repositories

import (
	"github.com/qatrack/models"
	"gorm.io/gorm"
)

// TimeLogRepository handles database operations for time logs
type TimeLogRepository struct {
	tx *gorm.DB
}

// NewTimeLogRepository creates a new time log repository instance
func NewTimeLogRepository() *TimeLogRepository {
	return &TimeLogRepository{}
}

// WithTx returns a repository bound to the given transaction
func (r *TimeLogRepository) WithTx(tx *gorm.DB) *TimeLogRepository {
	return &TimeLogRepository{tx: tx}
}

// Create inserts a new time log
func (r *TimeLogRepository) Create(entry *models.TimeLog) error {
	return conn(r.tx).Create(entry).Error
}

// FindByProject lists time logs of a project, optionally for one user
func (r *TimeLogRepository) FindByProject(projectID, userID string) ([]models.TimeLog, error) {
	var entries []models.TimeLog
	db := conn(r.tx).Where("project_id = ?", projectID)
	if userID != "" {
		db = db.Where("user_id = ?", userID)
	}
	result := db.Order("log_date desc").Find(&entries)
	return entries, result.Error
}

// HoursByUser sums logged hours per user for a project
func (r *TimeLogRepository) HoursByUser(projectID string) (map[string]float64, error) {
	type row struct {
		UserID string
		Hours  float64
	}
	var rows []row
	result := conn(r.tx).Model(&models.TimeLog{}).
		Select("user_id, SUM(hours) AS hours").
		Where("project_id = ?", projectID).
		Group("user_id").
		Scan(&rows)
	hours := make(map[string]float64, len(rows))
	for _, r := range rows {
		hours[r.UserID] = r.Hours
	}
	return hours, result.Error
}

// ClearPage detaches time logs from a deleted page
func (r *TimeLogRepository) ClearPage(pageID string) error {
	return conn(r.tx).Model(&models.TimeLog{}).Where("page_id = ?", pageID).Update("page_id", nil).Error
}

// DeleteByProject removes every time log of a project
func (r *TimeLogRepository) DeleteByProject(projectID string) error {
	return conn(r.tx).Where("project_id = ?", projectID).Delete(&models.TimeLog{}).Error
}
