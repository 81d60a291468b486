package repositories

import (
	"github.com/qatrack/models"
	"gorm.io/gorm"
)

// ActivityRepository handles database operations for activity logs
type ActivityRepository struct {
	tx *gorm.DB
}

// NewActivityRepository creates a new activity repository instance
func NewActivityRepository() *ActivityRepository {
	return &ActivityRepository{}
}

// WithTx returns a repository bound to the given transaction
func (r *ActivityRepository) WithTx(tx *gorm.DB) *ActivityRepository {
	return &ActivityRepository{tx: tx}
}

// Create appends an activity record
func (r *ActivityRepository) Create(entry *models.ActivityLog) error {
	return conn(r.tx).Create(entry).Error
}

// FindByEntity lists the records of one entity, newest first
func (r *ActivityRepository) FindByEntity(entityType, entityID string, limit int) ([]models.ActivityLog, error) {
	var entries []models.ActivityLog
	result := conn(r.tx).Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at desc").Limit(limit).Find(&entries)
	return entries, result.Error
}
