package repositories

import (
	"github.com/qatrack/models"
	"gorm.io/gorm"
)

// NotificationRepository handles database operations for notifications
type NotificationRepository struct {
	tx *gorm.DB
}

// NewNotificationRepository creates a new notification repository instance
func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

// Create inserts a notification
func (r *NotificationRepository) Create(n *models.Notification) error {
	return conn(r.tx).Create(n).Error
}

// FindByUser lists a user's notifications, unread first then newest
func (r *NotificationRepository) FindByUser(userID string, unreadOnly bool) ([]models.Notification, error) {
	var list []models.Notification
	db := conn(r.tx).Where("user_id = ?", userID)
	if unreadOnly {
		db = db.Where("is_read = ?", false)
	}
	result := db.Order("is_read asc").Order("created_at desc").Find(&list)
	return list, result.Error
}

// MarkRead marks one of the user's notifications as read
func (r *NotificationRepository) MarkRead(userID, id string) (int64, error) {
	result := conn(r.tx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}
