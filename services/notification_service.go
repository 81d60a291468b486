package services

import (
	"github.com/qatrack/dto"
	"github.com/qatrack/models"
	"github.com/qatrack/repositories"
)

// NotificationService reads and acknowledges the actor's notifications
type NotificationService struct {
	notificationRepo *repositories.NotificationRepository
}

// NewNotificationService creates a new notification service instance
func NewNotificationService() *NotificationService {
	return &NotificationService{notificationRepo: repositories.NewNotificationRepository()}
}

// List returns the actor's notifications
func (s *NotificationService) List(actor dto.Actor, unreadOnly bool) ([]models.Notification, error) {
	return s.notificationRepo.FindByUser(actor.UserID, unreadOnly)
}

// MarkRead marks one of the actor's notifications as read
func (s *NotificationService) MarkRead(actor dto.Actor, id string) error {
	rows, err := s.notificationRepo.MarkRead(actor.UserID, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return newError(ErrNotFound, "notification not found")
	}
	return nil
}
