package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/qatrack/services"
)

// NotificationController exposes the caller's notifications
type NotificationController struct {
	notificationService *services.NotificationService
}

// NewNotificationController creates a new notification controller
func NewNotificationController() *NotificationController {
	return &NotificationController{notificationService: services.NewNotificationService()}
}

// RegisterRoutes registers notification routes
func (nc *NotificationController) RegisterRoutes(router *gin.RouterGroup) {
	notifications := router.Group("/notifications")
	{
		notifications.GET("", nc.List)
		notifications.POST("/:id/read", nc.MarkRead)
	}
}

// List returns the caller's notifications; ?unread=true keeps unread ones only
func (nc *NotificationController) List(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	list, err := nc.notificationService.List(a, c.Query("unread") == "true")
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, list)
}

// MarkRead marks one notification as read
func (nc *NotificationController) MarkRead(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := nc.notificationService.MarkRead(a, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Notification marked as read",
	})
}
