package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/homeservices_backend/controllers"
)

// RegisterNotificationRoutes registers all notification-related routes
func RegisterNotificationRoutes(api *echo.Group, notifications *controllers.NotificationController) {
	notificationGroup := api.Group("/notifications")
	notificationGroup.GET("", notifications.GetNotifications)
	// static segment registered before the :id param
	notificationGroup.POST("/read-all", notifications.MarkAllRead)
	notificationGroup.POST("/:id/read", notifications.MarkNotificationRead)
}
