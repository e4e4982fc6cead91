package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/HSouheill/homeservices_backend/services"
)

type NotificationController struct {
	base
	notifications *services.NotificationService
}

func NewNotificationController(notifications *services.NotificationService, log *logrus.Logger) *NotificationController {
	return &NotificationController{base: base{log: log}, notifications: notifications}
}

// GetNotifications handles GET /api/notifications?limit=
func (nc *NotificationController) GetNotifications(c echo.Context) error {
	var limit int64
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err == nil && n > 0 {
			limit = n
		}
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := nc.notifications.ListNotifications(ctx, bearerToken(c), limit)
	if err != nil {
		return nc.fail(c, err)
	}
	return ok(c, http.StatusOK, map[string]interface{}{"notifications": list})
}

// MarkNotificationRead handles POST /api/notifications/:id/read
func (nc *NotificationController) MarkNotificationRead(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := nc.notifications.MarkNotificationRead(ctx, bearerToken(c), c.Param("id")); err != nil {
		return nc.fail(c, err)
	}
	return ok(c, http.StatusOK, nil)
}

// MarkAllRead handles POST /api/notifications/read-all
func (nc *NotificationController) MarkAllRead(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	updated, err := nc.notifications.MarkAllRead(ctx, bearerToken(c))
	if err != nil {
		return nc.fail(c, err)
	}
	return ok(c, http.StatusOK, map[string]interface{}{"updated": updated})
}
