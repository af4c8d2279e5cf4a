package handlers

import (
	"net/http"

	"github.com/anonto42/aray/backend/internal/models"
	"github.com/anonto42/aray/backend/internal/service"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notifications *service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group, guards Guards) {
	g.GET("/notifications", h.GetNotifications, guards.Required)
	g.GET("/notifications/grouped", h.GetGroupedNotifications, guards.Required)
	g.GET("/notifications/unread-count", h.GetUnreadCount, guards.Required)
	g.POST("/notifications/mark-read", h.MarkAsRead, guards.Required, guards.Limit)
}

// GetNotifications returns notifications newest first
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	page, err := h.notifications.List(c.Request().Context(), getUserIDFromContext(c), pageRequest(c))
	if err != nil {
		return err
	}
	return respondPage(c, "notifications", page)
}

// GetGroupedNotifications returns notifications bucketed by age
func (h *NotificationHandler) GetGroupedNotifications(c echo.Context) error {
	grouped, err := h.notifications.Grouped(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, grouped)
}

// GetUnreadCount returns the number of unread notifications
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	count, err := h.notifications.UnreadCount(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"unread_count": count})
}

// MarkAsRead marks the listed notifications, or all of them when none are listed, as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	var req models.MarkReadRequest
	if c.Request().ContentLength != 0 {
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
	}

	updated, err := h.notifications.MarkRead(c.Request().Context(), getUserIDFromContext(c), req.NotificationIDs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Notifications marked as read",
		"updated": updated,
	})
}
