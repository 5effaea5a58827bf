package handlers

import (
	"log"

	"passitpal/internal/services"

	"github.com/gofiber/fiber/v2"
)

// NotificationHandler handles HTTP requests for notifications.
type NotificationHandler struct {
	service *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		service: service,
	}
}

// RegisterRoutes registers the notification routes with the Fiber app.
// The router is expected to already carry authentication middleware.
func (h *NotificationHandler) RegisterRoutes(router fiber.Router) {
	notificationRoutes := router.Group("/notifications")
	notificationRoutes.Get("/me", h.HandleGetMyNotifications)
	notificationRoutes.Put("/mark-all-read", h.HandleMarkAllRead)
	notificationRoutes.Put("/:id/read", h.HandleMarkRead)
	notificationRoutes.Delete("/:id", h.HandleDelete)
}

// HandleGetMyNotifications lists the caller's notifications, newest first.
func (h *NotificationHandler) HandleGetMyNotifications(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	notifications, err := h.service.GetMyNotifications(userID)
	if err != nil {
		log.Printf("Error listing notifications for user %s: %v", userID, err)
		return errorResponse(c, err)
	}
	return c.JSON(notifications)
}

// HandleMarkRead marks a single notification as read.
func (h *NotificationHandler) HandleMarkRead(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	notificationID := c.Params("id")

	notification, err := h.service.MarkRead(userID, notificationID)
	if err != nil {
		log.Printf("Error marking notification %s as read: %v", notificationID, err)
		return errorResponse(c, err)
	}
	return c.JSON(notification)
}

// HandleMarkAllRead marks every unread notification of the caller as read.
func (h *NotificationHandler) HandleMarkAllRead(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	if err := h.service.MarkAllRead(userID); err != nil {
		log.Printf("Error marking all notifications read for user %s: %v", userID, err)
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "All notifications marked as read",
	})
}

// HandleDelete removes a notification owned by the caller.
func (h *NotificationHandler) HandleDelete(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	notificationID := c.Params("id")

	if err := h.service.Delete(userID, notificationID); err != nil {
		log.Printf("Error deleting notification %s: %v", notificationID, err)
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Notification deleted",
	})
}
