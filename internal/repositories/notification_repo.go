package repositories

import "passitpal/internal/models"

// NotificationRepository defines the interface for notification data
// access. The read flag only ever moves false to true.
type NotificationRepository interface {
	Create(notification *models.Notification) error
	GetByID(id string) (*models.Notification, error)
	ListByRecipient(recipientID string) ([]models.Notification, error)
	MarkRead(id string) error
	MarkAllRead(recipientID string) error
	Delete(id string) error
}
