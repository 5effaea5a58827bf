package repositories

import (
	"errors"
	"fmt"

	"passitpal/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMNotificationRepository is a GORM implementation of NotificationRepository.
type GORMNotificationRepository struct {
	db *gorm.DB
}

// NewGORMNotificationRepository creates a new instance of GORMNotificationRepository.
func NewGORMNotificationRepository(db *gorm.DB) *GORMNotificationRepository {
	return &GORMNotificationRepository{
		db: db,
	}
}

// Create creates a new notification in the database.
func (r *GORMNotificationRepository) Create(notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	if err := r.db.Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// GetByID retrieves a single notification by its ID from the database.
func (r *GORMNotificationRepository) GetByID(id string) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.First(&notification, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("notification with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get notification by ID %s: %w", id, err)
	}
	return &notification, nil
}

// ListByRecipient returns the recipient's notifications, newest first.
func (r *GORMNotificationRepository) ListByRecipient(recipientID string) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications for user %s: %w", recipientID, err)
	}
	return notifications, nil
}

// MarkRead flips the read flag on a single notification.
func (r *GORMNotificationRepository) MarkRead(id string) error {
	res := r.db.Model(&models.Notification{}).Where("id = ?", id).Update("read", true)
	if res.Error != nil {
		return fmt.Errorf("failed to mark notification %s read: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("notification with ID %s for read update: %w", id, ErrNotFound)
	}
	return nil
}

// MarkAllRead flips the read flag on every unread notification of the
// recipient.
func (r *GORMNotificationRepository) MarkAllRead(recipientID string) error {
	err := r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Update("read", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark notifications read for user %s: %w", recipientID, err)
	}
	return nil
}

// Delete removes a notification by its ID.
func (r *GORMNotificationRepository) Delete(id string) error {
	res := r.db.Delete(&models.Notification{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete notification %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("notification with ID %s for deletion: %w", id, ErrNotFound)
	}
	return nil
}
