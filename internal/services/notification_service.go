package services

import (
	"errors"
	"fmt"

	"passitpal/internal/models"
	"passitpal/internal/repositories"
)

// NotificationService persists notification records and pushes them to
// connected recipients. Persistence and push are two explicit steps: a
// failed push never rolls back, or even reports on, a successful
// persist.
type NotificationService struct {
	notificationRepo repositories.NotificationRepository
	pusher           Pusher
}

// NewNotificationService creates a new NotificationService. The pusher
// may be nil, in which case notifications are persisted only.
func NewNotificationService(notificationRepo repositories.NotificationRepository, pusher Pusher) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		pusher:           pusher,
	}
}

// CreateAndEmit persists a notification and pushes it to the recipient
// if they have an active connection. Offline recipients see the record
// on their next fetch.
func (s *NotificationService) CreateAndEmit(recipientID, senderID, notificationType, message, link string) (*models.Notification, error) {
	notification := &models.Notification{
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        notificationType,
		Message:     message,
		Link:        link,
		Read:        false,
	}
	if err := s.notificationRepo.Create(notification); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	if s.pusher != nil {
		s.pusher.DeliverToUser(recipientID, EventNewNotification, notification)
	}
	return notification, nil
}

// GetMyNotifications returns the user's notifications, newest first.
func (s *NotificationService) GetMyNotifications(userID string) ([]models.Notification, error) {
	return s.notificationRepo.ListByRecipient(userID)
}

// MarkRead flips a notification to read. Only the recipient may do so;
// marking an already-read notification again is a no-op.
func (s *NotificationService) MarkRead(userID, notificationID string) (*models.Notification, error) {
	notification, err := s.getOwned(userID, notificationID)
	if err != nil {
		return nil, err
	}
	if notification.Read {
		return notification, nil
	}
	if err := s.notificationRepo.MarkRead(notificationID); err != nil {
		return nil, err
	}
	notification.Read = true
	return notification, nil
}

// MarkAllRead flips every unread notification of the user to read.
func (s *NotificationService) MarkAllRead(userID string) error {
	return s.notificationRepo.MarkAllRead(userID)
}

// Delete removes a notification. Only the recipient may do so.
func (s *NotificationService) Delete(userID, notificationID string) error {
	if _, err := s.getOwned(userID, notificationID); err != nil {
		return err
	}
	return s.notificationRepo.Delete(notificationID)
}

func (s *NotificationService) getOwned(userID, notificationID string) (*models.Notification, error) {
	notification, err := s.notificationRepo.GetByID(notificationID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("notification not found: %w", ErrNotFound)
		}
		return nil, err
	}
	if notification.RecipientID != userID {
		return nil, fmt.Errorf("not authorized to modify this notification: %w", ErrForbidden)
	}
	return notification, nil
}
