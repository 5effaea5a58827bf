package repositories

import "passitpal/internal/models"

// MessageRepository defines the interface for message data access.
// Messages are immutable once created except for ReadBy growth.
type MessageRepository interface {
	Create(message *models.Message) error
	// ListByConversation returns the conversation's messages in
	// creation order.
	ListByConversation(conversationID string) ([]models.Message, error)
	// MarkRead adds the user to ReadBy on every message of the
	// conversation that does not contain it yet. Idempotent.
	MarkRead(conversationID, userID string) error
}
