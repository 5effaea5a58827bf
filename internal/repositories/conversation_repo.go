package repositories

import "passitpal/internal/models"

// ConversationRepository defines the interface for conversation data
// access. Conversations are created lazily on first contact and never
// deleted.
type ConversationRepository interface {
	Create(conversation *models.Conversation) error
	GetByID(id string) (*models.Conversation, error)
	// GetByParticipants looks up the conversation for the unordered
	// pair of user ids.
	GetByParticipants(userA, userB string) (*models.Conversation, error)
	// SetLastMessage updates the last-message back-reference and bumps
	// UpdatedAt.
	SetLastMessage(conversationID, messageID string) error
	ListByParticipant(userID string) ([]models.Conversation, error)
}
