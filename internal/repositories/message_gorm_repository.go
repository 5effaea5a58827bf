package repositories

import (
	"fmt"

	"passitpal/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMMessageRepository is a GORM implementation of MessageRepository.
type GORMMessageRepository struct {
	db *gorm.DB
}

// NewGORMMessageRepository creates a new instance of GORMMessageRepository.
func NewGORMMessageRepository(db *gorm.DB) *GORMMessageRepository {
	return &GORMMessageRepository{
		db: db,
	}
}

// Create creates a new message in the database.
func (r *GORMMessageRepository) Create(message *models.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if err := r.db.Create(message).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// ListByConversation returns the conversation's messages in creation order.
func (r *GORMMessageRepository) ListByConversation(conversationID string) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages for conversation %s: %w", conversationID, err)
	}
	return messages, nil
}

// MarkRead appends the user to ReadBy on every unread message of the
// conversation. Re-running it changes nothing.
func (r *GORMMessageRepository) MarkRead(conversationID, userID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var messages []models.Message
		if err := tx.Where("conversation_id = ?", conversationID).Find(&messages).Error; err != nil {
			return fmt.Errorf("failed to load messages for conversation %s: %w", conversationID, err)
		}
		for i := range messages {
			if messages[i].ReadByUser(userID) {
				continue
			}
			messages[i].ReadBy = append(messages[i].ReadBy, userID)
			if err := tx.Model(&messages[i]).Update("read_by", messages[i].ReadBy).Error; err != nil {
				return fmt.Errorf("failed to mark message %s read: %w", messages[i].ID, err)
			}
		}
		return nil
	})
}
