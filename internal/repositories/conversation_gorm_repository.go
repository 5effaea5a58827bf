package repositories

import (
	"errors"
	"fmt"
	"time"

	"passitpal/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMConversationRepository is a GORM implementation of ConversationRepository.
type GORMConversationRepository struct {
	db *gorm.DB
}

// NewGORMConversationRepository creates a new instance of GORMConversationRepository.
func NewGORMConversationRepository(db *gorm.DB) *GORMConversationRepository {
	return &GORMConversationRepository{
		db: db,
	}
}

// Create creates a new conversation, normalizing the participant pair
// into canonical order first.
func (r *GORMConversationRepository) Create(conversation *models.Conversation) error {
	if conversation.ID == "" {
		conversation.ID = uuid.New().String()
	}
	conversation.ParticipantA, conversation.ParticipantB = models.SortParticipants(conversation.ParticipantA, conversation.ParticipantB)
	if err := r.db.Create(conversation).Error; err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}

// GetByID retrieves a single conversation by its ID from the database.
func (r *GORMConversationRepository) GetByID(id string) (*models.Conversation, error) {
	var conversation models.Conversation
	if err := r.db.First(&conversation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("conversation with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get conversation by ID %s: %w", id, err)
	}
	return &conversation, nil
}

// GetByParticipants retrieves the conversation between two users,
// regardless of argument order.
func (r *GORMConversationRepository) GetByParticipants(userA, userB string) (*models.Conversation, error) {
	a, b := models.SortParticipants(userA, userB)
	var conversation models.Conversation
	if err := r.db.First(&conversation, "participant_a = ? AND participant_b = ?", a, b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("conversation between %s and %s: %w", userA, userB, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get conversation between %s and %s: %w", userA, userB, err)
	}
	return &conversation, nil
}

// SetLastMessage updates the conversation's last-message reference and
// its UpdatedAt timestamp.
func (r *GORMConversationRepository) SetLastMessage(conversationID, messageID string) error {
	res := r.db.Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]interface{}{"last_message_id": messageID, "updated_at": time.Now()})
	if res.Error != nil {
		return fmt.Errorf("failed to set last message on conversation %s: %w", conversationID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("conversation with ID %s for last message update: %w", conversationID, ErrNotFound)
	}
	return nil
}

// ListByParticipant returns all conversations the user belongs to,
// most recently active first.
func (r *GORMConversationRepository) ListByParticipant(userID string) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := r.db.Where("participant_a = ? OR participant_b = ?", userID, userID).
		Order("updated_at DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations for user %s: %w", userID, err)
	}
	return conversations, nil
}
