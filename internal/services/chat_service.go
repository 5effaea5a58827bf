package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"passitpal/internal/models"
	"passitpal/internal/repositories"
)

// ChatService validates conversation membership, persists messages and
// fans them out to participant rooms via the Pusher.
type ChatService struct {
	conversationRepo repositories.ConversationRepository
	messageRepo      repositories.MessageRepository
	userRepo         repositories.UserRepository
	pusher           Pusher
	notifier         Notifier
}

// NewChatService creates a new ChatService. The pusher and notifier may
// be nil; delivery and notification are best-effort.
func NewChatService(conversationRepo repositories.ConversationRepository, messageRepo repositories.MessageRepository, userRepo repositories.UserRepository, pusher Pusher, notifier Notifier) *ChatService {
	return &ChatService{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		userRepo:         userRepo,
		pusher:           pusher,
		notifier:         notifier,
	}
}

// GetOrCreateConversation returns the conversation between the caller
// and the recipient, creating it on first contact. The second return
// value holds the conversation's messages, the third reports whether a
// new conversation was created.
func (s *ChatService) GetOrCreateConversation(userID, recipientID string) (*models.Conversation, []models.Message, bool, error) {
	if userID == recipientID {
		return nil, nil, false, fmt.Errorf("cannot create conversation with yourself: %w", ErrInvalidState)
	}

	if _, err := s.userRepo.GetByID(recipientID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, false, fmt.Errorf("recipient user not found: %w", ErrNotFound)
		}
		return nil, nil, false, err
	}

	conversation, err := s.conversationRepo.GetByParticipants(userID, recipientID)
	if err == nil {
		messages, err := s.messageRepo.ListByConversation(conversation.ID)
		if err != nil {
			return nil, nil, false, err
		}
		s.populateSenders(messages)
		return conversation, messages, false, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, nil, false, err
	}

	conversation = &models.Conversation{
		ParticipantA: userID,
		ParticipantB: recipientID,
	}
	if err := s.conversationRepo.Create(conversation); err != nil {
		return nil, nil, false, fmt.Errorf("failed to create conversation: %w", err)
	}
	return conversation, []models.Message{}, true, nil
}

// GetMyConversations returns the user's conversations, most recently
// active first.
func (s *ChatService) GetMyConversations(userID string) ([]models.Conversation, error) {
	return s.conversationRepo.ListByParticipant(userID)
}

// GetConversationMessages returns the conversation's messages for a
// participant and marks them read by that participant. The mark-read is
// idempotent; re-fetching changes nothing.
func (s *ChatService) GetConversationMessages(userID, conversationID string) ([]models.Message, error) {
	conversation, err := s.conversationRepo.GetByID(conversationID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("conversation not found: %w", ErrNotFound)
		}
		return nil, err
	}

	if !conversation.HasParticipant(userID) {
		return nil, fmt.Errorf("not authorized to view this conversation: %w", ErrForbidden)
	}

	messages, err := s.messageRepo.ListByConversation(conversationID)
	if err != nil {
		return nil, err
	}

	if err := s.messageRepo.MarkRead(conversationID, userID); err != nil {
		return nil, fmt.Errorf("failed to mark messages read: %w", err)
	}

	s.populateSenders(messages)
	return messages, nil
}

// SendMessage persists a message from a conversation participant,
// bumps the conversation and delivers the populated message to every
// participant's room, the sender's other devices included. If the
// other participant is offline they still see the message on next
// fetch; a message notification is additionally recorded for them.
func (s *ChatService) SendMessage(senderID, conversationID, text string) (*models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("message text is required: %w", ErrInvalidState)
	}

	conversation, err := s.conversationRepo.GetByID(conversationID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("conversation not found: %w", ErrNotFound)
		}
		return nil, err
	}

	if !conversation.HasParticipant(senderID) {
		return nil, fmt.Errorf("not authorized for this conversation: %w", ErrForbidden)
	}

	message := &models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Text:           text,
		ReadBy:         []string{senderID},
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	if err := s.conversationRepo.SetLastMessage(conversationID, message.ID); err != nil {
		log.Printf("Warning: failed to update conversation %s last message: %v", conversationID, err)
	}

	sender, err := s.userRepo.GetByID(senderID)
	if err == nil {
		message.SenderUsername = sender.Username
		message.SenderProfilePictureURL = sender.ProfilePictureURL
	}

	if s.pusher != nil {
		for _, participantID := range conversation.Participants() {
			s.pusher.DeliverToUser(participantID, EventReceiveMessage, message)
		}
	}

	recipientID := conversation.OtherParticipant(senderID)
	if recipientID != senderID && s.notifier != nil {
		senderName := senderID
		if sender != nil {
			senderName = sender.Username
		}
		if _, err := s.notifier.CreateAndEmit(
			recipientID,
			senderID,
			models.NotificationMessage,
			fmt.Sprintf("New message from %s: %s", senderName, truncate(text, 50)),
			"/chat/"+conversationID,
		); err != nil {
			log.Printf("Warning: failed to create message notification for user %s: %v", recipientID, err)
		}
	}

	return message, nil
}

// populateSenders resolves sender display fields on a batch of
// messages. Lookup failures leave the fields empty.
func (s *ChatService) populateSenders(messages []models.Message) {
	users := make(map[string]*models.User)
	for i := range messages {
		sender, ok := users[messages[i].SenderID]
		if !ok {
			var err error
			sender, err = s.userRepo.GetByID(messages[i].SenderID)
			if err != nil {
				continue
			}
			users[messages[i].SenderID] = sender
		}
		messages[i].SenderUsername = sender.Username
		messages[i].SenderProfilePictureURL = sender.ProfilePictureURL
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
