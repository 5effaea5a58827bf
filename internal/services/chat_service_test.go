package services_test

import (
	"errors"
	"testing"

	"passitpal/internal/models"
	"passitpal/internal/repositories"
	"passitpal/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockConversationRepo is a mock implementation of repositories.ConversationRepository
type MockConversationRepo struct {
	mock.Mock
}

func (m *MockConversationRepo) Create(conversation *models.Conversation) error {
	args := m.Called(conversation)
	return args.Error(0)
}

func (m *MockConversationRepo) GetByID(id string) (*models.Conversation, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

func (m *MockConversationRepo) GetByParticipants(a, b string) (*models.Conversation, error) {
	args := m.Called(a, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

func (m *MockConversationRepo) SetLastMessage(conversationID, messageID string) error {
	args := m.Called(conversationID, messageID)
	return args.Error(0)
}

func (m *MockConversationRepo) ListByParticipant(userID string) ([]models.Conversation, error) {
	args := m.Called(userID)
	return args.Get(0).([]models.Conversation), args.Error(1)
}

// MockMessageRepo is a mock implementation of repositories.MessageRepository
type MockMessageRepo struct {
	mock.Mock
}

func (m *MockMessageRepo) Create(message *models.Message) error {
	args := m.Called(message)
	return args.Error(0)
}

func (m *MockMessageRepo) ListByConversation(conversationID string) ([]models.Message, error) {
	args := m.Called(conversationID)
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockMessageRepo) MarkRead(conversationID, userID string) error {
	args := m.Called(conversationID, userID)
	return args.Error(0)
}

// MockPusher records realtime deliveries.
type MockPusher struct {
	mock.Mock
}

func (m *MockPusher) DeliverToUser(userID, event string, payload interface{}) {
	m.Called(userID, event, payload)
}

func newChatServiceFixture() (*services.ChatService, *MockConversationRepo, *MockMessageRepo, *MockUserRepository, *MockPusher, *MockNotifier) {
	conversationRepo := new(MockConversationRepo)
	messageRepo := new(MockMessageRepo)
	userRepo := new(MockUserRepository)
	pusher := new(MockPusher)
	notifier := new(MockNotifier)
	service := services.NewChatService(conversationRepo, messageRepo, userRepo, pusher, notifier)
	return service, conversationRepo, messageRepo, userRepo, pusher, notifier
}

func chatConversation() *models.Conversation {
	a, b := models.SortParticipants("user-1", "user-2")
	return &models.Conversation{
		ID:           "conv-1",
		ParticipantA: a,
		ParticipantB: b,
	}
}

func TestChatService_GetOrCreateConversation_CreatesOnFirstContact(t *testing.T) {
	service, conversationRepo, _, userRepo, _, _ := newChatServiceFixture()

	userRepo.On("GetByID", "user-2").Return(&models.User{ID: "user-2", Username: "other"}, nil).Once()
	conversationRepo.On("GetByParticipants", "user-1", "user-2").Return(nil, repositories.ErrNotFound).Once()
	conversationRepo.On("Create", mock.AnythingOfType("*models.Conversation")).Return(nil).Once()

	conversation, messages, created, err := service.GetOrCreateConversation("user-1", "user-2")

	assert.NoError(t, err)
	assert.True(t, created)
	assert.Empty(t, messages)
	assert.NotNil(t, conversation)
	conversationRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestChatService_GetOrCreateConversation_ReturnsExisting(t *testing.T) {
	service, conversationRepo, messageRepo, userRepo, _, _ := newChatServiceFixture()

	existing := chatConversation()
	history := []models.Message{
		{ID: "msg-1", ConversationID: existing.ID, SenderID: "user-2", Text: "hello"},
	}
	userRepo.On("GetByID", "user-2").Return(&models.User{ID: "user-2", Username: "other"}, nil)
	conversationRepo.On("GetByParticipants", "user-1", "user-2").Return(existing, nil).Once()
	messageRepo.On("ListByConversation", existing.ID).Return(history, nil).Once()

	conversation, messages, created, err := service.GetOrCreateConversation("user-1", "user-2")

	assert.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing.ID, conversation.ID)
	assert.Len(t, messages, 1)
	// Sender display fields were resolved
	assert.Equal(t, "other", messages[0].SenderUsername)
	conversationRepo.AssertExpectations(t)
	messageRepo.AssertExpectations(t)
}

func TestChatService_GetOrCreateConversation_SelfPair(t *testing.T) {
	service, _, _, _, _, _ := newChatServiceFixture()

	_, _, _, err := service.GetOrCreateConversation("user-1", "user-1")

	assert.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrInvalidState))
}

func TestChatService_GetOrCreateConversation_UnknownRecipient(t *testing.T) {
	service, _, _, userRepo, _, _ := newChatServiceFixture()

	userRepo.On("GetByID", "user-99").Return(nil, repositories.ErrNotFound).Once()

	_, _, _, err := service.GetOrCreateConversation("user-1", "user-99")

	assert.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrNotFound))
	userRepo.AssertExpectations(t)
}

func TestChatService_GetConversationMessages_MarksRead(t *testing.T) {
	service, conversationRepo, messageRepo, userRepo, _, _ := newChatServiceFixture()

	conversation := chatConversation()
	history := []models.Message{
		{ID: "msg-1", ConversationID: conversation.ID, SenderID: "user-2", Text: "hello", ReadBy: []string{"user-2"}},
	}
	conversationRepo.On("GetByID", conversation.ID).Return(conversation, nil).Once()
	messageRepo.On("ListByConversation", conversation.ID).Return(history, nil).Once()
	messageRepo.On("MarkRead", conversation.ID, "user-1").Return(nil).Once()
	userRepo.On("GetByID", "user-2").Return(&models.User{ID: "user-2", Username: "other"}, nil)

	messages, err := service.GetConversationMessages("user-1", conversation.ID)

	assert.NoError(t, err)
	assert.Len(t, messages, 1)
	messageRepo.AssertExpectations(t)
}

func TestChatService_GetConversationMessages_NonParticipant(t *testing.T) {
	service, conversationRepo, messageRepo, _, _, _ := newChatServiceFixture()

	conversationRepo.On("GetByID", "conv-1").Return(chatConversation(), nil).Once()

	_, err := service.GetConversationMessages("user-3", "conv-1")

	assert.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrForbidden))
	messageRepo.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything)
	conversationRepo.AssertExpectations(t)
}

func TestChatService_SendMessage(t *testing.T) {
	service, conversationRepo, messageRepo, userRepo, pusher, notifier := newChatServiceFixture()

	conversation := chatConversation()
	conversationRepo.On("GetByID", conversation.ID).Return(conversation, nil).Once()
	messageRepo.On("Create", mock.AnythingOfType("*models.Message")).Return(nil).Once()
	conversationRepo.On("SetLastMessage", conversation.ID, mock.AnythingOfType("string")).Return(nil).Once()
	userRepo.On("GetByID", "user-1").Return(&models.User{ID: "user-1", Username: "sender"}, nil).Once()
	// The message fans out to both participants' rooms.
	pusher.On("DeliverToUser", "user-1", services.EventReceiveMessage, mock.AnythingOfType("*models.Message")).Once()
	pusher.On("DeliverToUser", "user-2", services.EventReceiveMessage, mock.AnythingOfType("*models.Message")).Once()
	// And the recipient gets a persisted notification.
	notifier.On("CreateAndEmit", "user-2", "user-1", models.NotificationMessage,
		"New message from sender: hello there", "/chat/"+conversation.ID).Return(&models.Notification{}, nil).Once()

	message, err := service.SendMessage("user-1", conversation.ID, "hello there")

	assert.NoError(t, err)
	assert.Equal(t, "user-1", message.SenderID)
	assert.Equal(t, "sender", message.SenderUsername)
	// The sender has already read their own message.
	assert.True(t, message.ReadByUser("user-1"))
	assert.False(t, message.ReadByUser("user-2"))
	conversationRepo.AssertExpectations(t)
	messageRepo.AssertExpectations(t)
	pusher.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestChatService_SendMessage_EmptyText(t *testing.T) {
	service, _, messageRepo, _, _, _ := newChatServiceFixture()

	_, err := service.SendMessage("user-1", "conv-1", "   ")

	assert.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrInvalidState))
	messageRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestChatService_SendMessage_NonParticipant(t *testing.T) {
	service, conversationRepo, messageRepo, _, pusher, _ := newChatServiceFixture()

	conversationRepo.On("GetByID", "conv-1").Return(chatConversation(), nil).Once()

	_, err := service.SendMessage("user-3", "conv-1", "let me in")

	assert.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrForbidden))
	messageRepo.AssertNotCalled(t, "Create", mock.Anything)
	pusher.AssertNotCalled(t, "DeliverToUser", mock.Anything, mock.Anything, mock.Anything)
	conversationRepo.AssertExpectations(t)
}

func TestChatService_SendMessage_UnknownConversation(t *testing.T) {
	service, conversationRepo, _, _, _, _ := newChatServiceFixture()

	conversationRepo.On("GetByID", "conv-99").Return(nil, repositories.ErrNotFound).Once()

	_, err := service.SendMessage("user-1", "conv-99", "anyone there?")

	assert.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrNotFound))
	conversationRepo.AssertExpectations(t)
}

func TestChatService_SendMessage_TruncatesNotificationPreview(t *testing.T) {
	service, conversationRepo, messageRepo, userRepo, pusher, notifier := newChatServiceFixture()

	conversation := chatConversation()
	longText := "this message is deliberately much longer than the fifty rune preview limit used for notifications"
	conversationRepo.On("GetByID", conversation.ID).Return(conversation, nil).Once()
	messageRepo.On("Create", mock.AnythingOfType("*models.Message")).Return(nil).Once()
	conversationRepo.On("SetLastMessage", conversation.ID, mock.AnythingOfType("string")).Return(nil).Once()
	userRepo.On("GetByID", "user-1").Return(&models.User{ID: "user-1", Username: "sender"}, nil).Once()
	pusher.On("DeliverToUser", mock.AnythingOfType("string"), services.EventReceiveMessage, mock.Anything).Times(2)
	notifier.On("CreateAndEmit", "user-2", "user-1", models.NotificationMessage,
		"New message from sender: "+string([]rune(longText)[:50])+"...", "/chat/"+conversation.ID).Return(&models.Notification{}, nil).Once()

	_, err := service.SendMessage("user-1", conversation.ID, longText)

	assert.NoError(t, err)
	notifier.AssertExpectations(t)
}
