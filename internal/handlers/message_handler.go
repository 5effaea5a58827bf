package handlers

import (
	"fmt"
	"log"

	"passitpal/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// MessageHandler handles HTTP requests for conversations and chat history.
// Sending messages happens over the websocket endpoint; this handler only
// covers the REST side of chat.
type MessageHandler struct {
	service  *services.ChatService
	validate *validator.Validate
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(service *services.ChatService) *MessageHandler {
	return &MessageHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the messaging routes with the Fiber app.
// The router is expected to already carry authentication middleware.
func (h *MessageHandler) RegisterRoutes(router fiber.Router) {
	messageRoutes := router.Group("/messages")
	messageRoutes.Post("/conversations", h.HandleStartConversation)
	messageRoutes.Get("/conversations/me", h.HandleGetMyConversations)
	messageRoutes.Get("/conversations/:conversationId/messages", h.HandleGetConversationMessages)
}

// StartConversationRequest represents the request body for opening a chat.
type StartConversationRequest struct {
	RecipientID string `json:"recipient_id" validate:"required"`
}

// HandleStartConversation returns the conversation between the caller and
// the recipient, creating it if the pair has never chatted before.
func (h *MessageHandler) HandleStartConversation(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var req StartConversationRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing conversation request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	conversation, messages, created, err := h.service.GetOrCreateConversation(userID, req.RecipientID)
	if err != nil {
		log.Printf("Error opening conversation with %s: %v", req.RecipientID, err)
		return errorResponse(c, err)
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{
		"conversation": conversation,
		"messages":     messages,
	})
}

// HandleGetMyConversations lists the caller's conversations, most
// recently active first.
func (h *MessageHandler) HandleGetMyConversations(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	conversations, err := h.service.GetMyConversations(userID)
	if err != nil {
		log.Printf("Error listing conversations for user %s: %v", userID, err)
		return errorResponse(c, err)
	}
	return c.JSON(conversations)
}

// HandleGetConversationMessages returns the full message history of a
// conversation and marks unread messages as read by the caller.
func (h *MessageHandler) HandleGetConversationMessages(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	conversationID := c.Params("conversationId")

	messages, err := h.service.GetConversationMessages(userID, conversationID)
	if err != nil {
		log.Printf("Error loading messages for conversation %s: %v", conversationID, err)
		return errorResponse(c, err)
	}
	return c.JSON(messages)
}
