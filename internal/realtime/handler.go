package realtime

import (
	"encoding/json"
	"log"
	"strings"

	"passitpal/internal/services"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// clientEvent is the envelope for client-to-server messages.
type clientEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// sendMessagePayload mirrors the realtime wire contract. RecipientID is
// accepted for compatibility with existing clients; the actual
// recipient is derived server-side from the conversation participants.
type sendMessagePayload struct {
	ConversationID string `json:"conversationId"`
	Text           string `json:"text"`
	RecipientID    string `json:"recipientId"`
}

// Handler authenticates websocket connections and runs their read
// loops. A connection is verified once at handshake time and then
// trusted for its lifetime; there is no periodic re-check of the
// credential or the account's blocked flag.
type Handler struct {
	registry    *Registry
	authService *services.AuthService
	chatService *services.ChatService
}

// NewHandler creates a new realtime Handler.
func NewHandler(registry *Registry, authService *services.AuthService, chatService *services.ChatService) *Handler {
	return &Handler{
		registry:    registry,
		authService: authService,
		chatService: chatService,
	}
}

// RegisterRoutes mounts the websocket endpoint on the app.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Use("/ws", h.handleUpgrade)
	app.Get("/ws", websocket.New(h.serveConnection))
}

// handleUpgrade authenticates the handshake before the protocol
// upgrade. The credential comes from the "token" query parameter or a
// bearer Authorization header. Missing, invalid or expired tokens and
// blocked accounts reject the attempt; no session is registered.
func (h *Handler) handleUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	token := c.Query("token")
	if token == "" {
		authHeader := c.Get("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			token = parts[1]
		}
	}
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication error: No token provided",
		})
	}

	user, err := h.authService.UserFromToken(token)
	if err != nil {
		log.Printf("Websocket authentication failed: %v", err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication error: Invalid token",
		})
	}

	c.Locals("user_id", user.ID)
	c.Locals("username", user.Username)
	return c.Next()
}

// serveConnection registers the connection in the user's room and runs
// its read loop. Errors inside the loop are logged and isolated to
// this connection; they never affect the registry or other
// connections.
func (h *Handler) serveConnection(conn *websocket.Conn) {
	userID, _ := conn.Locals("user_id").(string)
	if userID == "" {
		conn.Close()
		return
	}

	h.registry.Join(userID, conn)
	log.Printf("Websocket connected for user %s", userID)
	defer func() {
		h.registry.Leave(userID, conn)
		conn.Close()
		log.Printf("Websocket disconnected for user %s", userID)
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Websocket read error for user %s: %v", userID, err)
			}
			return
		}

		var evt clientEvent
		if err := json.Unmarshal(raw, &evt); err != nil {
			log.Printf("Dropping malformed websocket event from user %s: %v", userID, err)
			continue
		}

		switch evt.Event {
		case "sendMessage":
			h.handleSendMessage(userID, evt.Data)
		default:
			log.Printf("Unknown websocket event %q from user %s", evt.Event, userID)
		}
	}
}

// handleSendMessage dispatches a chat message. Failures are logged and
// dropped; the protocol has no error reply event.
func (h *Handler) handleSendMessage(userID string, data json.RawMessage) {
	var payload sendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		log.Printf("Dropping malformed sendMessage payload from user %s: %v", userID, err)
		return
	}

	if _, err := h.chatService.SendMessage(userID, payload.ConversationID, payload.Text); err != nil {
		log.Printf("Dropping sendMessage from user %s on conversation %s: %v", userID, payload.ConversationID, err)
	}
}
