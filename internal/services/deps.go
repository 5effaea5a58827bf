package services

import "passitpal/internal/models"

// Server-to-client realtime event names.
const (
	EventReceiveMessage  = "receiveMessage"
	EventNewNotification = "newNotification"
)

// Pusher delivers a payload to every active realtime connection of a
// user. Delivery is best-effort: a user with no connections is a silent
// no-op, and failures never surface to the caller.
type Pusher interface {
	DeliverToUser(userID, event string, payload interface{})
}

// Notifier persists a notification and pushes it to the recipient.
// Implemented by NotificationService; consumed by the order engine and
// the chat relay.
type Notifier interface {
	CreateAndEmit(recipientID, senderID, notificationType, message, link string) (*models.Notification, error)
}

// EventPublisher publishes serialized domain events to a message
// broker. Implemented by pkg/rabbitmq.Client.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}
