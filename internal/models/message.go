package models

import "time"

// Message belongs to exactly one conversation. It is immutable once
// created except for ReadBy, which only ever grows.
type Message struct {
	ID             string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ConversationID string    `json:"conversation_id" gorm:"index;type:varchar(36)" validate:"required"`
	SenderID       string    `json:"sender_id" gorm:"type:varchar(36)"`
	Text           string    `json:"text" gorm:"type:varchar(2000)" validate:"required,max=2000"`
	ReadBy         []string  `json:"read_by" gorm:"serializer:json;type:text"`
	CreatedAt      time.Time `json:"created_at"`

	// Sender display fields, resolved at delivery time. Not persisted.
	SenderUsername          string `json:"sender_username,omitempty" gorm:"-"`
	SenderProfilePictureURL string `json:"sender_profile_picture_url,omitempty" gorm:"-"`
}

// ReadByUser reports whether the user has already viewed the message.
func (m *Message) ReadByUser(userID string) bool {
	for _, id := range m.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}
