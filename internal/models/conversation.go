package models

import "time"

// Conversation is a persistent two-party chat thread. Participants are
// stored in canonical (lexicographic) order so the pair acts as a
// natural key regardless of who opened the conversation.
type Conversation struct {
	ID            string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ParticipantA  string    `json:"participant_a" gorm:"uniqueIndex:idx_conversation_pair;type:varchar(36)"`
	ParticipantB  string    `json:"participant_b" gorm:"uniqueIndex:idx_conversation_pair;type:varchar(36)"`
	LastMessageID string    `json:"last_message_id,omitempty" gorm:"type:varchar(36)"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SortParticipants returns the pair in canonical storage order.
func SortParticipants(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// Participants returns both participant ids.
func (c *Conversation) Participants() []string {
	return []string{c.ParticipantA, c.ParticipantB}
}

// HasParticipant reports whether the user belongs to the conversation.
func (c *Conversation) HasParticipant(userID string) bool {
	return c.ParticipantA == userID || c.ParticipantB == userID
}

// OtherParticipant returns the participant that is not the given user.
func (c *Conversation) OtherParticipant(userID string) string {
	if c.ParticipantA == userID {
		return c.ParticipantB
	}
	return c.ParticipantA
}
