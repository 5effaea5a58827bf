package models

import "time"

// Notification types.
const (
	NotificationMessage           = "message"
	NotificationListingUpdate     = "listing_update"
	NotificationAdminAnnouncement = "admin_announcement"
	NotificationPromotedListing   = "promoted_listing"
	NotificationTransaction       = "transaction"
	NotificationNewOrder          = "new_order"
	NotificationOrderCancelled    = "order_cancelled"
)

// Notification is an asynchronous, persisted, push-delivered user-facing
// event record. Read only ever flips false to true; records are deleted
// only by explicit recipient action.
type Notification struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	RecipientID string    `json:"recipient_id" gorm:"index;type:varchar(36)" validate:"required"`
	SenderID    string    `json:"sender_id,omitempty" gorm:"type:varchar(36)"`
	Type        string    `json:"type" gorm:"type:varchar(30)" validate:"required,oneof=message listing_update admin_announcement promoted_listing transaction new_order order_cancelled"`
	Message     string    `json:"message" gorm:"type:varchar(500)" validate:"required,max=500"`
	Link        string    `json:"link,omitempty" gorm:"type:varchar(255)"`
	Read        bool      `json:"read" gorm:"default:false"`
	CreatedAt   time.Time `json:"created_at"`
}
