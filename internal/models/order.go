package models

import "time"

// Order lifecycle statuses. Completed and cancelled are terminal;
// rejected admits no further transitions either.
const (
	OrderStatusPending   = "pending"
	OrderStatusAccepted  = "accepted"
	OrderStatusRejected  = "rejected"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// Payment statuses. Payment is modeled as a flag only; reaching
// completed marks the order paid.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// Order is a buyer's offer against a listing and its negotiation state.
// Orders are never deleted; they form the audit trail of a listing's
// sale.
type Order struct {
	ID              string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	BuyerID         string    `json:"buyer_id" gorm:"index:idx_orders_buyer_listing;type:varchar(36)"`
	SellerID        string    `json:"seller_id" gorm:"index;type:varchar(36)"`
	ListingID       string    `json:"listing_id" gorm:"index:idx_orders_buyer_listing;type:varchar(36)"`
	OfferPrice      float64   `json:"offer_price" validate:"gte=0"`
	MessageToSeller string    `json:"message_to_seller,omitempty" gorm:"type:varchar(500)" validate:"max=500"`
	Status          string    `json:"status" gorm:"type:varchar(20);index"`
	PaymentStatus   string    `json:"payment_status" gorm:"type:varchar(20)"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsTerminal reports whether no further status transition is allowed.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusCancelled || o.Status == OrderStatusRejected
}
