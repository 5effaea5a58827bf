package repositories

import "passitpal/internal/models"

// OrderRepository defines the interface for order data access. Orders
// are never deleted; they form the audit trail of listing sales.
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id string) (*models.Order, error)
	// HasPendingOrder reports whether the buyer already has a pending
	// order for the listing.
	HasPendingOrder(buyerID, listingID string) (bool, error)
	UpdateStatus(id, status, paymentStatus string) error
	ListBySeller(sellerID string) ([]models.Order, error)
	ListByBuyer(buyerID string) ([]models.Order, error)
}
