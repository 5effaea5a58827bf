package repositories

import (
	"errors"
	"fmt"
	"time"

	"passitpal/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// Create creates a new order in the database.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetByID retrieves a single order by its ID from the database.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// HasPendingOrder reports whether a pending order by this buyer exists
// for the listing.
func (r *GORMOrderRepository) HasPendingOrder(buyerID, listingID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Order{}).
		Where("buyer_id = ? AND listing_id = ? AND status = ?", buyerID, listingID, models.OrderStatusPending).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check pending orders for buyer %s: %w", buyerID, err)
	}
	return count > 0, nil
}

// UpdateStatus updates the status and payment status of an order.
func (r *GORMOrderRepository) UpdateStatus(id, status, paymentStatus string) error {
	res := r.db.Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":         status,
			"payment_status": paymentStatus,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update status for order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s for status update: %w", id, ErrNotFound)
	}
	return nil
}

// ListBySeller returns all orders on the seller's listings, newest first.
func (r *GORMOrderRepository) ListBySeller(sellerID string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Where("seller_id = ?", sellerID).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders for seller %s: %w", sellerID, err)
	}
	return orders, nil
}

// ListByBuyer returns all orders initiated by the buyer, newest first.
func (r *GORMOrderRepository) ListByBuyer(buyerID string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Where("buyer_id = ?", buyerID).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders for buyer %s: %w", buyerID, err)
	}
	return orders, nil
}
