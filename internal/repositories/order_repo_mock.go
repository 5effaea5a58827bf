package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"passitpal/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// Create adds a new order.
func (r *MockOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = *order
	return nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	return &order, nil
}

// HasPendingOrder reports whether a pending order by this buyer exists
// for the listing.
func (r *MockOrderRepository) HasPendingOrder(buyerID, listingID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, order := range r.orders {
		if order.BuyerID == buyerID && order.ListingID == listingID && order.Status == models.OrderStatusPending {
			return true, nil
		}
	}
	return false, nil
}

// UpdateStatus updates the status and payment status of an order.
func (r *MockOrderRepository) UpdateStatus(id, status, paymentStatus string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order with ID %s for status update: %w", id, ErrNotFound)
	}
	order.Status = status
	order.PaymentStatus = paymentStatus
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

// ListBySeller returns all orders on the seller's listings, newest first.
func (r *MockOrderRepository) ListBySeller(sellerID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orders []models.Order
	for _, order := range r.orders {
		if order.SellerID == sellerID {
			orders = append(orders, order)
		}
	}
	sortOrdersNewestFirst(orders)
	return orders, nil
}

// ListByBuyer returns all orders initiated by the buyer, newest first.
func (r *MockOrderRepository) ListByBuyer(buyerID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orders []models.Order
	for _, order := range r.orders {
		if order.BuyerID == buyerID {
			orders = append(orders, order)
		}
	}
	sortOrdersNewestFirst(orders)
	return orders, nil
}

func sortOrdersNewestFirst(orders []models.Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
