package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"passitpal/internal/models"
	"passitpal/internal/repositories"
	"passitpal/pkg/rabbitmq"
)

// Statuses a seller may set through UpdateOrderStatus. Buyer-side
// cancellation is a separate capability and is not exposed here.
var validSellerStatuses = map[string]bool{
	models.OrderStatusAccepted:  true,
	models.OrderStatusRejected:  true,
	models.OrderStatusCompleted: true,
}

// OrderService owns the order/offer state machine:
//
//	pending --(accept)--> accepted --(complete)--> completed
//	pending --(reject)--> rejected
//
// Accepting an offer flips the listing's availability through an atomic
// conditional update, so two concurrent accepts on different pending
// orders for the same listing cannot both succeed.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	listingRepo repositories.ListingRepository
	userRepo    repositories.UserRepository
	notifier    Notifier
	mqClient    EventPublisher
}

// NewOrderService creates a new OrderService. The notifier and mqClient
// may be nil; both side channels are best-effort.
func NewOrderService(orderRepo repositories.OrderRepository, listingRepo repositories.ListingRepository, userRepo repositories.UserRepository, notifier Notifier, mqClient EventPublisher) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		listingRepo: listingRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		mqClient:    mqClient,
	}
}

// InitiateOrder creates a pending order (an offer) by the buyer on the
// listing and notifies the seller.
func (s *OrderService) InitiateOrder(buyerID, listingID string, offerPrice float64, messageToSeller string) (*models.Order, error) {
	if offerPrice < 0 {
		return nil, fmt.Errorf("offer price must not be negative: %w", ErrInvalidState)
	}

	listing, err := s.listingRepo.GetByID(listingID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("listing not found: %w", ErrNotFound)
		}
		return nil, err
	}

	if !listing.IsAvailable {
		return nil, fmt.Errorf("this listing is not available for purchase: %w", ErrInvalidState)
	}

	if listing.SellerID == buyerID {
		return nil, fmt.Errorf("you cannot initiate an order on your own listing: %w", ErrForbidden)
	}

	pending, err := s.orderRepo.HasPendingOrder(buyerID, listingID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, fmt.Errorf("you already have a pending order for this listing: %w", ErrConflict)
	}

	// The seller id is denormalized from the listing; resolve the
	// record to catch a dangling reference before creating the order.
	if _, err := s.userRepo.GetByID(listing.SellerID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("seller for this listing not found: %w", ErrNotFound)
		}
		return nil, err
	}

	order := &models.Order{
		BuyerID:         buyerID,
		SellerID:        listing.SellerID,
		ListingID:       listingID,
		OfferPrice:      offerPrice,
		MessageToSeller: messageToSeller,
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
	}
	if err := s.orderRepo.Create(order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.notify(
		listing.SellerID,
		buyerID,
		models.NotificationNewOrder,
		fmt.Sprintf("You have a new offer of %.2f for your listing %q.", offerPrice, listing.CultPassType),
		"/order/"+order.ID,
	)
	s.publishEvent("order.created", order)

	return order, nil
}

// UpdateOrderStatus applies a seller decision to an order: accept,
// reject or complete. Only the listing's seller may call it.
func (s *OrderService) UpdateOrderStatus(sellerID, orderID, status string) (*models.Order, error) {
	if !validSellerStatuses[status] {
		return nil, fmt.Errorf("invalid status %q, valid statuses are: accepted, rejected, completed: %w", status, ErrInvalidState)
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("order not found: %w", ErrNotFound)
		}
		return nil, err
	}

	if order.SellerID != sellerID {
		return nil, fmt.Errorf("not authorized to update this order: %w", ErrForbidden)
	}

	if order.IsTerminal() {
		return nil, fmt.Errorf("order is already %s and cannot be updated: %w", order.Status, ErrInvalidState)
	}

	listing, err := s.listingRepo.GetByID(order.ListingID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("listing for this order not found: %w", ErrNotFound)
		}
		return nil, err
	}

	switch status {
	case models.OrderStatusAccepted:
		if order.Status != models.OrderStatusPending {
			return nil, fmt.Errorf("only a pending order can be accepted: %w", ErrInvalidState)
		}
		applied, err := s.listingRepo.SetAvailabilityIf(order.ListingID, true, false)
		if err != nil {
			return nil, err
		}
		if !applied {
			// Lost the race: another accepted order already claimed
			// the listing.
			return nil, fmt.Errorf("listing is already unavailable due to another accepted order: %w", ErrConflict)
		}
		s.notify(
			order.BuyerID,
			sellerID,
			models.NotificationTransaction,
			fmt.Sprintf("Your offer for %q was accepted by the seller!", listing.CultPassType),
			"/order/"+order.ID,
		)

	case models.OrderStatusRejected:
		if order.Status != models.OrderStatusPending {
			return nil, fmt.Errorf("only a pending order can be rejected: %w", ErrInvalidState)
		}
		// No listing mutation on rejection.
		s.notify(
			order.BuyerID,
			sellerID,
			models.NotificationTransaction,
			fmt.Sprintf("Your offer for %q was rejected by the seller.", listing.CultPassType),
			"/order/"+order.ID,
		)

	case models.OrderStatusCompleted:
		if order.Status != models.OrderStatusAccepted {
			return nil, fmt.Errorf("order must be accepted before it can be marked as completed: %w", ErrInvalidState)
		}
		// Fix-up: an accepted order's listing must be unavailable. The
		// apply result is irrelevant here.
		if _, err := s.listingRepo.SetAvailabilityIf(order.ListingID, true, false); err != nil {
			return nil, err
		}
		order.PaymentStatus = models.PaymentStatusPaid
		s.notify(
			order.BuyerID,
			sellerID,
			models.NotificationTransaction,
			fmt.Sprintf("Your transaction for %q is completed!", listing.CultPassType),
			"/order/"+order.ID,
		)
	}

	order.Status = status
	if err := s.orderRepo.UpdateStatus(order.ID, order.Status, order.PaymentStatus); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	s.publishEvent("order.updated", order)

	return order, nil
}

// GetSellerOrders returns all orders on the seller's listings.
func (s *OrderService) GetSellerOrders(sellerID string) ([]models.Order, error) {
	return s.orderRepo.ListBySeller(sellerID)
}

// GetBuyerOrders returns all orders initiated by the buyer.
func (s *OrderService) GetBuyerOrders(buyerID string) ([]models.Order, error) {
	return s.orderRepo.ListByBuyer(buyerID)
}

// notify records and pushes a notification. Failures are logged and
// swallowed: the order mutation is authoritative, notifications are
// advisory.
func (s *OrderService) notify(recipientID, senderID, notificationType, message, link string) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.CreateAndEmit(recipientID, senderID, notificationType, message, link); err != nil {
		log.Printf("Warning: failed to create %s notification for user %s: %v", notificationType, recipientID, err)
	}
}

// publishEvent emits an order lifecycle event to the order events
// queue. Best-effort: a failed publish is logged, never surfaced.
func (s *OrderService) publishEvent(event string, order *models.Order) {
	if s.mqClient == nil {
		return
	}
	body, err := json.Marshal(map[string]interface{}{
		"event":      event,
		"orderID":    order.ID,
		"listingID":  order.ListingID,
		"buyerID":    order.BuyerID,
		"sellerID":   order.SellerID,
		"status":     order.Status,
		"offerPrice": order.OfferPrice,
	})
	if err != nil {
		log.Printf("Failed to marshal order event to JSON: %v", err)
		return
	}
	if err := s.mqClient.Publish("", rabbitmq.OrderEventsQueue, body); err != nil {
		log.Printf("Warning: failed to publish %s event for order %s: %v", event, order.ID, err)
	}
}
