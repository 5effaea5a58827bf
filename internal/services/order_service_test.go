package services_test

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"passitpal/internal/models"
	"passitpal/internal/repositories"
	"passitpal/internal/services"
	"passitpal/pkg/rabbitmq"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepo is a mock implementation of repositories.OrderRepository
type MockOrderRepo struct {
	mock.Mock
}

func (m *MockOrderRepo) Create(order *models.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockOrderRepo) GetByID(id string) (*models.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepo) HasPendingOrder(buyerID, listingID string) (bool, error) {
	args := m.Called(buyerID, listingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepo) UpdateStatus(id, status, paymentStatus string) error {
	args := m.Called(id, status, paymentStatus)
	return args.Error(0)
}

func (m *MockOrderRepo) ListBySeller(sellerID string) ([]models.Order, error) {
	args := m.Called(sellerID)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepo) ListByBuyer(buyerID string) ([]models.Order, error) {
	args := m.Called(buyerID)
	return args.Get(0).([]models.Order), args.Error(1)
}

// MockListingRepo is a mock implementation of repositories.ListingRepository
type MockListingRepo struct {
	mock.Mock
}

func (m *MockListingRepo) GetByID(id string) (*models.Listing, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingRepo) Create(listing *models.Listing) error {
	args := m.Called(listing)
	return args.Error(0)
}

func (m *MockListingRepo) Update(listing *models.Listing) error {
	args := m.Called(listing)
	return args.Error(0)
}

func (m *MockListingRepo) SetAvailabilityIf(id string, expected, value bool) (bool, error) {
	args := m.Called(id, expected, value)
	return args.Bool(0), args.Error(1)
}

// MockNotifier records notification requests made by the order engine.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) CreateAndEmit(recipientID, senderID, notificationType, message, link string) (*models.Notification, error) {
	args := m.Called(recipientID, senderID, notificationType, message, link)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(exchange, routingKey string, body []byte) error {
	args := m.Called(exchange, routingKey, body)
	return args.Error(0)
}

func newOrderServiceFixture() (*services.OrderService, *MockOrderRepo, *MockListingRepo, *MockUserRepository, *MockNotifier, *MockPublisher) {
	orderRepo := new(MockOrderRepo)
	listingRepo := new(MockListingRepo)
	userRepo := new(MockUserRepository)
	notifier := new(MockNotifier)
	publisher := new(MockPublisher)
	service := services.NewOrderService(orderRepo, listingRepo, userRepo, notifier, publisher)
	return service, orderRepo, listingRepo, userRepo, notifier, publisher
}

func availableListing() *models.Listing {
	return &models.Listing{
		ID:           "listing-1",
		SellerID:     "seller-1",
		CultPassType: "ELITE",
		AskingPrice:  5000,
		IsAvailable:  true,
	}
}

func TestOrderService_InitiateOrder(t *testing.T) {
	service, orderRepo, listingRepo, userRepo, notifier, publisher := newOrderServiceFixture()

	listingRepo.On("GetByID", "listing-1").Return(availableListing(), nil).Once()
	orderRepo.On("HasPendingOrder", "buyer-1", "listing-1").Return(false, nil).Once()
	userRepo.On("GetByID", "seller-1").Return(&models.User{ID: "seller-1", Username: "seller"}, nil).Once()
	orderRepo.On("Create", mock.AnythingOfType("*models.Order")).Return(nil).Once()
	notifier.On("CreateAndEmit", "seller-1", "buyer-1", models.NotificationNewOrder,
		mock.AnythingOfType("string"), mock.AnythingOfType("string")).Return(&models.Notification{}, nil).Once()
	publisher.On("Publish", "", rabbitmq.OrderEventsQueue, mock.AnythingOfType("[]uint8")).Return(nil).Once()

	order, err := service.InitiateOrder("buyer-1", "listing-1", 4500, "would you take 4500?")

	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, "seller-1", order.SellerID)
	assert.Equal(t, 4500.0, order.OfferPrice)
	orderRepo.AssertExpectations(t)
	listingRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
	notifier.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestOrderService_InitiateOrder_NegativePrice(t *testing.T) {
	service, _, _, _, _, _ := newOrderServiceFixture()

	_, err := service.InitiateOrder("buyer-1", "listing-1", -1, "")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrInvalidState))
}

func TestOrderService_InitiateOrder_ListingNotFound(t *testing.T) {
	service, _, listingRepo, _, _, _ := newOrderServiceFixture()

	listingRepo.On("GetByID", "listing-99").Return(nil, repositories.ErrNotFound).Once()

	_, err := service.InitiateOrder("buyer-1", "listing-99", 100, "")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrNotFound))
	listingRepo.AssertExpectations(t)
}

func TestOrderService_InitiateOrder_UnavailableListing(t *testing.T) {
	service, _, listingRepo, _, _, _ := newOrderServiceFixture()

	listing := availableListing()
	listing.IsAvailable = false
	listingRepo.On("GetByID", "listing-1").Return(listing, nil).Once()

	_, err := service.InitiateOrder("buyer-1", "listing-1", 100, "")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrInvalidState))
	listingRepo.AssertExpectations(t)
}

func TestOrderService_InitiateOrder_OwnListing(t *testing.T) {
	service, _, listingRepo, _, _, _ := newOrderServiceFixture()

	listingRepo.On("GetByID", "listing-1").Return(availableListing(), nil).Once()

	_, err := service.InitiateOrder("seller-1", "listing-1", 100, "")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrForbidden))
	listingRepo.AssertExpectations(t)
}

func TestOrderService_InitiateOrder_DuplicatePending(t *testing.T) {
	service, orderRepo, listingRepo, _, _, _ := newOrderServiceFixture()

	listingRepo.On("GetByID", "listing-1").Return(availableListing(), nil).Once()
	orderRepo.On("HasPendingOrder", "buyer-1", "listing-1").Return(true, nil).Once()

	_, err := service.InitiateOrder("buyer-1", "listing-1", 100, "")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrConflict))
	orderRepo.AssertExpectations(t)
	listingRepo.AssertExpectations(t)
}

func TestOrderService_AcceptOrder(t *testing.T) {
	service, orderRepo, listingRepo, _, notifier, publisher := newOrderServiceFixture()

	order := &models.Order{
		ID:            "order-1",
		BuyerID:       "buyer-1",
		SellerID:      "seller-1",
		ListingID:     "listing-1",
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
	}
	orderRepo.On("GetByID", "order-1").Return(order, nil).Once()
	listingRepo.On("GetByID", "listing-1").Return(availableListing(), nil).Once()
	listingRepo.On("SetAvailabilityIf", "listing-1", true, false).Return(true, nil).Once()
	orderRepo.On("UpdateStatus", "order-1", models.OrderStatusAccepted, models.PaymentStatusPending).Return(nil).Once()
	notifier.On("CreateAndEmit", "buyer-1", "seller-1", models.NotificationTransaction,
		mock.AnythingOfType("string"), "/order/order-1").Return(&models.Notification{}, nil).Once()
	publisher.On("Publish", "", rabbitmq.OrderEventsQueue, mock.AnythingOfType("[]uint8")).Return(nil).Once()

	updated, err := service.UpdateOrderStatus("seller-1", "order-1", models.OrderStatusAccepted)

	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusAccepted, updated.Status)
	orderRepo.AssertExpectations(t)
	listingRepo.AssertExpectations(t)
	notifier.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestOrderService_AcceptOrder_LostAvailabilityRace(t *testing.T) {
	service, orderRepo, listingRepo, _, _, _ := newOrderServiceFixture()

	order := &models.Order{
		ID:        "order-1",
		BuyerID:   "buyer-1",
		SellerID:  "seller-1",
		ListingID: "listing-1",
		Status:    models.OrderStatusPending,
	}
	orderRepo.On("GetByID", "order-1").Return(order, nil).Once()
	listingRepo.On("GetByID", "listing-1").Return(availableListing(), nil).Once()
	// Another accepted order flipped the listing first.
	listingRepo.On("SetAvailabilityIf", "listing-1", true, false).Return(false, nil).Once()

	_, err := service.UpdateOrderStatus("seller-1", "order-1", models.OrderStatusAccepted)

	assert.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrConflict))
	orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	orderRepo.AssertExpectations(t)
	listingRepo.AssertExpectations(t)
}

func TestOrderService_RejectOrder(t *testing.T) {
	service, orderRepo, listingRepo, _, notifier, publisher := newOrderServiceFixture()

	order := &models.Order{
		ID:        "order-1",
		BuyerID:   "buyer-1",
		SellerID:  "seller-1",
		ListingID: "listing-1",
		Status:    models.OrderStatusPending,
	}
	orderRepo.On("GetByID", "order-1").Return(order, nil).Once()
	listingRepo.On("GetByID", "listing-1").Return(availableListing(), nil).Once()
	orderRepo.On("UpdateStatus", "order-1", models.OrderStatusRejected, "").Return(nil).Once()
	notifier.On("CreateAndEmit", "buyer-1", "seller-1", models.NotificationTransaction,
		mock.AnythingOfType("string"), "/order/order-1").Return(&models.Notification{}, nil).Once()
	publisher.On("Publish", "", rabbitmq.OrderEventsQueue, mock.AnythingOfType("[]uint8")).Return(nil).Once()

	updated, err := service.UpdateOrderStatus("seller-1", "order-1", models.OrderStatusRejected)

	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusRejected, updated.Status)
	// Rejection never touches listing availability.
	listingRepo.AssertNotCalled(t, "SetAvailabilityIf", mock.Anything, mock.Anything, mock.Anything)
	orderRepo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestOrderService_CompleteOrder(t *testing.T) {
	service, orderRepo, listingRepo, _, notifier, publisher := newOrderServiceFixture()

	order := &models.Order{
		ID:            "order-1",
		BuyerID:       "buyer-1",
		SellerID:      "seller-1",
		ListingID:     "listing-1",
		Status:        models.OrderStatusAccepted,
		PaymentStatus: models.PaymentStatusPending,
	}
	listing := availableListing()
	listing.IsAvailable = false
	orderRepo.On("GetByID", "order-1").Return(order, nil).Once()
	listingRepo.On("GetByID", "listing-1").Return(listing, nil).Once()
	listingRepo.On("SetAvailabilityIf", "listing-1", true, false).Return(false, nil).Once()
	orderRepo.On("UpdateStatus", "order-1", models.OrderStatusCompleted, models.PaymentStatusPaid).Return(nil).Once()
	notifier.On("CreateAndEmit", "buyer-1", "seller-1", models.NotificationTransaction,
		mock.AnythingOfType("string"), "/order/order-1").Return(&models.Notification{}, nil).Once()
	publisher.On("Publish", "", rabbitmq.OrderEventsQueue, mock.AnythingOfType("[]uint8")).Return(nil).Once()

	updated, err := service.UpdateOrderStatus("seller-1", "order-1", models.OrderStatusCompleted)

	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, updated.Status)
	assert.Equal(t, models.PaymentStatusPaid, updated.PaymentStatus)
	orderRepo.AssertExpectations(t)
	listingRepo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestOrderService_CompleteOrder_RequiresAccepted(t *testing.T) {
	service, orderRepo, listingRepo, _, _, _ := newOrderServiceFixture()

	order := &models.Order{
		ID:        "order-1",
		BuyerID:   "buyer-1",
		SellerID:  "seller-1",
		ListingID: "listing-1",
		Status:    models.OrderStatusPending,
	}
	orderRepo.On("GetByID", "order-1").Return(order, nil).Once()
	listingRepo.On("GetByID", "listing-1").Return(availableListing(), nil).Once()

	_, err := service.UpdateOrderStatus("seller-1", "order-1", models.OrderStatusCompleted)

	assert.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrInvalidState))
	orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_UpdateOrderStatus_TerminalOrder(t *testing.T) {
	service, orderRepo, _, _, _, _ := newOrderServiceFixture()

	for _, status := range []string{models.OrderStatusCompleted, models.OrderStatusRejected, models.OrderStatusCancelled} {
		order := &models.Order{
			ID:       "order-1",
			SellerID: "seller-1",
			Status:   status,
		}
		orderRepo.On("GetByID", "order-1").Return(order, nil).Once()

		_, err := service.UpdateOrderStatus("seller-1", "order-1", models.OrderStatusAccepted)

		assert.Error(t, err)
		assert.True(t, errors.Is(err, services.ErrInvalidState))
		assert.Contains(t, err.Error(), status)
	}
	orderRepo.AssertExpectations(t)
}

func TestOrderService_UpdateOrderStatus_WrongSeller(t *testing.T) {
	service, orderRepo, _, _, _, _ := newOrderServiceFixture()

	order := &models.Order{
		ID:       "order-1",
		SellerID: "seller-1",
		Status:   models.OrderStatusPending,
	}
	orderRepo.On("GetByID", "order-1").Return(order, nil).Once()

	_, err := service.UpdateOrderStatus("seller-2", "order-1", models.OrderStatusAccepted)

	assert.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrForbidden))
	orderRepo.AssertExpectations(t)
}

func TestOrderService_UpdateOrderStatus_InvalidStatus(t *testing.T) {
	service, _, _, _, _, _ := newOrderServiceFixture()

	_, err := service.UpdateOrderStatus("seller-1", "order-1", "shipped")

	assert.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrInvalidState))
}

func TestOrderService_UpdateOrderStatus_NotFound(t *testing.T) {
	service, orderRepo, _, _, _, _ := newOrderServiceFixture()

	orderRepo.On("GetByID", "order-99").Return(nil, repositories.ErrNotFound).Once()

	_, err := service.UpdateOrderStatus("seller-1", "order-99", models.OrderStatusAccepted)

	assert.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrNotFound))
	orderRepo.AssertExpectations(t)
}

// TestOrderService_ConcurrentAccepts drives the accept path with the
// in-memory repositories instead of call-recording mocks: many pending
// orders on one listing are accepted concurrently and exactly one may
// win the availability flip.
func TestOrderService_ConcurrentAccepts(t *testing.T) {
	orderRepo := repositories.NewMockOrderRepository()
	listingRepo := repositories.NewMockListingRepository()
	service := services.NewOrderService(orderRepo, listingRepo, nil, nil, nil)

	listing := availableListing()
	assert.NoError(t, listingRepo.Create(listing))

	const competitors = 8
	orderIDs := make([]string, competitors)
	for i := 0; i < competitors; i++ {
		order := &models.Order{
			BuyerID:       fmt.Sprintf("buyer-%d", i),
			SellerID:      listing.SellerID,
			ListingID:     listing.ID,
			OfferPrice:    1000,
			Status:        models.OrderStatusPending,
			PaymentStatus: models.PaymentStatusPending,
		}
		assert.NoError(t, orderRepo.Create(order))
		orderIDs[i] = order.ID
	}

	var wg sync.WaitGroup
	var accepted int32
	for _, orderID := range orderIDs {
		wg.Add(1)
		go func(orderID string) {
			defer wg.Done()
			if _, err := service.UpdateOrderStatus(listing.SellerID, orderID, models.OrderStatusAccepted); err == nil {
				atomic.AddInt32(&accepted, 1)
			} else {
				assert.True(t, errors.Is(err, services.ErrConflict))
			}
		}(orderID)
	}
	wg.Wait()

	assert.Equal(t, int32(1), accepted)
	updatedListing, err := listingRepo.GetByID(listing.ID)
	assert.NoError(t, err)
	assert.False(t, updatedListing.IsAvailable)
}
