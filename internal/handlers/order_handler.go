package handlers

import (
	"fmt"
	"log"

	"passitpal/internal/middleware"
	"passitpal/internal/models"
	"passitpal/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
// The router is expected to already carry authentication middleware.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/initiate/:listingId", middleware.RequireRole(models.RoleBuyer), h.HandleInitiateOrder)
	orderRoutes.Get("/me", middleware.RequireRole(models.RoleBuyer), h.HandleGetMyOrders)
	orderRoutes.Get("/seller", middleware.RequireRole(models.RoleSeller), h.HandleGetSellerOrders)
	orderRoutes.Put("/:orderId/status", middleware.RequireRole(models.RoleSeller), h.HandleUpdateOrderStatus)
}

// InitiateOrderRequest represents the request body for starting an offer.
type InitiateOrderRequest struct {
	OfferPrice      float64 `json:"offer_price" validate:"gte=0"`
	MessageToSeller string  `json:"message_to_seller" validate:"max=500"`
}

// HandleInitiateOrder creates a pending offer on a listing for the
// authenticated buyer.
func (h *OrderHandler) HandleInitiateOrder(c *fiber.Ctx) error {
	buyerID, _ := c.Locals("user_id").(string)
	listingID := c.Params("listingId")

	var req InitiateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing initiate order request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	order, err := h.service.InitiateOrder(buyerID, listingID, req.OfferPrice, req.MessageToSeller)
	if err != nil {
		log.Printf("Error initiating order on listing %s: %v", listingID, err)
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order initiated successfully. Seller has been notified.",
		"order":   order,
	})
}

// HandleGetMyOrders lists the authenticated buyer's orders, newest first.
func (h *OrderHandler) HandleGetMyOrders(c *fiber.Ctx) error {
	buyerID, _ := c.Locals("user_id").(string)

	orders, err := h.service.GetBuyerOrders(buyerID)
	if err != nil {
		log.Printf("Error getting orders for buyer %s: %v", buyerID, err)
		return errorResponse(c, err)
	}
	return c.JSON(orders)
}

// HandleGetSellerOrders lists orders received on the authenticated
// seller's listings, newest first.
func (h *OrderHandler) HandleGetSellerOrders(c *fiber.Ctx) error {
	sellerID, _ := c.Locals("user_id").(string)

	orders, err := h.service.GetSellerOrders(sellerID)
	if err != nil {
		log.Printf("Error getting orders for seller %s: %v", sellerID, err)
		return errorResponse(c, err)
	}
	return c.JSON(orders)
}

// UpdateOrderStatusRequest represents the request body for a status change.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected completed"`
}

// HandleUpdateOrderStatus moves an order through its lifecycle. Only the
// seller who owns the order can act on it.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	sellerID, _ := c.Locals("user_id").(string)
	orderID := c.Params("orderId")

	var req UpdateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing status update request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body for status update",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": fmt.Sprintf("Status must be one of: %s, %s, %s", models.OrderStatusAccepted, models.OrderStatusRejected, models.OrderStatusCompleted),
		})
	}

	order, err := h.service.UpdateOrderStatus(sellerID, orderID, req.Status)
	if err != nil {
		log.Printf("Error updating order %s to %s: %v", orderID, req.Status, err)
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Order status updated to %s", req.Status),
		"order":   order,
	})
}
