package handlers

import (
	"errors"

	"passitpal/internal/services"

	"github.com/gofiber/fiber/v2"
)

// errorStatus maps service layer sentinel errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrInvalidState):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func errorResponse(c *fiber.Ctx, err error) error {
	return c.Status(errorStatus(err)).JSON(fiber.Map{
		"message": err.Error(),
	})
}
