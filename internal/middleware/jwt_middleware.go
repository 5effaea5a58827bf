package middleware

import (
	"fmt"
	"log"
	"strings"

	"passitpal/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthRequired is a Fiber middleware to check for a valid JWT token.
// It loads the account behind the token, so revoked and blocked users
// are rejected per request even while their token is still unexpired.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		user, err := authService.UserFromToken(parts[1])
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}

		// Store identity in Fiber context for subsequent handlers
		c.Locals("user_id", user.ID)
		c.Locals("username", user.Username)
		c.Locals("user_role", user.Role)

		// Continue to the next handler
		return c.Next()
	}
}

// RequireRole allows only callers whose account holds the given role.
// It must run after AuthRequired.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerRole, _ := c.Locals("user_role").(string)
		if callerRole != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": fmt.Sprintf("Only users with the %s role can access this resource", role),
			})
		}
		return c.Next()
	}
}
