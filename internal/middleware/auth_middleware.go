package middleware

import (
	"strings"

	"go-pos-sync/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// RequireAuth validates the session token and sets operator info in the
// request context for downstream handlers
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		claims, err := jwt.ValidateToken(parts[1])
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		c.Locals("operator_id", claims.OperatorID.String())
		c.Locals("operator_name", claims.Name)
		c.Locals("demo", claims.Demo)

		return c.Next()
	}
}
