package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saulet/grocery-compare/pkg/auth"
)

// AuthMiddleware resolves the caller's identity. A valid Bearer token
// identifies a signed-in user; without one the caller may present an
// X-Guest-ID header to get a demo session that never touches the
// remote store. The resolved identity travels to the cart service as
// X-User-ID / X-Demo headers, overwriting anything the client sent.
func AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Request().Header.Del("X-User-ID")
		c.Request().Header.Del("X-Demo")

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			guestID := c.Get("X-Guest-ID")
			if guestID == "" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Authorization header or X-Guest-ID required",
				})
			}

			c.Locals("user_id", guestID)
			c.Locals("demo", true)
			c.Request().Header.Set("X-User-ID", guestID)
			c.Request().Header.Set("X-Demo", "true")
			return c.Next()
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}

		claims, err := auth.ValidateToken(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("demo", claims.Demo)

		c.Request().Header.Set("X-User-ID", claims.UserID)
		if claims.Demo {
			c.Request().Header.Set("X-Demo", "true")
		} else {
			c.Request().Header.Set("X-Demo", "false")
		}

		return c.Next()
	}
}
