package middleware

import (
	"github.com/go-pkgz/auth/v2/token"
	"github.com/gofiber/fiber/v2"
	"github.com/lumina-gallery/lumina/auth"
)

// AuthMiddleware verifies the bearer token (or JWT cookie) on every request
// and stores the claims in the request context.
func AuthMiddleware(verifier *auth.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		var tokenStr string

		if authHeader != "" && len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		} else {
			tokenStr = c.Cookies("JWT")
		}

		if tokenStr == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status":  "error",
				"message": "You are not authorized!",
				"data":    nil,
			})
		}

		claims, err := verifier.Parse(tokenStr)
		if err != nil || claims.User == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status":  "error",
				"message": "Invalid token",
				"data":    nil,
			})
		}

		c.Locals("user", *claims.User)
		c.Locals("claims", claims)

		return c.Next()
	}
}

// OwnerID extracts the authenticated caller's identifier, the owner scope for
// all gallery operations.
func OwnerID(c *fiber.Ctx) (string, error) {
	user, ok := c.Locals("user").(token.User)
	if !ok || user.ID == "" {
		return "", fiber.ErrUnauthorized
	}
	return user.ID, nil
}
