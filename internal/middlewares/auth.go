package middlewares

import (
	"strings"

	"github.com/aaryankalra/auth-starter-kit/internal/services"
	"github.com/gofiber/fiber/v2"
)

const userIDKey = "userID"

// RequireAuth extracts the session token from the Authorization header
// (Bearer scheme) or the token cookie, verifies it and stores the user ID in
// the request locals.
func RequireAuth(authSvc services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := ""
		if auth := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimPrefix(auth, "Bearer ")
		} else {
			token = c.Cookies("token")
		}
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "no token provided",
			})
		}

		userID, err := authSvc.VerifySessionToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "invalid or expired token",
			})
		}

		c.Locals(userIDKey, userID)
		return c.Next()
	}
}

// UserIDFromCtx returns the authenticated user ID set by RequireAuth.
func UserIDFromCtx(c *fiber.Ctx) (string, bool) {
	id, ok := c.Locals(userIDKey).(string)
	return id, ok && id != ""
}
