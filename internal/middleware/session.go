package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/taka-pay/taka_pay/internal/session"
)

// SessionAuth resolves the bearer token against the session manager and
// stores the session's phone number and token in locals for handlers.
func SessionAuth(sessions *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		token := strings.TrimSpace(authz[len("Bearer "):])

		phone, err := sessions.Resolve(token)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "session expired or revoked")
		}

		c.Locals("session_phone", phone)
		c.Locals("session_token", token)
		return c.Next()
	}
}
