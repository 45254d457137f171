package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/taka-pay/taka_pay/internal/wallet"
)

// RegisterAuthRoutes wires the public registration and login endpoints.
func RegisterAuthRoutes(r fiber.Router, h *wallet.Handler, rateLimiter fiber.Handler) {
	auth := r.Group("/auth")
	auth.Post("/register", h.Register)
	if rateLimiter != nil {
		auth.Post("/login", rateLimiter, h.Login)
	} else {
		auth.Post("/login", h.Login)
	}
}
