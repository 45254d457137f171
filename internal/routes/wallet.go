package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/taka-pay/taka_pay/internal/wallet"
)

// RegisterWalletRoutes wires every session-scoped account operation.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	r.Post("/auth/logout", h.Logout)

	r.Get("/account", h.Details)
	r.Get("/account/balance", h.Balance)
	r.Get("/account/transactions", h.History)

	r.Post("/account/deposit", h.Deposit)
	r.Post("/account/withdraw", h.Withdraw)
	r.Post("/account/transfer", h.Transfer)
	r.Post("/account/convocation", h.PayConvocation)
	r.Post("/account/bills", h.PayBill)

	r.Put("/account/profile", h.UpdateProfile)
	r.Put("/account/pin", h.ChangePIN)
	r.Delete("/account", h.Delete)
}
