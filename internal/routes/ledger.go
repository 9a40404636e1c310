package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/minibank/minibank/internal/ledger"
)

// RegisterLedgerRoutes wires the balance-mutating operations.
func RegisterLedgerRoutes(api fiber.Router, h *ledger.Handler) {
	api.Post("/deposit", h.Deposit)
	api.Post("/withdraw", h.Withdraw)
	api.Post("/transfer", h.Transfer)
	api.Get("/balance/:account", h.Balance)
}
