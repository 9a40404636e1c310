package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/minibank/minibank/internal/statement"
)

// RegisterStatementRoutes wires transaction history and export endpoints.
func RegisterStatementRoutes(api fiber.Router, h *statement.Handler) {
	api.Get("/transactions/:account", h.Transactions)
	api.Get("/transactions/:account/export", h.ExportCSV)
}
