package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/minibank/minibank/internal/account"
)

// RegisterAccountRoutes wires account provisioning endpoints.
func RegisterAccountRoutes(api fiber.Router, h *account.Handler) {
	api.Post("/accounts", h.Create)
	api.Get("/accounts/:userId", h.ListByOwner)
}
