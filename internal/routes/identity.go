package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/minibank/minibank/internal/identity"
)

// RegisterIdentityRoutes wires signup, login and profile endpoints.
func RegisterIdentityRoutes(api fiber.Router, h *identity.Handler, loginLimiter fiber.Handler) {
	api.Post("/signup", h.Signup)
	api.Post("/login", loginLimiter, h.Login)
	api.Get("/profile/:userId", h.Profile)
	api.Put("/profile/:userId", h.UpdateProfile)
}
