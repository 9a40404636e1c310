package account

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes account provisioning endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds an account HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	OwnerID string `json:"owner_id"`
	Type    string `json:"type"`
}

type accountResponse struct {
	AccountNumber string `json:"account_number"`
	OwnerID       string `json:"owner_id"`
	Type          string `json:"type"`
	Balance       int64  `json:"balance"`
}

// Create opens a new account with a zero balance.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	acct, err := h.service.Create(c.UserContext(), req.OwnerID, req.Type)
	if err != nil {
		if errors.Is(err, ErrOwnerRequired) {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(accountResponse{
		AccountNumber: acct.AccountNumber,
		OwnerID:       acct.OwnerID,
		Type:          acct.Type,
		Balance:       acct.Balance,
	})
}

// ListByOwner returns the accounts owned by a user.
func (h *Handler) ListByOwner(c *fiber.Ctx) error {
	ownerID := c.Params("userId")
	accounts, err := h.service.ListByOwner(c.UserContext(), ownerID)
	if err != nil {
		if errors.Is(err, ErrOwnerRequired) {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]accountResponse, 0, len(accounts))
	for _, acct := range accounts {
		out = append(out, accountResponse{
			AccountNumber: acct.AccountNumber,
			OwnerID:       acct.OwnerID,
			Type:          acct.Type,
			Balance:       acct.Balance,
		})
	}
	return c.Status(http.StatusOK).JSON(out)
}
