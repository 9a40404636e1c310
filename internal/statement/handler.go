package statement

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/minibank/minibank/internal/ledger"
)

// Handler exposes transaction history endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a statement handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Transactions returns the statement as JSON, most recent first.
func (h *Handler) Transactions(c *fiber.Ctx) error {
	account := c.Params("account")
	entries, err := h.service.Transactions(c.UserContext(), account)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(entries)
}

// ExportCSV returns the statement as a CSV download.
func (h *Handler) ExportCSV(c *fiber.Ctx) error {
	account := c.Params("account")
	var buf bytes.Buffer
	if err := h.service.ExportCSV(c.UserContext(), account, &buf); err != nil {
		return mapError(err)
	}
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s.csv", account))
	return c.Status(http.StatusOK).Send(buf.Bytes())
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrAccountNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrContention):
		return fiber.NewError(http.StatusConflict, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
