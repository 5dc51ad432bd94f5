package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/owaste/rewards-service/internal/api/dto"
	"github.com/owaste/rewards-service/internal/history"
	"github.com/owaste/rewards-service/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// HistoryHandler serves the transaction history.
type HistoryHandler struct {
	history *service.HistoryService
}

// NewHistoryHandler constructs handler.
func NewHistoryHandler(h *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: h}
}

// List handles GET /history?search=&type=&status=.
func (h *HistoryHandler) List(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	txns, err := h.history.List(c.UserContext(), user.ID, filterFromQuery(c))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewTransactionList(txns))
}

// Stats handles GET /history/stats.
func (h *HistoryHandler) Stats(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	stats, err := h.history.Stats(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewStatsResponse(stats))
}

// Export handles GET /history/export, honouring the same filters as List.
func (h *HistoryHandler) Export(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	book, err := h.history.Export(c.UserContext(), user.ID, filterFromQuery(c))
	if err != nil {
		return err
	}
	name := fmt.Sprintf("owaste-history-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Status(http.StatusOK).Send(book)
}

func filterFromQuery(c *fiber.Ctx) history.Filter {
	return history.Filter{
		Search: c.Query("search"),
		Type:   c.Query("type"),
		Status: c.Query("status"),
	}
}
