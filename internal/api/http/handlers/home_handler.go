package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/owaste/rewards-service/internal/api/dto"
	"github.com/owaste/rewards-service/internal/service"
)

// HomeHandler serves the dashboard.
type HomeHandler struct {
	home *service.HomeService
}

// NewHomeHandler constructs handler.
func NewHomeHandler(home *service.HomeService) *HomeHandler {
	return &HomeHandler{home: home}
}

// Dashboard handles GET /home.
func (h *HomeHandler) Dashboard(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	dash, err := h.home.Dashboard(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewHomeResponse(dash))
}

// MarkRead handles POST /home/notifications/read.
func (h *HomeHandler) MarkRead(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.home.MarkNotificationsRead(c.UserContext(), user.ID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
