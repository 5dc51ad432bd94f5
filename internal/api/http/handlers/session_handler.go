package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/owaste/rewards-service/internal/api/dto"
	"github.com/owaste/rewards-service/internal/service"
)

// SessionHandler exposes the app shell router.
type SessionHandler struct {
	nav *service.NavigationService
}

// NewSessionHandler constructs handler.
func NewSessionHandler(nav *service.NavigationService) *SessionHandler {
	return &SessionHandler{nav: nav}
}

// View handles GET /session/view.
func (h *SessionHandler) View(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	view, err := h.nav.Current(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.ViewResponse{View: string(view)})
}

// Navigate handles POST /session/navigate.
func (h *SessionHandler) Navigate(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.NavigateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	view, err := h.nav.Navigate(c.UserContext(), user.ID, req.View)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.ViewResponse{View: string(view)})
}
