// Package handlers adapts HTTP requests to service calls.
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/owaste/rewards-service/internal/auth"
	"github.com/owaste/rewards-service/internal/domain"
	apperrors "github.com/owaste/rewards-service/pkg/util/errorutil"
)

func currentUser(c *fiber.Ctx) (*domain.User, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal.User, nil
}

func data(c *fiber.Ctx, status int, payload any) error {
	return c.Status(status).JSON(fiber.Map{"data": payload})
}

func invalidPayload() error {
	return apperrors.NewValidationError("invalid payload", nil)
}
