package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/owaste/rewards-service/internal/domain"
	apperrors "github.com/owaste/rewards-service/pkg/util/errorutil"
)

// RequireUser ensures a member is authenticated.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if principal.SubjectType != domain.SubjectTypeUser || principal.User == nil {
			return apperrors.NewForbidden("member required")
		}
		return c.Next()
	}
}
