package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/owaste/rewards-service/internal/api/dto"
	"github.com/owaste/rewards-service/internal/service"
	apperrors "github.com/owaste/rewards-service/pkg/util/errorutil"
)

// UsersHandler exposes auth endpoints for members.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// Register handles POST /auth/users/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}

	res, err := h.auth.RegisterUser(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, sessionResponse(res))
}

// Login handles POST /auth/users/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	res, err := h.auth.LoginUser(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, sessionResponse(res))
}

// Logout handles POST /auth/logout.
func (h *UsersHandler) Logout(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	view, err := h.auth.Logout(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.ViewResponse{View: string(view)})
}

// Me handles GET /me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewUserResponse(user))
}

func sessionResponse(res *service.AuthResult) dto.SessionResponse {
	return dto.SessionResponse{
		User: dto.NewUserResponse(res.User),
		Auth: dto.AuthResponse{
			Token:     res.AccessToken,
			TokenType: "Bearer",
			ExpiresAt: res.Token.ExpiresAt,
		},
		View: string(res.View),
	}
}
