package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/owaste/rewards-service/internal/api/dto"
	"github.com/owaste/rewards-service/internal/service"
	apperrors "github.com/owaste/rewards-service/pkg/util/errorutil"
)

// WalletHandler exposes the e-wallet.
type WalletHandler struct {
	wallet *service.WalletService
}

// NewWalletHandler constructs handler.
func NewWalletHandler(wallet *service.WalletService) *WalletHandler {
	return &WalletHandler{wallet: wallet}
}

// Summary handles GET /wallet.
func (h *WalletHandler) Summary(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	sum, err := h.wallet.Summary(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewWalletResponse(sum))
}

// Convert handles POST /wallet/convert.
func (h *WalletHandler) Convert(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.ConvertRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	res, err := h.wallet.Convert(c.UserContext(), user.ID, req.Points)
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.NewConvertResponse(res))
}

// Redeem handles POST /wallet/rewards/:id/redeem.
func (h *WalletHandler) Redeem(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	rewardID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return apperrors.NewValidationError("reward id must be an integer", map[string]any{"id": c.Params("id")})
	}
	res, err := h.wallet.Redeem(c.UserContext(), user.ID, rewardID)
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.NewRedeemResponse(res))
}
