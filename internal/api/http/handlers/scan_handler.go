package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/owaste/rewards-service/internal/api/dto"
	"github.com/owaste/rewards-service/internal/service"
	apperrors "github.com/owaste/rewards-service/pkg/util/errorutil"
)

// ScanHandler drives the member's scan flow.
type ScanHandler struct {
	scans *service.ScanService
}

// NewScanHandler constructs handler.
func NewScanHandler(scans *service.ScanService) *ScanHandler {
	return &ScanHandler{scans: scans}
}

// Status handles GET /scan.
func (h *ScanHandler) Status(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewScanStatusResponse(h.scans.Status(user.ID)))
}

// Camera handles POST /scan/camera. It is also the retry after a denial.
func (h *ScanHandler) Camera(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CameraRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	if req.Granted == nil {
		return apperrors.NewValidationError("granted is required", nil)
	}
	st, err := h.scans.StartCamera(c.UserContext(), user.ID, *req.Granted, req.FacingMode)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewScanStatusResponse(st))
}

// Capture handles POST /scan/capture.
func (h *ScanHandler) Capture(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	st, err := h.scans.Capture(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return data(c, http.StatusAccepted, dto.NewScanStatusResponse(st))
}

// Stop handles POST /scan/stop.
func (h *ScanHandler) Stop(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	st, err := h.scans.StopCamera(user.ID)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewScanStatusResponse(st))
}

// Close handles POST /scan/close.
func (h *ScanHandler) Close(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	h.scans.Release(user.ID)
	return data(c, http.StatusOK, dto.NewScanStatusResponse(h.scans.Status(user.ID)))
}
