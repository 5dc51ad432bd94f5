package dto

import (
	"time"

	"github.com/owaste/rewards-service/internal/service"
)

// CameraRequest carries the device's permission answer.
type CameraRequest struct {
	Granted    *bool  `json:"granted"`
	FacingMode string `json:"facing_mode"`
}

// ScanOutcomeResponse is a decoded bin code.
type ScanOutcomeResponse struct {
	QRData    string    `json:"qr_data"`
	WasteType string    `json:"waste_type"`
	Name      string    `json:"name"`
	Points    int       `json:"points"`
	ScannedAt time.Time `json:"scanned_at"`
}

// ScanStatusResponse is the scanner view state.
type ScanStatusResponse struct {
	State     string               `json:"state"`
	Outcome   *ScanOutcomeResponse `json:"outcome,omitempty"`
	LastError string               `json:"last_error,omitempty"`
}

// NewScanStatusResponse maps a scan status.
func NewScanStatusResponse(st service.ScanStatus) ScanStatusResponse {
	resp := ScanStatusResponse{State: string(st.State), LastError: st.LastError}
	if o := st.Outcome; o != nil {
		resp.Outcome = &ScanOutcomeResponse{
			QRData:    o.QRData,
			WasteType: o.WasteType.ID,
			Name:      o.WasteType.Name,
			Points:    o.Points,
			ScannedAt: o.ScannedAt,
		}
	}
	return resp
}
