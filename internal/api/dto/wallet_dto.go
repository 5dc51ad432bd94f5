package dto

import (
	"github.com/owaste/rewards-service/internal/domain"
	"github.com/owaste/rewards-service/internal/service"
)

// ConvertRequest asks to turn points into cash.
type ConvertRequest struct {
	Points int `json:"points"`
}

// WalletResponse is the balance card.
type WalletResponse struct {
	Points            int                   `json:"points"`
	CashValueIDR      string                `json:"cash_value_idr"`
	PointValueIDR     string                `json:"point_value_idr"`
	MilestonePoints   int                   `json:"milestone_points"`
	MilestoneProgress float64               `json:"milestone_progress"`
	Recent            []TransactionResponse `json:"recent"`
}

// ConvertResponse reports an accepted conversion.
type ConvertResponse struct {
	Transaction     TransactionResponse `json:"transaction"`
	Balance         int                 `json:"balance"`
	PayoutReference string              `json:"payout_reference"`
}

// RedeemResponse reports a redeemed reward.
type RedeemResponse struct {
	Transaction      TransactionResponse `json:"transaction"`
	Reward           domain.Reward       `json:"reward"`
	Balance          int                 `json:"balance"`
	VoucherReference string              `json:"voucher_reference"`
}

// NewWalletResponse maps a wallet summary.
func NewWalletResponse(s *service.WalletSummary) WalletResponse {
	return WalletResponse{
		Points:            s.Points,
		CashValueIDR:      s.CashValueIDR.StringFixed(2),
		PointValueIDR:     s.PointValueIDR.StringFixed(2),
		MilestonePoints:   s.MilestonePoints,
		MilestoneProgress: s.MilestoneProgress,
		Recent:            NewTransactionList(s.Recent),
	}
}

// NewConvertResponse maps a conversion result.
func NewConvertResponse(r *service.ConvertResult) ConvertResponse {
	return ConvertResponse{
		Transaction:     NewTransactionResponse(r.Transaction),
		Balance:         r.Balance,
		PayoutReference: r.PayoutReference,
	}
}

// NewRedeemResponse maps a redemption result.
func NewRedeemResponse(r *service.RedeemResult) RedeemResponse {
	return RedeemResponse{
		Transaction:      NewTransactionResponse(r.Transaction),
		Reward:           r.Reward,
		Balance:          r.Balance,
		VoucherReference: r.VoucherReference,
	}
}
