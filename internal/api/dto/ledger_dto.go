package dto

import (
	"time"

	"github.com/owaste/rewards-service/internal/domain"
)

// TransactionResponse is one ledger entry.
type TransactionResponse struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	Amount      int       `json:"amount"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Timestamp   time.Time `json:"timestamp"`
	Status      string    `json:"status"`
	WasteType   string    `json:"waste_type,omitempty"`
	RewardID    *int      `json:"reward_id,omitempty"`
	CashAmount  *string   `json:"cash_amount_idr,omitempty"`
}

// NewTransactionResponse maps a ledger entry.
func NewTransactionResponse(t domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:          t.ID,
		Type:        string(t.Type),
		Category:    string(t.Category),
		Amount:      t.Amount,
		Description: t.Description,
		Location:    t.Location,
		Timestamp:   t.OccurredAt,
		Status:      string(t.Status),
		WasteType:   t.WasteType,
		RewardID:    t.RewardID,
	}
	if t.CashAmount != nil {
		s := t.CashAmount.StringFixed(2)
		resp.CashAmount = &s
	}
	return resp
}

// NewTransactionList maps entries in order.
func NewTransactionList(txns []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, NewTransactionResponse(t))
	}
	return out
}
