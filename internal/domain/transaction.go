package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies how a ledger entry affected the balance.
type TransactionType string

const (
	TransactionEarned    TransactionType = "earned"
	TransactionRedeemed  TransactionType = "redeemed"
	TransactionConverted TransactionType = "converted"
)

// TransactionCategory groups ledger entries by origin.
type TransactionCategory string

const (
	CategoryRecycling TransactionCategory = "recycling"
	CategoryReward    TransactionCategory = "reward"
	CategoryCashout   TransactionCategory = "cashout"
	CategoryBonus     TransactionCategory = "bonus"
)

// TransactionStatus is the settlement state of a ledger entry.
type TransactionStatus string

const (
	StatusCompleted  TransactionStatus = "completed"
	StatusProcessing TransactionStatus = "processing"
	StatusFailed     TransactionStatus = "failed"
)

// Transaction is an append-only ledger entry. Amount is positive for earned
// entries and negative for redeemed or converted ones.
type Transaction struct {
	ID          string
	UserID      string
	Type        TransactionType
	Category    TransactionCategory
	Amount      int
	Description string
	Location    string
	OccurredAt  time.Time
	Status      TransactionStatus
	WasteType   string
	RewardID    *int
	CashAmount  *decimal.Decimal
}

// IsSpend reports whether the entry took points out of the balance.
func (t Transaction) IsSpend() bool {
	return t.Type == TransactionRedeemed || t.Type == TransactionConverted
}
