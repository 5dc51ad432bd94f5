package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/owaste/rewards-service/internal/domain"
)

// Demo account credentials for local runs.
const (
	DemoName     = "John Doe"
	DemoEmail    = "john@owaste.app"
	DemoPassword = "recycle-more"
	DemoPoints   = 1250
)

// DemoLedger returns the sample history shown to the demo account.
func DemoLedger(userID string) []domain.Transaction {
	at := func(s string) time.Time {
		ts, _ := time.Parse(time.RFC3339, s)
		return ts
	}
	coffee, tree := 1, 3
	cash := decimal.NewFromInt(150000)
	return []domain.Transaction{
		{ID: "txn_001", UserID: userID, Type: domain.TransactionEarned, Category: domain.CategoryRecycling, Amount: 50, Description: "Plastic bottles recycled", Location: "Bin #A123 - Main Street", OccurredAt: at("2024-01-15T10:30:00Z"), Status: domain.StatusCompleted, WasteType: "plastic"},
		{ID: "txn_002", UserID: userID, Type: domain.TransactionRedeemed, Category: domain.CategoryReward, Amount: -500, Description: "Coffee voucher redeemed", Location: "Green Cafe - Downtown", OccurredAt: at("2024-01-14T14:15:00Z"), Status: domain.StatusCompleted, RewardID: &coffee},
		{ID: "txn_003", UserID: userID, Type: domain.TransactionEarned, Category: domain.CategoryRecycling, Amount: 75, Description: "Metal cans deposited", Location: "Bin #B456 - Park Avenue", OccurredAt: at("2024-01-13T09:45:00Z"), Status: domain.StatusCompleted, WasteType: "metal"},
		{ID: "txn_004", UserID: userID, Type: domain.TransactionConverted, Category: domain.CategoryCashout, Amount: -1000, Description: "Points converted to cash", Location: "O'Waste App", OccurredAt: at("2024-01-12T16:20:00Z"), Status: domain.StatusProcessing, CashAmount: &cash},
		{ID: "txn_005", UserID: userID, Type: domain.TransactionEarned, Category: domain.CategoryRecycling, Amount: 25, Description: "Paper waste recycled", Location: "Bin #C789 - University Campus", OccurredAt: at("2024-01-12T11:10:00Z"), Status: domain.StatusCompleted, WasteType: "paper"},
		{ID: "txn_006", UserID: userID, Type: domain.TransactionEarned, Category: domain.CategoryBonus, Amount: 100, Description: "Weekly recycling bonus", Location: "O'Waste Rewards", OccurredAt: at("2024-01-10T00:00:00Z"), Status: domain.StatusCompleted},
		{ID: "txn_007", UserID: userID, Type: domain.TransactionRedeemed, Category: domain.CategoryReward, Amount: -750, Description: "Plant a tree donation", Location: "EcoForest Initiative", OccurredAt: at("2024-01-08T13:30:00Z"), Status: domain.StatusCompleted, RewardID: &tree},
		{ID: "txn_008", UserID: userID, Type: domain.TransactionEarned, Category: domain.CategoryRecycling, Amount: 60, Description: "Glass bottles recycled", Location: "Bin #D012 - Shopping Mall", OccurredAt: at("2024-01-07T15:45:00Z"), Status: domain.StatusCompleted, WasteType: "glass"},
	}
}

// SeedDemo creates the demo member with its sample history. It does nothing
// when the demo email already exists.
func SeedDemo(ctx context.Context, users UserRepository, ledger LedgerRepository, passwordHash string) (*domain.User, error) {
	if existing, err := users.GetByEmail(ctx, DemoEmail); err == nil {
		return existing, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	user := &domain.User{
		Name:         DemoName,
		Email:        DemoEmail,
		PasswordHash: passwordHash,
		Status:       domain.UserStatusActive,
		Points:       DemoPoints,
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, err
	}
	for _, txn := range DemoLedger(user.ID) {
		txn := txn
		// ids are per member in Postgres, keep them unique across seeds
		txn.ID = user.ID[:8] + "_" + txn.ID
		if err := ledger.Append(ctx, &txn); err != nil {
			return nil, err
		}
	}
	return user, nil
}
