package history

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/owaste/rewards-service/internal/domain"
)

func ledgerFixture() []domain.Transaction {
	at := func(s string) time.Time {
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			panic(err)
		}
		return ts
	}
	cash := decimal.NewFromInt(150000)
	return []domain.Transaction{
		{ID: "txn_001", Type: domain.TransactionEarned, Category: domain.CategoryRecycling, Amount: 50, Description: "Plastic bottles recycled", Location: "Bin #A123 - Main Street", OccurredAt: at("2024-01-15T10:30:00Z"), Status: domain.StatusCompleted, WasteType: "plastic"},
		{ID: "txn_002", Type: domain.TransactionRedeemed, Category: domain.CategoryReward, Amount: -500, Description: "Coffee voucher redeemed", Location: "Green Cafe - Downtown", OccurredAt: at("2024-01-14T14:15:00Z"), Status: domain.StatusCompleted},
		{ID: "txn_003", Type: domain.TransactionEarned, Category: domain.CategoryRecycling, Amount: 75, Description: "Metal cans deposited", Location: "Bin #B456 - Park Avenue", OccurredAt: at("2024-01-13T09:45:00Z"), Status: domain.StatusCompleted, WasteType: "metal"},
		{ID: "txn_004", Type: domain.TransactionConverted, Category: domain.CategoryCashout, Amount: -1000, Description: "Points converted to cash", Location: "O'Waste App", OccurredAt: at("2024-01-12T16:20:00Z"), Status: domain.StatusProcessing, CashAmount: &cash},
		{ID: "txn_005", Type: domain.TransactionEarned, Category: domain.CategoryRecycling, Amount: 25, Description: "Paper waste recycled", Location: "Bin #C789 - University Campus", OccurredAt: at("2024-01-12T11:10:00Z"), Status: domain.StatusCompleted, WasteType: "paper"},
		{ID: "txn_006", Type: domain.TransactionEarned, Category: domain.CategoryBonus, Amount: 100, Description: WeeklyBonusDescription, Location: "O'Waste Rewards", OccurredAt: at("2024-01-10T00:00:00Z"), Status: domain.StatusCompleted},
		{ID: "txn_007", Type: domain.TransactionRedeemed, Category: domain.CategoryReward, Amount: -750, Description: "Plant a tree donation", Location: "EcoForest Initiative", OccurredAt: at("2024-01-08T13:30:00Z"), Status: domain.StatusCompleted},
		{ID: "txn_008", Type: domain.TransactionEarned, Category: domain.CategoryRecycling, Amount: 60, Description: "Glass bottles recycled", Location: "Bin #D012 - Shopping Mall", OccurredAt: at("2024-01-07T15:45:00Z"), Status: domain.StatusCompleted, WasteType: "glass"},
	}
}

func ids(txns []domain.Transaction) []string {
	out := make([]string, len(txns))
	for i, t := range txns {
		out[i] = t.ID
	}
	return out
}

func TestFilterApply(t *testing.T) {
	ledger := ledgerFixture()
	cases := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "no filter", filter: Filter{}, want: ids(ledger)},
		{name: "all keywords", filter: Filter{Type: All, Status: All}, want: ids(ledger)},
		{name: "search description", filter: Filter{Search: "BOTTLES"}, want: []string{"txn_001", "txn_008"}},
		{name: "search location", filter: Filter{Search: "park avenue"}, want: []string{"txn_003"}},
		{name: "type", filter: Filter{Type: "converted"}, want: []string{"txn_004"}},
		{name: "status", filter: Filter{Status: "processing"}, want: []string{"txn_004"}},
		{name: "earned and completed", filter: Filter{Type: "earned", Status: "completed"}, want: []string{"txn_001", "txn_003", "txn_005", "txn_006", "txn_008"}},
		{name: "search and type", filter: Filter{Search: "o'waste", Type: "earned"}, want: []string{"txn_006"}},
		{name: "nothing", filter: Filter{Status: "failed"}, want: []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ids(tc.filter.Apply(ledger))
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestFilterEarnedCompletedOnlyMatchesBoth(t *testing.T) {
	f := Filter{Type: "earned", Status: "completed"}
	for _, tx := range f.Apply(ledgerFixture()) {
		if tx.Type != domain.TransactionEarned || tx.Status != domain.StatusCompleted {
			t.Fatalf("entry %s does not satisfy both predicates", tx.ID)
		}
	}
}

func TestCompute(t *testing.T) {
	now := time.Date(2024, time.January, 20, 12, 0, 0, 0, time.UTC)
	st := Compute(ledgerFixture(), []string{"plastic", "metal", "paper", "glass"}, now)

	if st.TotalEarned != 310 {
		t.Errorf("total earned = %d, want 310", st.TotalEarned)
	}
	if st.TotalSpent != 2250 {
		t.Errorf("total spent = %d, want 2250", st.TotalSpent)
	}
	if st.ThisMonth.Count != 8 || st.ThisMonth.Earned != 310 || st.ThisMonth.Spent != 2250 {
		t.Errorf("this month = %+v", st.ThisMonth)
	}
	want := []WasteTypeTotal{
		{WasteType: "plastic", Deposits: 1, Points: 50},
		{WasteType: "metal", Deposits: 1, Points: 75},
		{WasteType: "paper", Deposits: 1, Points: 25},
		{WasteType: "glass", Deposits: 1, Points: 60},
	}
	for i, w := range want {
		if st.ByWasteType[i] != w {
			t.Errorf("by waste type[%d] = %+v, want %+v", i, st.ByWasteType[i], w)
		}
	}
	if len(st.Redemptions) != 2 {
		t.Errorf("redemptions = %d, want 2", len(st.Redemptions))
	}
}

func TestComputeSkipsRefundedSpends(t *testing.T) {
	now := time.Date(2024, time.January, 20, 12, 0, 0, 0, time.UTC)
	rewardID := 1
	txns := append(ledgerFixture(), domain.Transaction{
		ID: "refunded", Type: domain.TransactionRedeemed, Category: domain.CategoryReward,
		Amount: -500, OccurredAt: now, Status: domain.StatusFailed, RewardID: &rewardID,
	})
	st := Compute(txns, nil, now)
	if st.TotalSpent != 2250 || st.ThisMonth.Spent != 2250 {
		t.Errorf("failed redemption counted as spent: total %d, month %d", st.TotalSpent, st.ThisMonth.Spent)
	}
	if len(st.Redemptions) != 2 {
		t.Errorf("redemptions = %d, want 2", len(st.Redemptions))
	}
}

func TestComputeOtherMonth(t *testing.T) {
	now := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	st := Compute(ledgerFixture(), nil, now)
	if st.ThisMonth.Count != 0 {
		t.Errorf("expected no entries this month, got %d", st.ThisMonth.Count)
	}
	if st.TotalEarned != 310 {
		t.Errorf("totals should not depend on month, got %d", st.TotalEarned)
	}
}

func TestWeeklyProgress(t *testing.T) {
	// 2024-01-15 is a Monday; the week of 2024-01-08..14 holds the bonus.
	monday := time.Date(2024, time.January, 15, 18, 0, 0, 0, time.UTC)
	p := WeeklyProgress(ledgerFixture(), 10, 100, monday)
	if p.Count != 1 || p.BonusAwarded {
		t.Errorf("progress = %+v", p)
	}
	if p.Remaining() != 9 {
		t.Errorf("remaining = %d", p.Remaining())
	}

	prevWeek := time.Date(2024, time.January, 12, 0, 0, 0, 0, time.UTC)
	p = WeeklyProgress(ledgerFixture(), 10, 100, prevWeek)
	if p.Count != 2 || !p.BonusAwarded {
		t.Errorf("previous week progress = %+v", p)
	}
}

func TestExportXLSX(t *testing.T) {
	data, err := ExportXLSX(ledgerFixture())
	if err != nil {
		t.Fatalf("ExportXLSX: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(ExportSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 9 {
		t.Fatalf("rows = %d, want header + 8", len(rows))
	}
	if rows[0][0] != "ID" || rows[1][0] != "txn_001" {
		t.Errorf("unexpected first cells %q %q", rows[0][0], rows[1][0])
	}
	if rows[4][9] != "150000.00" {
		t.Errorf("cash cell = %q", rows[4][9])
	}
}
