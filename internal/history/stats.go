package history

import (
	"time"

	"github.com/owaste/rewards-service/internal/domain"
)

// PeriodStats summarizes entries that fall in a period.
type PeriodStats struct {
	Count  int `json:"count"`
	Earned int `json:"earned"`
	Spent  int `json:"spent"`
}

// WasteTypeTotal is the deposit count and points for one material.
type WasteTypeTotal struct {
	WasteType string `json:"waste_type"`
	Deposits  int    `json:"deposits"`
	Points    int    `json:"points"`
}

// Stats aggregates a full ledger.
type Stats struct {
	TotalEarned int
	TotalSpent  int
	ThisMonth   PeriodStats
	ByWasteType []WasteTypeTotal
	Redemptions []domain.Transaction
}

// Compute scans the whole ledger. wasteTypes fixes the order of the
// per-material totals; now selects the current month.
func Compute(txns []domain.Transaction, wasteTypes []string, now time.Time) Stats {
	st := Stats{ByWasteType: make([]WasteTypeTotal, len(wasteTypes))}
	index := make(map[string]int, len(wasteTypes))
	for i, id := range wasteTypes {
		st.ByWasteType[i] = WasteTypeTotal{WasteType: id}
		index[id] = i
	}

	for _, t := range txns {
		if t.IsSpend() && t.Status == domain.StatusFailed {
			// refunded
			continue
		}
		switch {
		case t.Type == domain.TransactionEarned:
			st.TotalEarned += t.Amount
		case t.IsSpend():
			st.TotalSpent += abs(t.Amount)
		}

		if sameMonth(t.OccurredAt, now) {
			st.ThisMonth.Count++
			if t.Type == domain.TransactionEarned {
				st.ThisMonth.Earned += t.Amount
			} else if t.IsSpend() {
				st.ThisMonth.Spent += abs(t.Amount)
			}
		}

		if i, ok := index[t.WasteType]; ok && t.WasteType != "" {
			st.ByWasteType[i].Deposits++
			st.ByWasteType[i].Points += t.Amount
		}

		if t.Type == domain.TransactionRedeemed {
			st.Redemptions = append(st.Redemptions, t)
		}
	}
	return st
}

func sameMonth(t, now time.Time) bool {
	t = t.In(now.Location())
	return t.Year() == now.Year() && t.Month() == now.Month()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
