package history

import (
	"time"

	"github.com/owaste/rewards-service/internal/domain"
)

// WeeklyBonusDescription labels ledger entries paid out by the weekly challenge.
const WeeklyBonusDescription = "Weekly recycling bonus"

// ChallengeProgress is the member's standing in the current ISO week.
type ChallengeProgress struct {
	Target       int  `json:"target"`
	Count        int  `json:"count"`
	BonusPoints  int  `json:"bonus_points"`
	BonusAwarded bool `json:"bonus_awarded"`
}

// Remaining is how many more deposits earn the bonus.
func (p ChallengeProgress) Remaining() int {
	if p.Count >= p.Target {
		return 0
	}
	return p.Target - p.Count
}

// WeeklyProgress counts recycling deposits in now's ISO week and whether the
// week's bonus was already paid.
func WeeklyProgress(txns []domain.Transaction, target, bonus int, now time.Time) ChallengeProgress {
	p := ChallengeProgress{Target: target, BonusPoints: bonus}
	for _, t := range txns {
		if !sameISOWeek(t.OccurredAt, now) {
			continue
		}
		switch {
		case t.Type == domain.TransactionEarned && t.Category == domain.CategoryRecycling:
			p.Count++
		case t.Category == domain.CategoryBonus && t.Description == WeeklyBonusDescription:
			p.BonusAwarded = true
		}
	}
	return p
}

func sameISOWeek(t, now time.Time) bool {
	y1, w1 := t.In(now.Location()).ISOWeek()
	y2, w2 := now.ISOWeek()
	return y1 == y2 && w1 == w2
}
