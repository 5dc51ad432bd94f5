package dto

import (
	"github.com/owaste/rewards-service/internal/history"
	"github.com/owaste/rewards-service/internal/service"
)

// NavigateRequest asks the router to move to another view.
type NavigateRequest struct {
	View string `json:"view"`
}

// ViewResponse is the member's current view.
type ViewResponse struct {
	View string `json:"view"`
}

// ChallengeResponse is the weekly challenge card.
type ChallengeResponse struct {
	Target       int  `json:"target"`
	Count        int  `json:"count"`
	Remaining    int  `json:"remaining"`
	BonusPoints  int  `json:"bonus_points"`
	BonusAwarded bool `json:"bonus_awarded"`
}

// HomeResponse is the dashboard.
type HomeResponse struct {
	Greeting     string                `json:"greeting"`
	User         UserResponse          `json:"user"`
	RecentEarned []TransactionResponse `json:"recent_earned"`
	Challenge    ChallengeResponse     `json:"challenge"`
	Unread       bool                  `json:"unread_notifications"`
}

// NewChallengeResponse maps weekly progress.
func NewChallengeResponse(p history.ChallengeProgress) ChallengeResponse {
	return ChallengeResponse{
		Target:       p.Target,
		Count:        p.Count,
		Remaining:    p.Remaining(),
		BonusPoints:  p.BonusPoints,
		BonusAwarded: p.BonusAwarded,
	}
}

// NewHomeResponse maps a dashboard.
func NewHomeResponse(d *service.Dashboard) HomeResponse {
	return HomeResponse{
		Greeting:     "Welcome back, " + d.User.Name,
		User:         NewUserResponse(d.User),
		RecentEarned: NewTransactionList(d.RecentEarned),
		Challenge:    NewChallengeResponse(d.Challenge),
		Unread:       d.Unread,
	}
}

// StatsResponse is the history summary.
type StatsResponse struct {
	TotalEarned int                      `json:"total_earned"`
	TotalSpent  int                      `json:"total_spent"`
	ThisMonth   history.PeriodStats      `json:"this_month"`
	ByWasteType []history.WasteTypeTotal `json:"by_waste_type"`
	Redemptions []TransactionResponse    `json:"redemptions"`
}

// NewStatsResponse maps history stats.
func NewStatsResponse(s history.Stats) StatsResponse {
	return StatsResponse{
		TotalEarned: s.TotalEarned,
		TotalSpent:  s.TotalSpent,
		ThisMonth:   s.ThisMonth,
		ByWasteType: s.ByWasteType,
		Redemptions: NewTransactionList(s.Redemptions),
	}
}
