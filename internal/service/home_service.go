package service

import (
	"context"
	"time"

	"github.com/owaste/rewards-service/internal/config"
	"github.com/owaste/rewards-service/internal/domain"
	"github.com/owaste/rewards-service/internal/history"
	"github.com/owaste/rewards-service/internal/repository"
)

const recentEarnedLimit = 2

// Dashboard is the home screen of a signed-in member.
type Dashboard struct {
	User         *domain.User
	RecentEarned []domain.Transaction
	Challenge    history.ChallengeProgress
	Unread       bool
}

// HomeService assembles the member dashboard.
type HomeService struct {
	users     repository.UserRepository
	ledger    repository.LedgerRepository
	sessions  repository.SessionStore
	challenge config.ChallengeConfig
	now       func() time.Time
}

// NewHomeService constructs the service.
func NewHomeService(challenge config.ChallengeConfig, users repository.UserRepository, ledger repository.LedgerRepository, sessions repository.SessionStore) *HomeService {
	return &HomeService{users: users, ledger: ledger, sessions: sessions, challenge: challenge, now: time.Now}
}

// Dashboard returns the greeting data, latest deposits and weekly progress.
func (s *HomeService) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	txns, err := s.ledger.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	unread, err := s.sessions.Unread(ctx, userID)
	if err != nil {
		return nil, err
	}

	earned := make([]domain.Transaction, 0, recentEarnedLimit)
	for _, t := range txns {
		if t.Type != domain.TransactionEarned {
			continue
		}
		earned = append(earned, t)
		if len(earned) == recentEarnedLimit {
			break
		}
	}
	return &Dashboard{
		User:         user,
		RecentEarned: earned,
		Challenge:    history.WeeklyProgress(txns, s.challenge.WeeklyTarget, s.challenge.BonusPoints, s.now()),
		Unread:       unread,
	}, nil
}

// MarkNotificationsRead clears the unread flag.
func (s *HomeService) MarkNotificationsRead(ctx context.Context, userID string) error {
	return s.sessions.SetUnread(ctx, userID, false)
}
