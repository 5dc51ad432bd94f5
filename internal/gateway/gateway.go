// Package gateway holds the outbound collaborators of the wallet: cash
// payouts and reward fulfillment. The simulated implementations only wait.
package gateway

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/owaste/rewards-service/internal/domain"
)

// PaymentGateway sends converted points out as cash.
type PaymentGateway interface {
	Payout(ctx context.Context, userID string, points int, cash decimal.Decimal) (string, error)
}

// RewardFulfiller delivers a redeemed reward to the member.
type RewardFulfiller interface {
	Fulfill(ctx context.Context, userID string, reward domain.Reward) (string, error)
}

// Simulated satisfies both gateways after a fixed latency.
type Simulated struct {
	PayoutDelay  time.Duration
	FulfillDelay time.Duration
	Logger       *zap.Logger
}

// Payout waits PayoutDelay and returns a payout reference.
func (s *Simulated) Payout(ctx context.Context, userID string, points int, cash decimal.Decimal) (string, error) {
	if err := sleep(ctx, s.PayoutDelay); err != nil {
		return "", err
	}
	ref := "payout_" + uuid.NewString()
	s.logger().Info("simulated payout",
		zap.String("user_id", userID),
		zap.Int("points", points),
		zap.String("cash_idr", cash.StringFixed(2)),
		zap.String("reference", ref))
	return ref, nil
}

// Fulfill waits FulfillDelay and returns a voucher reference.
func (s *Simulated) Fulfill(ctx context.Context, userID string, reward domain.Reward) (string, error) {
	if err := sleep(ctx, s.FulfillDelay); err != nil {
		return "", err
	}
	ref := "voucher_" + uuid.NewString()
	s.logger().Info("simulated fulfillment",
		zap.String("user_id", userID),
		zap.Int("reward_id", reward.ID),
		zap.String("reference", ref))
	return ref, nil
}

func (s *Simulated) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
