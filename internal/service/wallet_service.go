package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/owaste/rewards-service/internal/catalog"
	"github.com/owaste/rewards-service/internal/config"
	"github.com/owaste/rewards-service/internal/domain"
	"github.com/owaste/rewards-service/internal/events"
	"github.com/owaste/rewards-service/internal/gateway"
	"github.com/owaste/rewards-service/internal/repository"
	apperrors "github.com/owaste/rewards-service/pkg/util/errorutil"
)

const recentActivityLimit = 4

// WalletSummary is the balance card plus recent activity.
type WalletSummary struct {
	Points            int
	CashValueIDR      decimal.Decimal
	PointValueIDR     decimal.Decimal
	MilestonePoints   int
	MilestoneProgress float64
	Recent            []domain.Transaction
}

// ConvertResult reports a completed conversion request.
type ConvertResult struct {
	Transaction     domain.Transaction
	Balance         int
	PayoutReference string
}

// RedeemResult reports a completed redemption.
type RedeemResult struct {
	Transaction      domain.Transaction
	Reward           domain.Reward
	Balance          int
	VoucherReference string
}

// WalletService converts points to cash and redeems rewards.
type WalletService struct {
	users      repository.UserRepository
	ledger     repository.LedgerRepository
	catalog    *catalog.Catalog
	locks      repository.RedemptionLock
	payments   gateway.PaymentGateway
	fulfiller  gateway.RewardFulfiller
	dispatcher events.Dispatcher
	logger     *zap.Logger

	pointValue decimal.Decimal
	milestone  int
	lockTTL    time.Duration
	now        func() time.Time
}

// WalletDependencies bundles collaborators for the wallet service.
type WalletDependencies struct {
	UserRepo   repository.UserRepository
	LedgerRepo repository.LedgerRepository
	Catalog    *catalog.Catalog
	Locks      repository.RedemptionLock
	Payments   gateway.PaymentGateway
	Fulfiller  gateway.RewardFulfiller
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewWalletService constructs the service.
func NewWalletService(cfg config.WalletConfig, deps WalletDependencies) (*WalletService, error) {
	pointValue, err := decimal.NewFromString(cfg.PointValueIDR)
	if err != nil {
		return nil, fmt.Errorf("invalid WALLET_POINT_VALUE_IDR %q: %w", cfg.PointValueIDR, err)
	}
	if !pointValue.IsPositive() {
		return nil, fmt.Errorf("WALLET_POINT_VALUE_IDR must be positive, got %s", cfg.PointValueIDR)
	}
	milestone := cfg.MilestonePoints
	if milestone <= 0 {
		milestone = 500
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WalletService{
		users:      deps.UserRepo,
		ledger:     deps.LedgerRepo,
		catalog:    deps.Catalog,
		locks:      deps.Locks,
		payments:   deps.Payments,
		fulfiller:  deps.Fulfiller,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		pointValue: pointValue,
		milestone:  milestone,
		lockTTL:    cfg.RedemptionLockTTL(),
		now:        time.Now,
	}, nil
}

// CashValue converts points into rupiah.
func (s *WalletService) CashValue(points int) decimal.Decimal {
	return s.pointValue.Mul(decimal.NewFromInt(int64(points)))
}

// Summary returns the member's balance card.
func (s *WalletService) Summary(ctx context.Context, userID string) (*WalletSummary, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	txns, err := s.ledger.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(txns) > recentActivityLimit {
		txns = txns[:recentActivityLimit]
	}
	progress := float64(user.Points%s.milestone) / float64(s.milestone) * 100
	return &WalletSummary{
		Points:            user.Points,
		CashValueIDR:      s.CashValue(user.Points),
		PointValueIDR:     s.pointValue,
		MilestonePoints:   s.milestone,
		MilestoneProgress: progress,
		Recent:            txns,
	}, nil
}

// Convert pays points out as cash. The points are debited before the payout
// gateway is called and handed back if the payout fails, so concurrent
// requests can never pay out more than the balance.
func (s *WalletService) Convert(ctx context.Context, userID string, points int) (*ConvertResult, error) {
	if points <= 0 {
		return nil, apperrors.NewValidationError("points must be a positive integer", map[string]any{"points": points})
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if points > user.Points {
		return nil, apperrors.NewInsufficientBalance(user.Points, points)
	}

	cash := s.CashValue(points)
	txn := &domain.Transaction{
		UserID:      userID,
		Type:        domain.TransactionConverted,
		Category:    domain.CategoryCashout,
		Amount:      -points,
		Description: "Points converted to cash",
		Location:    "O'Waste App",
		OccurredAt:  s.now(),
		Status:      domain.StatusProcessing,
		CashAmount:  &cash,
	}
	balance, err := s.reserve(ctx, txn)
	if err != nil {
		return nil, err
	}

	ref, err := s.payments.Payout(ctx, userID, points, cash)
	if err != nil {
		s.refund(ctx, txn)
		return nil, fmt.Errorf("payout: %w", err)
	}

	// cashouts stay processing until the bank transfer settles
	s.publish(ctx, events.New(events.EventPointsConverted, userID, txn.ID, events.PointsConvertedPayload{
		Points:     points,
		CashAmount: cash.StringFixed(2),
		Balance:    balance,
	}))
	return &ConvertResult{Transaction: *txn, Balance: balance, PayoutReference: ref}, nil
}

// Redeem spends points on a catalog reward. A member can only have one
// redemption in flight, and the points are held before fulfillment starts.
func (s *WalletService) Redeem(ctx context.Context, userID string, rewardID int) (*RedeemResult, error) {
	reward, ok := s.catalog.Reward(rewardID)
	if !ok {
		return nil, apperrors.NewNotFound("reward", map[string]any{"reward_id": rewardID})
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if reward.PointCost > user.Points {
		return nil, apperrors.NewInsufficientBalance(user.Points, reward.PointCost)
	}

	token, acquired, err := s.locks.Acquire(ctx, userID, rewardID, s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire redemption lock: %w", err)
	}
	if !acquired {
		details := map[string]any{}
		if holder, held, err := s.locks.Holder(ctx, userID); err == nil && held {
			details["reward_id"] = holder
		}
		return nil, apperrors.NewConflict("redemption already in progress", details)
	}
	defer func() {
		if err := s.locks.Release(context.WithoutCancel(ctx), userID, token); err != nil {
			s.logger.Warn("release redemption lock", zap.String("user_id", userID), zap.Error(err))
		}
	}()

	id := reward.ID
	txn := &domain.Transaction{
		UserID:      userID,
		Type:        domain.TransactionRedeemed,
		Category:    domain.CategoryReward,
		Amount:      -reward.PointCost,
		Description: fmt.Sprintf("%s redeemed", reward.Name),
		Location:    "O'Waste Rewards",
		OccurredAt:  s.now(),
		Status:      domain.StatusProcessing,
		RewardID:    &id,
	}
	if _, err := s.reserve(ctx, txn); err != nil {
		return nil, err
	}

	ref, err := s.fulfiller.Fulfill(ctx, userID, reward)
	if err != nil {
		s.refund(ctx, txn)
		return nil, fmt.Errorf("fulfill reward: %w", err)
	}

	balance, err := s.ledger.Settle(context.WithoutCancel(ctx), userID, txn.ID, domain.StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("settle redemption: %w", err)
	}
	txn.Status = domain.StatusCompleted

	s.publish(ctx, events.New(events.EventRewardRedeemed, userID, txn.ID, events.RewardRedeemedPayload{
		RewardID:   reward.ID,
		RewardName: reward.Name,
		Points:     reward.PointCost,
		Balance:    balance,
	}))
	return &RedeemResult{Transaction: *txn, Reward: reward, Balance: balance, VoucherReference: ref}, nil
}

// reserve debits a processing entry. It fails without side effects when the
// balance no longer covers it.
func (s *WalletService) reserve(ctx context.Context, txn *domain.Transaction) (int, error) {
	balance, err := s.ledger.Record(ctx, txn)
	if errors.Is(err, domain.ErrInsufficientBalance) {
		return 0, apperrors.NewInsufficientBalance(balance, -txn.Amount)
	}
	return balance, err
}

// refund fails a reserved entry, which puts its points back.
func (s *WalletService) refund(ctx context.Context, txn *domain.Transaction) {
	if _, err := s.ledger.Settle(context.WithoutCancel(ctx), txn.UserID, txn.ID, domain.StatusFailed); err != nil {
		s.logger.Error("refund reserved points",
			zap.String("user_id", txn.UserID),
			zap.String("transaction_id", txn.ID),
			zap.Int("points", -txn.Amount),
			zap.Error(err),
		)
		return
	}
	txn.Status = domain.StatusFailed
}

func (s *WalletService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
