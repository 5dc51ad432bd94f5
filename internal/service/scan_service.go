package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/owaste/rewards-service/internal/config"
	"github.com/owaste/rewards-service/internal/domain"
	"github.com/owaste/rewards-service/internal/events"
	"github.com/owaste/rewards-service/internal/history"
	"github.com/owaste/rewards-service/internal/navigation"
	"github.com/owaste/rewards-service/internal/repository"
	"github.com/owaste/rewards-service/internal/scan"
	apperrors "github.com/owaste/rewards-service/pkg/util/errorutil"
)

// ScanStatus is what the client renders for the scanner view.
type ScanStatus struct {
	State     scan.State
	Outcome   *scan.Outcome
	LastError string
}

// ScanService owns one scan flow per member and credits their deposits.
type ScanService struct {
	ledger     repository.LedgerRepository
	sessions   repository.SessionStore
	resolver   scan.Resolver
	dispatcher events.Dispatcher
	logger     *zap.Logger
	scanCfg    config.ScanConfig
	challenge  config.ChallengeConfig
	now        func() time.Time

	mu       sync.Mutex
	flows    map[string]*scan.Flow
	onReturn func(ctx context.Context, userID string)
}

// ScanDependencies bundles collaborators for the scan service.
type ScanDependencies struct {
	LedgerRepo repository.LedgerRepository
	Sessions   repository.SessionStore
	Resolver   scan.Resolver
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewScanService constructs the service.
func NewScanService(scanCfg config.ScanConfig, challenge config.ChallengeConfig, deps ScanDependencies) *ScanService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanService{
		ledger:     deps.LedgerRepo,
		sessions:   deps.Sessions,
		resolver:   deps.Resolver,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		scanCfg:    scanCfg,
		challenge:  challenge,
		now:        time.Now,
		flows:      make(map[string]*scan.Flow),
	}
}

// SetReturnHandler registers what happens once a result has been shown.
func (s *ScanService) SetReturnHandler(fn func(ctx context.Context, userID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onReturn = fn
}

// Status returns the member's flow state.
func (s *ScanService) Status(userID string) ScanStatus {
	return statusOf(s.flow(userID).Snapshot())
}

// StartCamera asks for the member's camera. granted is the permission
// answer the client got from the device.
func (s *ScanService) StartCamera(ctx context.Context, userID string, granted bool, facingMode string) (ScanStatus, error) {
	f := s.flow(userID)
	if err := s.requireScanner(ctx, userID); err != nil {
		return statusOf(f.Snapshot()), err
	}
	err := f.StartCamera(ctx, scan.ClientCamera{Granted: granted, FacingMode: facingMode})
	if err != nil {
		return statusOf(f.Snapshot()), scanError(err)
	}
	return statusOf(f.Snapshot()), nil
}

// Capture starts decoding the code currently in view.
func (s *ScanService) Capture(ctx context.Context, userID string) (ScanStatus, error) {
	f := s.flow(userID)
	if err := s.requireScanner(ctx, userID); err != nil {
		return statusOf(f.Snapshot()), err
	}
	if err := f.Capture(); err != nil {
		return statusOf(f.Snapshot()), scanError(err)
	}
	return statusOf(f.Snapshot()), nil
}

// StopCamera releases the camera without scanning.
func (s *ScanService) StopCamera(userID string) (ScanStatus, error) {
	f := s.flow(userID)
	if err := f.StopCamera(); err != nil {
		return statusOf(f.Snapshot()), scanError(err)
	}
	return statusOf(f.Snapshot()), nil
}

// Release closes the member's flow, cancelling anything pending.
func (s *ScanService) Release(userID string) {
	s.mu.Lock()
	f, ok := s.flows[userID]
	s.mu.Unlock()
	if ok {
		f.Close()
	}
}

// Shutdown closes every flow.
func (s *ScanService) Shutdown() {
	s.mu.Lock()
	flows := make([]*scan.Flow, 0, len(s.flows))
	for _, f := range s.flows {
		flows = append(flows, f)
	}
	s.mu.Unlock()
	for _, f := range flows {
		f.Close()
	}
}

func (s *ScanService) requireScanner(ctx context.Context, userID string) error {
	if s.sessions == nil {
		return nil
	}
	view, ok, err := s.sessions.View(ctx, userID)
	if err != nil {
		return err
	}
	if !ok || !navigation.HoldsCamera(view) {
		if !ok {
			view = navigation.ViewHome
		}
		return apperrors.NewConflict("scanner is not open", map[string]any{"view": view})
	}
	return nil
}

func (s *ScanService) flow(userID string) *scan.Flow {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.flows[userID]; ok {
		return f
	}
	logger := s.logger.With(zap.String("user_id", userID))
	f := scan.NewFlow(scan.Options{
		Resolver: s.resolver,
		OnResult: func(ctx context.Context, outcome scan.Outcome) error {
			return s.credit(ctx, userID, outcome)
		},
		OnReturn: func() {
			s.mu.Lock()
			fn := s.onReturn
			s.mu.Unlock()
			if fn != nil {
				fn(context.Background(), userID)
			}
		},
		ProcessingDelay: s.scanCfg.ProcessingDelay(),
		ResultDelay:     s.scanCfg.ResultDelay(),
		Logger:          logger,
	})
	s.flows[userID] = f
	return f
}

// credit books a deposit and, when it completes the week's target, the
// weekly bonus.
func (s *ScanService) credit(ctx context.Context, userID string, outcome scan.Outcome) error {
	occurredAt := outcome.ScannedAt
	if occurredAt.IsZero() {
		occurredAt = s.now()
	}
	txn := &domain.Transaction{
		UserID:      userID,
		Type:        domain.TransactionEarned,
		Category:    domain.CategoryRecycling,
		Amount:      outcome.Points,
		Description: fmt.Sprintf("%s recycled", outcome.WasteType.Name),
		Location:    outcome.QRData,
		OccurredAt:  occurredAt,
		Status:      domain.StatusCompleted,
		WasteType:   outcome.WasteType.ID,
	}
	balance, err := s.ledger.Record(ctx, txn)
	if err != nil {
		return fmt.Errorf("credit deposit: %w", err)
	}
	s.publish(ctx, events.New(events.EventPointsEarned, userID, txn.ID, events.PointsEarnedPayload{
		WasteType: outcome.WasteType.ID,
		Points:    outcome.Points,
		Balance:   balance,
	}))

	if s.challenge.WeeklyTarget <= 0 || s.challenge.BonusPoints <= 0 {
		return nil
	}
	txns, err := s.ledger.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("load ledger for challenge: %w", err)
	}
	progress := history.WeeklyProgress(txns, s.challenge.WeeklyTarget, s.challenge.BonusPoints, occurredAt)
	if progress.BonusAwarded || progress.Count != progress.Target {
		return nil
	}
	bonus := &domain.Transaction{
		UserID:      userID,
		Type:        domain.TransactionEarned,
		Category:    domain.CategoryBonus,
		Amount:      s.challenge.BonusPoints,
		Description: history.WeeklyBonusDescription,
		Location:    "O'Waste Rewards",
		OccurredAt:  occurredAt,
		Status:      domain.StatusCompleted,
	}
	if _, err := s.ledger.Record(ctx, bonus); err != nil {
		return fmt.Errorf("credit weekly bonus: %w", err)
	}
	s.publish(ctx, events.New(events.EventChallengeCompleted, userID, bonus.ID, events.ChallengeCompletedPayload{
		Target:      progress.Target,
		BonusPoints: s.challenge.BonusPoints,
	}))
	return nil
}

func (s *ScanService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func statusOf(snap scan.Snapshot) ScanStatus {
	st := ScanStatus{State: snap.State, Outcome: snap.Outcome}
	if snap.Err != nil {
		st.LastError = snap.Err.Error()
	}
	return st
}

func scanError(err error) error {
	switch {
	case errors.Is(err, scan.ErrCameraDenied):
		return apperrors.NewCameraDenied()
	case errors.Is(err, scan.ErrInvalidTransition):
		return apperrors.NewConflict(err.Error(), nil)
	}
	return err
}
