package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/owaste/rewards-service/internal/navigation"
	"github.com/owaste/rewards-service/internal/repository"
	apperrors "github.com/owaste/rewards-service/pkg/util/errorutil"
)

// ScanReleaser ends a member's scan session.
type ScanReleaser interface {
	Release(userID string)
}

// NavigationService keeps each member's current app shell view.
type NavigationService struct {
	sessions repository.SessionStore
	scans    ScanReleaser
	logger   *zap.Logger
}

// NewNavigationService constructs the service.
func NewNavigationService(sessions repository.SessionStore, scans ScanReleaser, logger *zap.Logger) *NavigationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NavigationService{sessions: sessions, scans: scans, logger: logger}
}

// Current returns the member's view. Signed-in members without stored
// state are on home.
func (s *NavigationService) Current(ctx context.Context, userID string) (navigation.View, error) {
	view, ok, err := s.sessions.View(ctx, userID)
	if err != nil {
		return "", err
	}
	if !ok || !navigation.IsMemberView(view) {
		return navigation.ViewHome, nil
	}
	return view, nil
}

// Navigate moves the member to another view. Any view other than the
// scanner releases the camera and cancels pending scan timers.
func (s *NavigationService) Navigate(ctx context.Context, userID string, target string) (navigation.View, error) {
	to, err := navigation.ParseView(target)
	if err != nil {
		return "", apperrors.NewValidationError("unknown view", map[string]any{"view": target})
	}
	from, err := s.Current(ctx, userID)
	if err != nil {
		return "", err
	}
	next, err := navigation.Next(from, navigation.EventNavigate, to)
	if err != nil {
		return "", transitionConflict(err, from, to)
	}
	if !navigation.HoldsCamera(next) && s.scans != nil {
		s.scans.Release(userID)
	}
	if err := s.sessions.SetView(ctx, userID, next); err != nil {
		return "", err
	}
	return next, nil
}

// SignedIn places a freshly authenticated member on home.
func (s *NavigationService) SignedIn(ctx context.Context, userID string) (navigation.View, error) {
	next, err := navigation.Next(navigation.ViewLogin, navigation.EventLogin, "")
	if err != nil {
		return "", err
	}
	if s.scans != nil {
		s.scans.Release(userID)
	}
	if err := s.sessions.SetView(ctx, userID, next); err != nil {
		return "", err
	}
	return next, nil
}

// SignedOut releases the scan flow and forgets session state.
func (s *NavigationService) SignedOut(ctx context.Context, userID string) (navigation.View, error) {
	from, err := s.Current(ctx, userID)
	if err != nil {
		return "", err
	}
	next, err := navigation.Next(from, navigation.EventLogout, "")
	if err != nil {
		return "", transitionConflict(err, from, navigation.ViewLanding)
	}
	if s.scans != nil {
		s.scans.Release(userID)
	}
	if err := s.sessions.Clear(ctx, userID); err != nil {
		return "", err
	}
	return next, nil
}

// ReturnHome is called when a scan result has been shown. It only moves
// members still looking at the scanner.
func (s *NavigationService) ReturnHome(ctx context.Context, userID string) {
	view, ok, err := s.sessions.View(ctx, userID)
	if err != nil {
		s.logger.Warn("read session view", zap.String("user_id", userID), zap.Error(err))
		return
	}
	if !ok || view != navigation.ViewScanner {
		return
	}
	if err := s.sessions.SetView(ctx, userID, navigation.ViewHome); err != nil {
		s.logger.Warn("return home", zap.String("user_id", userID), zap.Error(err))
	}
}

func transitionConflict(err error, from, to navigation.View) error {
	if errors.Is(err, navigation.ErrInvalidTransition) {
		return apperrors.NewConflict("navigation not allowed", map[string]any{"from": from, "to": to})
	}
	return err
}
