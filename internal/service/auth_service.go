package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/owaste/rewards-service/internal/auth"
	"github.com/owaste/rewards-service/internal/config"
	"github.com/owaste/rewards-service/internal/domain"
	"github.com/owaste/rewards-service/internal/navigation"
	"github.com/owaste/rewards-service/internal/repository"
	apperrors "github.com/owaste/rewards-service/pkg/util/errorutil"
)

// AuthResult is returned by registration and login.
type AuthResult struct {
	User        *domain.User
	AccessToken string
	Token       domain.Token
	View        navigation.View
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	nav        *NavigationService
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Navigation *NavigationService
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		nav:        deps.Navigation,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
	}
}

// RegisterUser creates a new member with an empty balance and signs them in.
func (s *AuthService) RegisterUser(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	fields := map[string]any{}
	if name == "" {
		fields["name"] = "required"
	}
	if _, err := mail.ParseAddress(email); err != nil {
		fields["email"] = "invalid email address"
	}
	if err := auth.ValidatePassword(password); err != nil {
		fields["password"] = err.Error()
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidationError("invalid registration", fields)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Name:         name,
		Email:        strings.ToLower(email),
		PasswordHash: hash,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": user.Email})
		}
		return nil, err
	}
	return s.signIn(ctx, user)
}

// LoginUser authenticates a member.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if user.Status != domain.UserStatusActive {
		return nil, apperrors.NewForbidden("account suspended")
	}
	return s.signIn(ctx, user)
}

// Logout ends the member's session. Tokens are stateless and simply expire.
func (s *AuthService) Logout(ctx context.Context, userID string) (navigation.View, error) {
	return s.nav.SignedOut(ctx, userID)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) signIn(ctx context.Context, user *domain.User) (*AuthResult, error) {
	meta, token, err := s.tokenMgr.GenerateToken(user.ID, domain.SubjectTypeUser)
	if err != nil {
		return nil, err
	}
	view, err := s.nav.SignedIn(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, AccessToken: token, Token: meta, View: view}, nil
}
