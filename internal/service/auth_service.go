package service

import (
	"context"
	"log/slog"

	"github.com/mmehra/splitledger/internal/apperrors"
	"github.com/mmehra/splitledger/internal/auth"
	"github.com/mmehra/splitledger/internal/models"
)

// AuthService handles registration and login for the identity boundary.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	accounts      auth.AccountStorage
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, accounts auth.AccountStorage) *AuthService {
	return &AuthService{authenticator: authenticator, jwtManager: jwtManager, accounts: accounts}
}

// Session is a logged-in account plus its bearer token.
type Session struct {
	Account *models.Account
	Token   string
}

// Register creates a new account and returns a session for it.
func (s *AuthService) Register(ctx context.Context, email, displayName, password string) (*Session, error) {
	account, err := s.authenticator.Register(ctx, email, displayName, password)
	if err != nil {
		slog.Warn("registration failed", "email", email, "error", err)
		return nil, err
	}

	token, err := s.jwtManager.Generate(account)
	if err != nil {
		slog.Error("failed to generate token", "account_id", account.ID, "error", err)
		return nil, err
	}

	slog.Info("account registered", "account_id", account.ID, "email", account.Email)
	return &Session{Account: account, Token: token}, nil
}

// GetProfile returns the account profile, including the gamification
// counters the side-system maintains.
func (s *AuthService) GetProfile(ctx context.Context, accountID string) (*models.Account, error) {
	account, err := s.accounts.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, apperrors.NotFound("account", accountID)
	}
	return account, nil
}

// Login authenticates credentials and returns a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	account, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		slog.Warn("login failed", "email", email, "error", err)
		return nil, err
	}

	token, err := s.jwtManager.Generate(account)
	if err != nil {
		slog.Error("failed to generate token", "account_id", account.ID, "error", err)
		return nil, err
	}

	return &Session{Account: account, Token: token}, nil
}
