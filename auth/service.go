package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"Gin_postgres_redis_auth_service/common"
	"Gin_postgres_redis_auth_service/flows"
	"Gin_postgres_redis_auth_service/models"

	"github.com/google/uuid"
)

// Store is the durable-store slice the account service consumes. *db.Repo
// satisfies it.
type Store interface {
	flows.UserStore
	CreateUser(ctx context.Context, u *models.User) error
	FindUserByRefreshHash(ctx context.Context, hash string) (*models.User, error)
	SoftDeleteUser(ctx context.Context, id string) error
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Service struct {
	store        Store
	hasher       *BcryptHasher
	tokens       *TokenManager
	verification *flows.EmailVerification
	log          *slog.Logger
}

func NewService(store Store, hasher *BcryptHasher, tokens *TokenManager, verification *flows.EmailVerification, log *slog.Logger) *Service {
	return &Service{store: store, hasher: hasher, tokens: tokens, verification: verification, log: log}
}

// Signup creates the account and starts email verification.
func (s *Service) Signup(ctx context.Context, email, password, fullName string) (*models.User, error) {
	email = strings.ToLower(email)
	if _, err := s.store.FindUserByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", common.ErrConflict)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "user signed up", "user", u.ID)
	if err := s.verification.Send(ctx, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

// Signin checks the password and returns a token pair. Wrong email and wrong
// password read the same.
func (s *Service) Signin(ctx context.Context, email, password string) (*TokenPair, error) {
	u, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Compare(u.PasswordHash, password) {
		return nil, common.ErrInvalidCredentials
	}
	if !u.EmailVerified {
		return nil, fmt.Errorf("%w: email not verified", common.ErrConflict)
	}
	return s.IssueTokens(ctx, u.ID)
}

// IssueTokens mints a fresh pair for the user and rotates the stored refresh
// hash. Also used after a successful passkey ceremony.
func (s *Service) IssueTokens(ctx context.Context, userID string) (*TokenPair, error) {
	access, err := s.tokens.IssueAccess(userID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	hash := HashRefreshToken(refresh)
	if err := s.store.UpdateUser(ctx, userID, map[string]any{
		"refresh_token_hash":       hash,
		"refresh_token_expires_at": s.tokens.RefreshExpiry(),
	}); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a live refresh token for a new pair. The old token
// becomes unusable immediately.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	u, err := s.store.FindUserByRefreshHash(ctx, HashRefreshToken(refreshToken))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("%w: refresh token", common.ErrInvalidOrExpired)
		}
		return nil, err
	}
	if u.RefreshTokenExpiresAt == nil || !u.RefreshTokenExpiresAt.After(time.Now()) {
		return nil, fmt.Errorf("%w: refresh token", common.ErrInvalidOrExpired)
	}
	return s.IssueTokens(ctx, u.ID)
}

// Signout clears the refresh token; outstanding access tokens simply expire.
func (s *Service) Signout(ctx context.Context, userID string) error {
	return s.store.UpdateUser(ctx, userID, map[string]any{
		"refresh_token_hash":       nil,
		"refresh_token_expires_at": nil,
	})
}

// ChangePassword swaps the hash after checking the current password.
func (s *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	u, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Compare(u.PasswordHash, currentPassword) {
		return fmt.Errorf("%w: current password is incorrect", common.ErrConflict)
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.store.UpdateUser(ctx, userID, map[string]any{"password_hash": hash})
}
