package flows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"Gin_postgres_redis_auth_service/cache"
	"Gin_postgres_redis_auth_service/common"
	"Gin_postgres_redis_auth_service/mail"
)

const resetTokenBytes = 32

type PasswordReset struct {
	store  UserStore
	cache  *cache.SecretCache[cache.PasswordResetData]
	mailer mail.Mailer
	hasher PasswordHasher
	log    *slog.Logger
}

func NewPasswordReset(store UserStore, c *cache.SecretCache[cache.PasswordResetData], mailer mail.Mailer, hasher PasswordHasher, log *slog.Logger) *PasswordReset {
	return &PasswordReset{store: store, cache: c, mailer: mailer, hasher: hasher, log: log}
}

// Request issues a reset token and mails it. Unknown addresses succeed
// silently; the response never reveals whether an account exists.
func (s *PasswordReset) Request(ctx context.Context, email string) error {
	u, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := s.cache.InvalidateBySubject(ctx, u.ID); err != nil {
		return err
	}
	token, err := hexToken(resetTokenBytes)
	if err != nil {
		return err
	}
	if err := s.cache.Set(ctx, u.ID, cache.PasswordResetData{UserID: u.ID, Email: u.Email, Token: token}); err != nil {
		return err
	}
	s.log.DebugContext(ctx, "password reset token issued", "email", u.Email)
	return s.mailer.SendPasswordReset(ctx, u.Email, token)
}

// Reset sets a new password for the token's owner and signs out every
// session by clearing the stored refresh token.
func (s *PasswordReset) Reset(ctx context.Context, token, newPassword string) error {
	d, ok, err := s.cache.GetBySecret(ctx, token)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: reset token", common.ErrInvalidOrExpired)
	}
	if _, err := s.store.FindUserByID(ctx, d.UserID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("%w: reset token", common.ErrInvalidOrExpired)
		}
		return err
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.store.UpdateUser(ctx, d.UserID, map[string]any{
		"password_hash":            hash,
		"refresh_token_hash":       nil,
		"refresh_token_expires_at": nil,
	}); err != nil {
		return err
	}
	return s.cache.Invalidate(ctx, d.UserID, d.Token)
}
