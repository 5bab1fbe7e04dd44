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

type EmailVerification struct {
	store  UserStore
	cache  *cache.SecretCache[cache.VerificationData]
	mailer mail.Mailer
	log    *slog.Logger
}

func NewEmailVerification(store UserStore, c *cache.SecretCache[cache.VerificationData], mailer mail.Mailer, log *slog.Logger) *EmailVerification {
	return &EmailVerification{store: store, cache: c, mailer: mailer, log: log}
}

// Send issues a fresh verification code for the user, replacing any pending
// one, and mails it to the account address.
func (s *EmailVerification) Send(ctx context.Context, userID string) error {
	u, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.cache.InvalidateBySubject(ctx, userID); err != nil {
		return err
	}
	code, err := sixDigitCode()
	if err != nil {
		return err
	}
	if err := s.cache.Set(ctx, userID, cache.VerificationData{UserID: userID, Email: u.Email, Code: code}); err != nil {
		return err
	}
	s.log.DebugContext(ctx, "verification code issued", "email", u.Email)
	return s.mailer.SendEmailVerification(ctx, u.Email, code)
}

// Verify marks the account's email verified. The code alone carries the
// caller's identity; any failure surfaces as invalid-or-expired.
func (s *EmailVerification) Verify(ctx context.Context, code string) error {
	d, ok, err := s.cache.GetBySecret(ctx, code)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: verification code", common.ErrInvalidOrExpired)
	}
	if _, err := s.store.FindUserByID(ctx, d.UserID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("%w: verification code", common.ErrInvalidOrExpired)
		}
		return err
	}
	if err := s.store.UpdateUser(ctx, d.UserID, map[string]any{"email_verified": true}); err != nil {
		return err
	}
	return s.cache.Invalidate(ctx, d.UserID, d.Code)
}

// Resend re-issues the code for an unverified account. Unknown addresses
// succeed silently so the endpoint cannot be used to enumerate accounts; an
// already-verified account is the one case surfaced as a conflict.
func (s *EmailVerification) Resend(ctx context.Context, email string) error {
	u, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		return err
	}
	if u.EmailVerified {
		return fmt.Errorf("%w: email already verified", common.ErrConflict)
	}
	return s.Send(ctx, u.ID)
}
