package flows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"Gin_postgres_redis_auth_service/cache"
	"Gin_postgres_redis_auth_service/common"
	"Gin_postgres_redis_auth_service/mail"
)

type EmailChange struct {
	store  UserStore
	cache  *cache.SecretCache[cache.EmailChangeData]
	users  *cache.UserCache
	mailer mail.Mailer
	hasher PasswordHasher
	log    *slog.Logger
}

func NewEmailChange(store UserStore, c *cache.SecretCache[cache.EmailChangeData], users *cache.UserCache, mailer mail.Mailer, hasher PasswordHasher, log *slog.Logger) *EmailChange {
	return &EmailChange{store: store, cache: c, users: users, mailer: mailer, hasher: hasher, log: log}
}

// Request starts an email change for an authenticated user: the current
// password must match, the new address must differ and be free. The code
// goes to the prospective address, which proves the user controls it.
func (s *EmailChange) Request(ctx context.Context, userID, currentPassword, newEmail string) error {
	u, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Compare(u.PasswordHash, currentPassword) {
		return fmt.Errorf("%w: current password is incorrect", common.ErrConflict)
	}
	newEmail = strings.ToLower(newEmail)
	if strings.EqualFold(u.Email, newEmail) {
		return fmt.Errorf("%w: new email must differ from current email", common.ErrConflict)
	}
	if _, err := s.store.FindUserByEmail(ctx, newEmail); err == nil {
		return fmt.Errorf("%w: email already in use", common.ErrConflict)
	} else if !errors.Is(err, common.ErrNotFound) {
		return err
	}

	if err := s.cache.InvalidateBySubject(ctx, userID); err != nil {
		return err
	}
	code, err := sixDigitCode()
	if err != nil {
		return err
	}
	if err := s.cache.Set(ctx, userID, cache.EmailChangeData{
		UserID:       userID,
		CurrentEmail: u.Email,
		NewEmail:     newEmail,
		Code:         code,
	}); err != nil {
		return err
	}
	s.log.DebugContext(ctx, "email change code issued", "email", newEmail)
	return s.mailer.SendEmailChangeVerification(ctx, newEmail, code)
}

// Verify completes the change. The code must belong to the calling user; a
// right code for the wrong user reads the same as no code at all. The target
// address is re-checked at completion, it may have been taken since Request.
func (s *EmailChange) Verify(ctx context.Context, userID, code string) error {
	d, ok, err := s.cache.GetBySecret(ctx, code)
	if err != nil {
		return err
	}
	if !ok || d.UserID != userID {
		return fmt.Errorf("%w: verification code", common.ErrInvalidOrExpired)
	}
	if _, err := s.store.FindUserByID(ctx, userID); err != nil {
		return err
	}
	if _, err := s.store.FindUserByEmail(ctx, d.NewEmail); err == nil {
		return fmt.Errorf("%w: email already in use", common.ErrConflict)
	} else if !errors.Is(err, common.ErrNotFound) {
		return err
	}

	if err := s.store.UpdateUser(ctx, userID, map[string]any{"email": d.NewEmail}); err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx, userID, d.Code); err != nil {
		return err
	}
	s.users.Invalidate(ctx, userID)
	return s.mailer.SendEmailChangeNotification(ctx, d.CurrentEmail, d.NewEmail)
}
