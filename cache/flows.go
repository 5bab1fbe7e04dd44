package cache

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// Record lifetimes per flow.
const (
	emailVerificationTTL = 15 * time.Minute
	passwordResetTTL     = 15 * time.Minute
	emailChangeTTL       = 10 * time.Minute
)

// VerificationData is the email-verification record: a 6-digit code sent to
// the address being verified.
type VerificationData struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Code   string `json:"code"`
}

func (d VerificationData) SecretValue() string { return d.Code }

// PasswordResetData is the password-reset record: an opaque hex token mailed
// to the account address.
type PasswordResetData struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

func (d PasswordResetData) SecretValue() string { return d.Token }

// EmailChangeData is the email-change record: a 6-digit code sent to the
// prospective address, with the old one kept for the change notification.
type EmailChangeData struct {
	UserID       string `json:"userId"`
	CurrentEmail string `json:"currentEmail"`
	NewEmail     string `json:"newEmail"`
	Code         string `json:"code"`
}

func (d EmailChangeData) SecretValue() string { return d.Code }

func NewEmailVerificationCache(rdb *redis.Client) *SecretCache[VerificationData] {
	return newSecretCache[VerificationData](rdb, "email-verification", "code", emailVerificationTTL)
}

func NewPasswordResetCache(rdb *redis.Client) *SecretCache[PasswordResetData] {
	return newSecretCache[PasswordResetData](rdb, "password-reset", "token", passwordResetTTL)
}

func NewEmailChangeCache(rdb *redis.Client) *SecretCache[EmailChangeData] {
	return newSecretCache[EmailChangeData](rdb, "email-change", "code", emailChangeTTL)
}
