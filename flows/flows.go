// Package flows implements the three one-time-secret flows: email
// verification, password reset and email change. Each follows the same
// template: invalidate whatever is pending for the subject, issue a fresh
// secret through the dual-keyed cache, dispatch the notification; completion
// resolves the record by secret, re-checks the world, applies the mutation
// and drops both cache keys.
package flows

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"

	"Gin_postgres_redis_auth_service/models"
)

// UserStore is the durable-store slice the flows consume. *db.Repo satisfies
// it.
type UserStore interface {
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, fields map[string]any) error
}

// PasswordHasher is the hashing primitive, implemented in the auth package.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// sixDigitCode returns a uniform code in [100000, 999999].
func sixDigitCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// hexToken returns n random bytes hex-encoded.
func hexToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
