package auth

import (
	"testing"
	"time"

	"Gin_postgres_redis_auth_service/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", 15*time.Minute, 30*24*time.Hour)

	tok, err := m.IssueAccess("user-1")
	require.NoError(t, err)

	sub, err := m.ParseAccess(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)
}

func TestAccessTokenExpired(t *testing.T) {
	m := NewTokenManager("test-secret", -time.Minute, time.Hour)

	tok, err := m.IssueAccess("user-1")
	require.NoError(t, err)

	_, err = m.ParseAccess(tok)
	assert.ErrorIs(t, err, common.ErrInvalidOrExpired)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", 15*time.Minute, time.Hour)
	verifier := NewTokenManager("secret-b", 15*time.Minute, time.Hour)

	tok, err := issuer.IssueAccess("user-1")
	require.NoError(t, err)

	_, err = verifier.ParseAccess(tok)
	assert.ErrorIs(t, err, common.ErrInvalidOrExpired)
}

func TestAccessTokenGarbage(t *testing.T) {
	m := NewTokenManager("test-secret", 15*time.Minute, time.Hour)

	_, err := m.ParseAccess("not.a.token")
	assert.ErrorIs(t, err, common.ErrInvalidOrExpired)
}

func TestRefreshTokens(t *testing.T) {
	m := NewTokenManager("test-secret", 15*time.Minute, time.Hour)

	a, err := m.NewRefreshToken()
	require.NoError(t, err)
	b, err := m.NewRefreshToken()
	require.NoError(t, err)
	assert.Len(t, a, refreshTokenBytes*2)
	assert.NotEqual(t, a, b)

	assert.Equal(t, HashRefreshToken(a), HashRefreshToken(a))
	assert.NotEqual(t, HashRefreshToken(a), HashRefreshToken(b))
	assert.NotEqual(t, a, HashRefreshToken(a), "the raw token is never its own hash")
}
