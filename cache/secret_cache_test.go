package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestSecretCacheDualKeys(t *testing.T) {
	_, rdb := testRedis(t)
	ctx := context.Background()
	c := NewEmailVerificationCache(rdb)

	d := VerificationData{UserID: "u1", Email: "a@example.com", Code: "123456"}
	require.NoError(t, c.Set(ctx, "u1", d))

	byCode, ok, err := c.GetBySecret(ctx, "123456")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, d, byCode)

	bySubject, ok, err := c.GetBySubject(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, d, bySubject)
}

func TestSecretCacheMissIsNotError(t *testing.T) {
	_, rdb := testRedis(t)
	ctx := context.Background()
	c := NewPasswordResetCache(rdb)

	_, ok, err := c.GetBySecret(ctx, "deadbeef")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = c.GetBySubject(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSecretCacheInvalidateRemovesBothKeys(t *testing.T) {
	_, rdb := testRedis(t)
	ctx := context.Background()
	c := NewEmailVerificationCache(rdb)

	require.NoError(t, c.Set(ctx, "u1", VerificationData{UserID: "u1", Code: "654321"}))
	require.NoError(t, c.Invalidate(ctx, "u1", "654321"))

	_, ok, err := c.GetBySecret(ctx, "654321")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = c.GetBySubject(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSecretCacheInvalidateBySubject(t *testing.T) {
	_, rdb := testRedis(t)
	ctx := context.Background()
	c := NewEmailChangeCache(rdb)

	// no record pending: still fine
	require.NoError(t, c.InvalidateBySubject(ctx, "u1"))

	require.NoError(t, c.Set(ctx, "u1", EmailChangeData{UserID: "u1", NewEmail: "b@example.com", Code: "111111"}))
	require.NoError(t, c.InvalidateBySubject(ctx, "u1"))

	_, ok, err := c.GetBySecret(ctx, "111111")
	require.NoError(t, err)
	assert.False(t, ok, "secret copy must die with the subject copy")
}

func TestSecretCacheNewRecordReplacesSubjectCopy(t *testing.T) {
	_, rdb := testRedis(t)
	ctx := context.Background()
	c := NewEmailVerificationCache(rdb)

	require.NoError(t, c.Set(ctx, "u1", VerificationData{UserID: "u1", Code: "111111"}))
	require.NoError(t, c.Set(ctx, "u1", VerificationData{UserID: "u1", Code: "222222"}))

	d, ok, err := c.GetBySubject(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "222222", d.Code)
}

func TestSecretCacheExpires(t *testing.T) {
	mr, rdb := testRedis(t)
	ctx := context.Background()
	c := NewPasswordResetCache(rdb)

	require.NoError(t, c.Set(ctx, "u1", PasswordResetData{UserID: "u1", Token: "cafe"}))

	mr.FastForward(c.TTL() - time.Second)
	_, ok, err := c.GetBySecret(ctx, "cafe")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Second)
	_, ok, err = c.GetBySecret(ctx, "cafe")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = c.GetBySubject(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)
}
