package flows

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"Gin_postgres_redis_auth_service/cache"
	"Gin_postgres_redis_auth_service/common"
	"Gin_postgres_redis_auth_service/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===== fakes =====

type fakeUserStore struct {
	users map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*models.User{}}
}

func (f *fakeUserStore) addUser(email, passwordHash string, verified bool) *models.User {
	u := &models.User{ID: uuid.NewString(), Email: email, PasswordHash: passwordHash, EmailVerified: verified}
	f.users[u.ID] = u
	return u
}

func (f *fakeUserStore) FindUserByID(_ context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUserStore) UpdateUser(_ context.Context, id string, fields map[string]any) error {
	u, ok := f.users[id]
	if !ok {
		return common.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "email":
			u.Email = v.(string)
		case "email_verified":
			u.EmailVerified = v.(bool)
		case "password_hash":
			u.PasswordHash = v.(string)
		case "refresh_token_hash":
			if v == nil {
				u.RefreshTokenHash = nil
			} else {
				s := v.(string)
				u.RefreshTokenHash = &s
			}
		case "refresh_token_expires_at":
			if v == nil {
				u.RefreshTokenExpiresAt = nil
			} else {
				ts := v.(time.Time)
				u.RefreshTokenExpiresAt = &ts
			}
		}
	}
	return nil
}

// recordingMailer captures outgoing mail instead of sending it.
type recordingMailer struct {
	verificationTo  []string
	lastCode        string
	resetTo         []string
	lastToken       string
	changeCodeTo    []string
	lastChangeCode  string
	notificationOld []string
	notificationNew []string
}

func (m *recordingMailer) SendEmailVerification(_ context.Context, to, code string) error {
	m.verificationTo = append(m.verificationTo, to)
	m.lastCode = code
	return nil
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, to, token string) error {
	m.resetTo = append(m.resetTo, to)
	m.lastToken = token
	return nil
}

func (m *recordingMailer) SendEmailChangeVerification(_ context.Context, to, code string) error {
	m.changeCodeTo = append(m.changeCodeTo, to)
	m.lastChangeCode = code
	return nil
}

func (m *recordingMailer) SendEmailChangeNotification(_ context.Context, oldAddr, newAddr string) error {
	m.notificationOld = append(m.notificationOld, oldAddr)
	m.notificationNew = append(m.notificationNew, newAddr)
	return nil
}

// fakeHasher avoids bcrypt cost in tests.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (fakeHasher) Compare(hash, password string) bool   { return hash == "hashed:"+password }

func testDeps(t *testing.T) (*fakeUserStore, *recordingMailer, *redis.Client, *miniredis.Miniredis, *slog.Logger) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return newFakeUserStore(), &recordingMailer{}, rdb, mr, slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ===== email verification =====

func TestEmailVerificationFlow(t *testing.T) {
	store, mailer, rdb, _, log := testDeps(t)
	u := store.addUser("ada@example.com", "hashed:pw", false)
	ev := NewEmailVerification(store, cache.NewEmailVerificationCache(rdb), mailer, log)
	ctx := context.Background()

	require.NoError(t, ev.Send(ctx, u.ID))
	require.Equal(t, []string{"ada@example.com"}, mailer.verificationTo)
	require.Len(t, mailer.lastCode, 6)

	require.NoError(t, ev.Verify(ctx, mailer.lastCode))
	assert.True(t, u.EmailVerified)

	// the code is single-use
	err := ev.Verify(ctx, mailer.lastCode)
	assert.ErrorIs(t, err, common.ErrInvalidOrExpired)
}

func TestVerifyUnknownCode(t *testing.T) {
	store, mailer, rdb, _, log := testDeps(t)
	ev := NewEmailVerification(store, cache.NewEmailVerificationCache(rdb), mailer, log)

	err := ev.Verify(context.Background(), "000000")
	assert.ErrorIs(t, err, common.ErrInvalidOrExpired)
}

func TestVerifyExpiredCode(t *testing.T) {
	store, mailer, rdb, mr, log := testDeps(t)
	u := store.addUser("ada@example.com", "hashed:pw", false)
	c := cache.NewEmailVerificationCache(rdb)
	ev := NewEmailVerification(store, c, mailer, log)
	ctx := context.Background()

	require.NoError(t, ev.Send(ctx, u.ID))
	mr.FastForward(c.TTL() + 1)

	err := ev.Verify(ctx, mailer.lastCode)
	assert.ErrorIs(t, err, common.ErrInvalidOrExpired)
	assert.False(t, u.EmailVerified)
}

func TestResendSilentOnUnknownEmail(t *testing.T) {
	store, mailer, rdb, _, log := testDeps(t)
	ev := NewEmailVerification(store, cache.NewEmailVerificationCache(rdb), mailer, log)

	require.NoError(t, ev.Resend(context.Background(), "ghost@example.com"))
	assert.Empty(t, mailer.verificationTo, "no mail for unknown addresses")
}

func TestResendConflictWhenVerified(t *testing.T) {
	store, mailer, rdb, _, log := testDeps(t)
	store.addUser("ada@example.com", "hashed:pw", true)
	ev := NewEmailVerification(store, cache.NewEmailVerificationCache(rdb), mailer, log)

	err := ev.Resend(context.Background(), "ada@example.com")
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestResendReplacesPendingCode(t *testing.T) {
	store, mailer, rdb, _, log := testDeps(t)
	u := store.addUser("ada@example.com", "hashed:pw", false)
	ev := NewEmailVerification(store, cache.NewEmailVerificationCache(rdb), mailer, log)
	ctx := context.Background()

	require.NoError(t, ev.Send(ctx, u.ID))
	first := mailer.lastCode
	require.NoError(t, ev.Resend(ctx, "ada@example.com"))
	second := mailer.lastCode

	if first != second {
		err := ev.Verify(ctx, first)
		assert.ErrorIs(t, err, common.ErrInvalidOrExpired, "replaced code must be dead")
	}
	require.NoError(t, ev.Verify(ctx, second))
	assert.True(t, u.EmailVerified)
}

// ===== password reset =====

func TestPasswordResetFlow(t *testing.T) {
	store, mailer, rdb, _, log := testDeps(t)
	refresh := "some-refresh-hash"
	refreshExp := time.Now().Add(time.Hour)
	u := store.addUser("ada@example.com", "hashed:old", true)
	u.RefreshTokenHash = &refresh
	u.RefreshTokenExpiresAt = &refreshExp
	pr := NewPasswordReset(store, cache.NewPasswordResetCache(rdb), mailer, fakeHasher{}, log)
	ctx := context.Background()

	require.NoError(t, pr.Request(ctx, "ada@example.com"))
	require.Equal(t, []string{"ada@example.com"}, mailer.resetTo)
	require.NotEmpty(t, mailer.lastToken)

	require.NoError(t, pr.Reset(ctx, mailer.lastToken, "newpassword"))
	assert.Equal(t, "hashed:newpassword", u.PasswordHash)
	assert.Nil(t, u.RefreshTokenHash, "reset signs out existing sessions")
	assert.Nil(t, u.RefreshTokenExpiresAt)

	// the token is single-use
	err := pr.Reset(ctx, mailer.lastToken, "again")
	assert.ErrorIs(t, err, common.ErrInvalidOrExpired)
}

func TestPasswordResetSilentOnUnknownEmail(t *testing.T) {
	store, mailer, rdb, _, log := testDeps(t)
	pr := NewPasswordReset(store, cache.NewPasswordResetCache(rdb), mailer, fakeHasher{}, log)

	require.NoError(t, pr.Request(context.Background(), "ghost@example.com"))
	assert.Empty(t, mailer.resetTo)
}

func TestSecondResetRequestKillsFirstToken(t *testing.T) {
	store, mailer, rdb, _, log := testDeps(t)
	u := store.addUser("ada@example.com", "hashed:old", true)
	pr := NewPasswordReset(store, cache.NewPasswordResetCache(rdb), mailer, fakeHasher{}, log)
	ctx := context.Background()

	require.NoError(t, pr.Request(ctx, "ada@example.com"))
	first := mailer.lastToken
	require.NoError(t, pr.Request(ctx, "ada@example.com"))
	second := mailer.lastToken
	require.NotEqual(t, first, second)

	err := pr.Reset(ctx, first, "newpassword")
	assert.ErrorIs(t, err, common.ErrInvalidOrExpired)

	require.NoError(t, pr.Reset(ctx, second, "newpassword"))
	assert.Equal(t, "hashed:newpassword", u.PasswordHash)
}

func TestResetUnknownToken(t *testing.T) {
	store, mailer, rdb, _, log := testDeps(t)
	pr := NewPasswordReset(store, cache.NewPasswordResetCache(rdb), mailer, fakeHasher{}, log)

	err := pr.Reset(context.Background(), "deadbeef", "newpassword")
	assert.ErrorIs(t, err, common.ErrInvalidOrExpired)
}

// ===== email change =====

func emailChangeDeps(t *testing.T) (*fakeUserStore, *recordingMailer, *EmailChange, *cache.UserCache, *redis.Client) {
	t.Helper()
	store, mailer, rdb, _, log := testDeps(t)
	users := cache.NewUserCache(rdb)
	ec := NewEmailChange(store, cache.NewEmailChangeCache(rdb), users, mailer, fakeHasher{}, log)
	return store, mailer, ec, users, rdb
}

func TestEmailChangeFlow(t *testing.T) {
	store, mailer, ec, users, _ := emailChangeDeps(t)
	u := store.addUser("old@example.com", "hashed:pw", true)
	ctx := context.Background()
	users.Set(ctx, u)

	require.NoError(t, ec.Request(ctx, u.ID, "pw", "New@Example.com"))
	require.Equal(t, []string{"new@example.com"}, mailer.changeCodeTo, "code goes to the prospective address, lowercased")

	require.NoError(t, ec.Verify(ctx, u.ID, mailer.lastChangeCode))
	assert.Equal(t, "new@example.com", u.Email)
	assert.Equal(t, []string{"old@example.com"}, mailer.notificationOld)
	assert.Equal(t, []string{"new@example.com"}, mailer.notificationNew)
	assert.Nil(t, users.Get(ctx, u.ID), "stale cached read-model must be dropped")

	// the code is single-use
	err := ec.Verify(ctx, u.ID, mailer.lastChangeCode)
	assert.ErrorIs(t, err, common.ErrInvalidOrExpired)
}

func TestEmailChangeWrongPassword(t *testing.T) {
	store, _, ec, _, _ := emailChangeDeps(t)
	u := store.addUser("old@example.com", "hashed:pw", true)

	err := ec.Request(context.Background(), u.ID, "wrong", "new@example.com")
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestEmailChangeSameAddress(t *testing.T) {
	store, _, ec, _, _ := emailChangeDeps(t)
	u := store.addUser("old@example.com", "hashed:pw", true)

	err := ec.Request(context.Background(), u.ID, "pw", "Old@Example.com")
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestEmailChangeAddressTaken(t *testing.T) {
	store, _, ec, _, _ := emailChangeDeps(t)
	u := store.addUser("old@example.com", "hashed:pw", true)
	store.addUser("taken@example.com", "hashed:pw", true)

	err := ec.Request(context.Background(), u.ID, "pw", "taken@example.com")
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestEmailChangeAddressTakenSinceRequest(t *testing.T) {
	store, mailer, ec, _, _ := emailChangeDeps(t)
	u := store.addUser("old@example.com", "hashed:pw", true)
	ctx := context.Background()

	require.NoError(t, ec.Request(ctx, u.ID, "pw", "new@example.com"))
	store.addUser("new@example.com", "hashed:pw", true)

	err := ec.Verify(ctx, u.ID, mailer.lastChangeCode)
	assert.ErrorIs(t, err, common.ErrConflict)
	assert.Equal(t, "old@example.com", u.Email)
}

func TestEmailChangeCodeBoundToUser(t *testing.T) {
	store, mailer, ec, _, _ := emailChangeDeps(t)
	u := store.addUser("old@example.com", "hashed:pw", true)
	other := store.addUser("bob@example.com", "hashed:pw", true)
	ctx := context.Background()

	require.NoError(t, ec.Request(ctx, u.ID, "pw", "new@example.com"))

	// another user presenting a valid code reads as no code at all
	err := ec.Verify(ctx, other.ID, mailer.lastChangeCode)
	assert.ErrorIs(t, err, common.ErrInvalidOrExpired)
	assert.Equal(t, "bob@example.com", other.Email)
}
