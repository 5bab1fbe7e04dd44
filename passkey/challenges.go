package passkey

import (
	"context"
	"errors"
	"time"

	"Gin_postgres_redis_auth_service/common"
	"Gin_postgres_redis_auth_service/models"
)

// challengeTTL bounds every ceremony: a signed response arriving after the
// deadline fails, never hangs.
const challengeTTL = 5 * time.Minute

// ChallengeStore is the slice of the durable store the challenge lifecycle
// needs. *db.Repo satisfies it.
type ChallengeStore interface {
	CreateChallenge(ctx context.Context, ch *models.Challenge) error
	LatestChallenge(ctx context.Context, userID *string, typ string) (*models.Challenge, error)
	LatestAuthChallengeFor(ctx context.Context, userID string) (*models.Challenge, error)
	DeleteChallenge(ctx context.Context, id uint) error
	PurgeChallenges(ctx context.Context, userID string, typ string) error
}

// ChallengeManager owns persistence and lifecycle of ceremony challenges.
// The random material itself comes from the WebAuthn provider when the
// ceremony options are built.
type ChallengeManager struct {
	store ChallengeStore
}

func NewChallengeManager(store ChallengeStore) *ChallengeManager {
	return &ChallengeManager{store: store}
}

// Issue persists a fresh challenge. User-owned challenges of the same type
// are purged first so a stale one can never satisfy a later ceremony.
// Anonymous authentication challenges are not purged on issuance; they only
// age out through the TTL.
func (m *ChallengeManager) Issue(ctx context.Context, userID *string, typ, value string) (*models.Challenge, error) {
	if userID != nil {
		if err := m.store.PurgeChallenges(ctx, *userID, typ); err != nil {
			return nil, err
		}
	}
	ch := &models.Challenge{
		UserID:    userID,
		Type:      typ,
		Value:     value,
		ExpiresAt: time.Now().Add(challengeTTL),
	}
	if err := m.store.CreateChallenge(ctx, ch); err != nil {
		return nil, err
	}
	return ch, nil
}

// Active returns the newest live challenge for an exact owner and type, or
// ErrInvalidOrExpired when there is none.
func (m *ChallengeManager) Active(ctx context.Context, userID *string, typ string) (*models.Challenge, error) {
	ch, err := m.store.LatestChallenge(ctx, userID, typ)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrInvalidOrExpired
	}
	return ch, err
}

// ActiveForLogin returns the newest live authentication challenge owned by
// the user or by nobody.
func (m *ChallengeManager) ActiveForLogin(ctx context.Context, userID string) (*models.Challenge, error) {
	ch, err := m.store.LatestAuthChallengeFor(ctx, userID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrInvalidOrExpired
	}
	return ch, err
}

// Consume deletes the challenge. Exactly once per successful ceremony; a
// second ceremony against the same challenge finds nothing and fails.
func (m *ChallengeManager) Consume(ctx context.Context, ch *models.Challenge) error {
	return m.store.DeleteChallenge(ctx, ch.ID)
}
