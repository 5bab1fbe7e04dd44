package db

import (
	"context"
	"time"

	"Gin_postgres_redis_auth_service/models"
)

// Challenges

func (r *Repo) CreateChallenge(ctx context.Context, ch *models.Challenge) error {
	return storeErr(r.DB.WithContext(ctx).Create(ch).Error)
}

// LatestChallenge returns the newest non-expired challenge for an exact owner
// (nil = anonymous) and ceremony type.
func (r *Repo) LatestChallenge(ctx context.Context, userID *string, typ string) (*models.Challenge, error) {
	var ch models.Challenge
	tx := r.DB.WithContext(ctx).Where("type = ? AND expires_at > ?", typ, time.Now())
	if userID != nil {
		tx = tx.Where("user_id = ?", *userID)
	} else {
		tx = tx.Where("user_id IS NULL")
	}
	if err := tx.Order("created_at DESC").First(&ch).Error; err != nil {
		return nil, storeErr(err)
	}
	return &ch, nil
}

// LatestAuthChallengeFor matches either the credential owner's challenge or an
// anonymous one: a discoverable ceremony starts with no known user, and the
// assertion itself binds the response to a credential.
func (r *Repo) LatestAuthChallengeFor(ctx context.Context, userID string) (*models.Challenge, error) {
	var ch models.Challenge
	if err := r.DB.WithContext(ctx).
		Where("type = ? AND expires_at > ?", models.CeremonyAuthentication, time.Now()).
		Where("user_id = ? OR user_id IS NULL", userID).
		Order("created_at DESC").
		First(&ch).Error; err != nil {
		return nil, storeErr(err)
	}
	return &ch, nil
}

func (r *Repo) DeleteChallenge(ctx context.Context, id uint) error {
	return storeErr(r.DB.WithContext(ctx).Delete(&models.Challenge{}, id).Error)
}

// PurgeChallenges removes every challenge of one type owned by the user,
// expired or not. Anonymous challenges are left to age out.
func (r *Repo) PurgeChallenges(ctx context.Context, userID string, typ string) error {
	return storeErr(r.DB.WithContext(ctx).
		Where("user_id = ? AND type = ?", userID, typ).
		Delete(&models.Challenge{}).Error)
}

// DeleteExpiredChallenges garbage-collects rows past their deadline. Called
// from the maintenance route, never from the request path.
func (r *Repo) DeleteExpiredChallenges(ctx context.Context) (int64, error) {
	tx := r.DB.WithContext(ctx).Where("expires_at <= ?", time.Now()).Delete(&models.Challenge{})
	return tx.RowsAffected, storeErr(tx.Error)
}
