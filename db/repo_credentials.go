package db

import (
	"context"

	"Gin_postgres_redis_auth_service/models"

	"gorm.io/gorm"
)

// Credentials

func (r *Repo) AddCredential(ctx context.Context, c *models.Credential) error {
	return storeErr(r.DB.WithContext(ctx).Create(c).Error)
}

// FindCredentialByCredentialID looks the passkey up by the authenticator's
// raw id, across all users. Backs the global-uniqueness check.
func (r *Repo) FindCredentialByCredentialID(ctx context.Context, credID []byte) (*models.Credential, error) {
	var c models.Credential
	if err := r.DB.WithContext(ctx).Where("credential_id = ?", credID).First(&c).Error; err != nil {
		return nil, storeErr(err)
	}
	return &c, nil
}

func (r *Repo) FindCredential(ctx context.Context, userID string, id uint) (*models.Credential, error) {
	var c models.Credential
	if err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&c).Error; err != nil {
		return nil, storeErr(err)
	}
	return &c, nil
}

func (r *Repo) ListCredentialsForUser(ctx context.Context, userID string) ([]models.Credential, error) {
	var cs []models.Credential
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&cs).Error; err != nil {
		return nil, storeErr(err)
	}
	return cs, nil
}

func (r *Repo) UpdateCredentialCounter(ctx context.Context, credID []byte, newCount uint32) error {
	return storeErr(r.DB.WithContext(ctx).Model(&models.Credential{}).
		Where("credential_id = ?", credID).
		Update("sign_count", newCount).Error)
}

func (r *Repo) TouchCredentialUsed(ctx context.Context, credID []byte) error {
	return storeErr(r.DB.WithContext(ctx).Model(&models.Credential{}).
		Where("credential_id = ?", credID).
		Update("last_used_at", gorm.Expr("NOW()")).Error)
}

func (r *Repo) RenameCredential(ctx context.Context, userID string, id uint, name string) error {
	tx := r.DB.WithContext(ctx).Model(&models.Credential{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("name", name)
	if tx.Error != nil {
		return storeErr(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return storeErr(gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *Repo) DeleteCredential(ctx context.Context, userID string, id uint) error {
	tx := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Credential{})
	if tx.Error != nil {
		return storeErr(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return storeErr(gorm.ErrRecordNotFound)
	}
	return nil
}
