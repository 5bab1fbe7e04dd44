package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"Gin_postgres_redis_auth_service/common"
	"Gin_postgres_redis_auth_service/models"

	"gorm.io/gorm"
)

// Repo is the durable-store adapter over Postgres. Soft-deleted users are
// filtered by GORM's DeletedAt handling, so every query here shares the same
// visibility rule without repeating a predicate.
type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

// storeErr maps driver failures to the shared taxonomy: record absence is
// ErrNotFound, anything else is a retryable I/O failure.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return common.ErrNotFound
	}
	return fmt.Errorf("%w: %v", common.ErrTransientIO, err)
}

// Users

func (r *Repo) CreateUser(ctx context.Context, u *models.User) error {
	return storeErr(r.DB.WithContext(ctx).Create(u).Error)
}

func (r *Repo) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, storeErr(err)
	}
	return &u, nil
}

func (r *Repo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&u).Error; err != nil {
		return nil, storeErr(err)
	}
	return &u, nil
}

func (r *Repo) FindUserByRefreshHash(ctx context.Context, hash string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("refresh_token_hash = ?", hash).First(&u).Error; err != nil {
		return nil, storeErr(err)
	}
	return &u, nil
}

// UpdateUser applies a partial field update by column name.
func (r *Repo) UpdateUser(ctx context.Context, id string, fields map[string]any) error {
	tx := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return storeErr(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

// SoftDeleteUser hides the account; credentials stay until the row is
// actually purged, but lookups through FindUserByID no longer see it.
func (r *Repo) SoftDeleteUser(ctx context.Context, id string) error {
	tx := r.DB.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if tx.Error != nil {
		return storeErr(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}
