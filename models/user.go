package models

import (
	"time"

	"gorm.io/gorm"
)

// User 's UUID doubles as the WebAuthn userHandle (stored as string, converted
// to []byte when building ceremony options).
type User struct {
	ID            string `gorm:"primaryKey;type:uuid" json:"id"`
	Email         string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	FullName      string `gorm:"size:255" json:"fullName"`
	PasswordHash  string `gorm:"size:255;not null" json:"-"`
	EmailVerified bool   `gorm:"not null;default:false" json:"emailVerified"`

	// SHA-256 of the current refresh token and its deadline; both nil when
	// signed out.
	RefreshTokenHash      *string    `gorm:"size:64" json:"-"`
	RefreshTokenExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Credentials []Credential `json:"-"`
}

func (User) TableName() string {
	return "auth_users"
}
