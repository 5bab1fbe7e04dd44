package models

import "time"

// Ceremony types for Challenge.Type.
const (
	CeremonyRegistration   = "registration"
	CeremonyAuthentication = "authentication"
)

// Challenge is a single-use random value bound to one WebAuthn ceremony.
// UserID is nil for discoverable (usernameless) authentication.
// Rows past ExpiresAt are never matched by lookups and only linger until
// the next purge for the same user.
type Challenge struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *string   `gorm:"type:uuid;index" json:"userId,omitempty"`
	Type      string    `gorm:"size:16;not null;index" json:"type"`
	Value     string    `gorm:"size:255;not null" json:"-"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Challenge) TableName() string {
	return "auth_challenges"
}
