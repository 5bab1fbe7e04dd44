package models

import "time"

// Credential archives one registered passkey.
// CredentialID / PublicKey / AAGUID are binary, stored as bytea on Postgres.
// The unique index on CredentialID is global, not per user: an authenticator
// must never end up bound to two accounts.
type Credential struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	UserID          string `gorm:"type:uuid;index;not null" json:"userId"`
	CredentialID    []byte `gorm:"uniqueIndex" json:"credentialId"`
	PublicKey       []byte `json:"-"`
	AttestationType string `gorm:"size:64" json:"attestationType"`
	AAGUID          []byte `gorm:"type:bytea" json:"-"`
	SignCount       uint32 `json:"signCount"`
	DeviceType      string `gorm:"size:32" json:"deviceType"`
	BackedUp        bool   `json:"backedUp"`
	TransportsJSON  string `gorm:"type:text" json:"-"`
	Name            string `gorm:"size:255;not null" json:"name"`

	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	LastUsedAt *time.Time `gorm:"index" json:"lastUsedAt,omitempty"`
}

func (Credential) TableName() string {
	return "auth_credentials"
}
