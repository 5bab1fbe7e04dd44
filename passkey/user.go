package passkey

import (
	"encoding/json"

	"Gin_postgres_redis_auth_service/models"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
)

// waUser adapts a stored user and their credentials to webauthn.User.
type waUser struct {
	user  *models.User
	creds []webauthn.Credential
}

func newWAUser(u *models.User, cs []models.Credential) *waUser {
	ws := make([]webauthn.Credential, 0, len(cs))
	for _, c := range cs {
		ws = append(ws, toWACredential(c))
	}
	return &waUser{user: u, creds: ws}
}

func (u *waUser) WebAuthnID() []byte {
	id, err := uuid.Parse(u.user.ID)
	if err != nil {
		// IDs are always uuid-generated; a row that fails to parse must
		// still map to a distinct handle, never the zero UUID.
		return []byte(u.user.ID)
	}
	return id[:]
}

func (u *waUser) WebAuthnName() string { return u.user.Email }

func (u *waUser) WebAuthnDisplayName() string {
	if u.user.FullName != "" {
		return u.user.FullName
	}
	return u.user.Email
}

func (u *waUser) WebAuthnCredentials() []webauthn.Credential { return u.creds }

func toWACredential(c models.Credential) webauthn.Credential {
	return webauthn.Credential{
		ID:              c.CredentialID,
		PublicKey:       c.PublicKey,
		AttestationType: c.AttestationType,
		Transport:       decodeTransports(c.TransportsJSON),
		Authenticator: webauthn.Authenticator{
			AAGUID:    c.AAGUID,
			SignCount: c.SignCount,
		},
		Flags: webauthn.CredentialFlags{
			BackupEligible: c.DeviceType == deviceTypeMultiDevice,
			BackupState:    c.BackedUp,
		},
	}
}

func encodeTransports(ts []protocol.AuthenticatorTransport) string {
	if len(ts) == 0 {
		return "[]"
	}
	b, err := json.Marshal(ts)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodeTransports(s string) []protocol.AuthenticatorTransport {
	if s == "" {
		return nil
	}
	var ts []protocol.AuthenticatorTransport
	if err := json.Unmarshal([]byte(s), &ts); err != nil {
		return nil
	}
	return ts
}
