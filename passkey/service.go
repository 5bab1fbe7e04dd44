package passkey

import (
	"context"
	"errors"
	"fmt"

	"Gin_postgres_redis_auth_service/common"
	"Gin_postgres_redis_auth_service/models"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
)

const (
	deviceTypeSingleDevice = "singleDevice"
	deviceTypeMultiDevice  = "multiDevice"

	defaultCredentialName = "Passkey"
)

// Store is the durable-store slice the ceremony engine consumes. *db.Repo
// satisfies it.
type Store interface {
	ChallengeStore

	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)

	AddCredential(ctx context.Context, c *models.Credential) error
	FindCredential(ctx context.Context, userID string, id uint) (*models.Credential, error)
	FindCredentialByCredentialID(ctx context.Context, credID []byte) (*models.Credential, error)
	ListCredentialsForUser(ctx context.Context, userID string) ([]models.Credential, error)
	UpdateCredentialCounter(ctx context.Context, credID []byte, newCount uint32) error
	TouchCredentialUsed(ctx context.Context, credID []byte) error
	RenameCredential(ctx context.Context, userID string, id uint, name string) error
	DeleteCredential(ctx context.Context, userID string, id uint) error
}

// Service runs the WebAuthn registration and authentication ceremonies
// against the durable store.
type Service struct {
	wa     Provider
	parser ResponseParser
	store  Store
	chals  *ChallengeManager
}

func NewService(wa Provider, store Store) *Service {
	return &Service{
		wa:     wa,
		parser: protocolParser{},
		store:  store,
		chals:  NewChallengeManager(store),
	}
}

func sessionFromChallenge(ch *models.Challenge, userHandle []byte) webauthn.SessionData {
	return webauthn.SessionData{
		Challenge: ch.Value,
		UserID:    userHandle,
		Expires:   ch.ExpiresAt,
	}
}

// BeginRegistration builds creation options for adding a passkey to an
// existing account. Credentials already bound to the account go on the
// exclusion list so an authenticator refuses to re-register.
func (s *Service) BeginRegistration(ctx context.Context, userID string) (*protocol.CredentialCreation, error) {
	u, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	creds, err := s.store.ListCredentialsForUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	wu := newWAUser(u, creds)

	opts := []webauthn.RegistrationOption{
		webauthn.WithResidentKeyRequirement(protocol.ResidentKeyRequirementPreferred),
	}
	if len(wu.creds) > 0 {
		excl := make([]protocol.CredentialDescriptor, 0, len(wu.creds))
		for _, c := range wu.creds {
			excl = append(excl, c.Descriptor())
		}
		opts = append(opts, webauthn.WithExclusions(excl))
	}

	creation, sd, err := s.wa.BeginRegistration(wu, opts...)
	if err != nil {
		return nil, fmt.Errorf("begin registration: %w", err)
	}
	if _, err := s.chals.Issue(ctx, &u.ID, models.CeremonyRegistration, sd.Challenge); err != nil {
		return nil, err
	}
	return creation, nil
}

// FinishRegistration verifies the authenticator's attestation response
// against the user's active registration challenge and persists the new
// credential. The challenge is consumed exactly once, afterwards the same
// response can never verify again.
func (s *Service) FinishRegistration(ctx context.Context, userID string, response []byte, name string) (*models.Credential, error) {
	u, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	creds, err := s.store.ListCredentialsForUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	wu := newWAUser(u, creds)

	ch, err := s.chals.Active(ctx, &u.ID, models.CeremonyRegistration)
	if err != nil {
		return nil, err
	}

	parsed, err := s.parser.ParseRegistration(response)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrVerificationFailed, err)
	}

	cred, err := s.wa.CreateCredential(wu, sessionFromChallenge(ch, wu.WebAuthnID()), parsed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrVerificationFailed, err)
	}

	if _, err := s.store.FindCredentialByCredentialID(ctx, cred.ID); err == nil {
		return nil, common.ErrDuplicateCredential
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	if name == "" {
		name = defaultCredentialName
	}
	deviceType := deviceTypeSingleDevice
	if cred.Flags.BackupEligible {
		deviceType = deviceTypeMultiDevice
	}
	rec := &models.Credential{
		UserID:          u.ID,
		CredentialID:    cred.ID,
		PublicKey:       cred.PublicKey,
		AttestationType: cred.AttestationType,
		AAGUID:          cred.Authenticator.AAGUID,
		SignCount:       cred.Authenticator.SignCount,
		DeviceType:      deviceType,
		BackedUp:        cred.Flags.BackupState,
		TransportsJSON:  encodeTransports(cred.Transport),
		Name:            name,
	}
	if err := s.store.AddCredential(ctx, rec); err != nil {
		return nil, err
	}
	if err := s.chals.Consume(ctx, ch); err != nil {
		return nil, err
	}
	return rec, nil
}

// BeginAuthentication builds assertion options. With an email the ceremony is
// scoped to that account and its credentials; without one it is discoverable
// and the challenge carries no owner.
func (s *Service) BeginAuthentication(ctx context.Context, email string) (*protocol.CredentialAssertion, error) {
	if email == "" {
		assertion, sd, err := s.wa.BeginDiscoverableLogin()
		if err != nil {
			return nil, fmt.Errorf("begin discoverable login: %w", err)
		}
		if _, err := s.chals.Issue(ctx, nil, models.CeremonyAuthentication, sd.Challenge); err != nil {
			return nil, err
		}
		return assertion, nil
	}

	u, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	creds, err := s.store.ListCredentialsForUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if len(creds) == 0 {
		return nil, fmt.Errorf("%w: no passkeys registered", common.ErrNotFound)
	}
	wu := newWAUser(u, creds)

	assertion, sd, err := s.wa.BeginLogin(wu)
	if err != nil {
		return nil, fmt.Errorf("begin login: %w", err)
	}
	if _, err := s.chals.Issue(ctx, &u.ID, models.CeremonyAuthentication, sd.Challenge); err != nil {
		return nil, err
	}
	return assertion, nil
}

// FinishAuthentication resolves the claimed credential, verifies the signed
// assertion against the freshest live challenge for the credential's owner
// (or an anonymous one), and advances the signature counter. A counter that
// does not strictly advance fails verification even when the signature is
// valid: that is the cloned-authenticator defense.
func (s *Service) FinishAuthentication(ctx context.Context, response []byte) (string, error) {
	parsed, err := s.parser.ParseAssertion(response)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrVerificationFailed, err)
	}

	stored, err := s.store.FindCredentialByCredentialID(ctx, parsed.RawID)
	if err != nil {
		return "", err
	}
	owner, err := s.store.FindUserByID(ctx, stored.UserID)
	if err != nil {
		return "", err
	}
	ch, err := s.chals.ActiveForLogin(ctx, owner.ID)
	if err != nil {
		return "", err
	}

	creds, err := s.store.ListCredentialsForUser(ctx, owner.ID)
	if err != nil {
		return "", err
	}
	wu := newWAUser(owner, creds)

	sd := sessionFromChallenge(ch, nil)
	var cred *webauthn.Credential
	if ch.UserID != nil {
		sd.UserID = wu.WebAuthnID()
		cred, err = s.wa.ValidateLogin(wu, sd, parsed)
	} else {
		handler := func(rawID, userHandle []byte) (webauthn.User, error) { return wu, nil }
		_, cred, err = s.wa.ValidatePasskeyLogin(handler, sd, parsed)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrVerificationFailed, err)
	}

	if cred.Authenticator.SignCount <= stored.SignCount {
		return "", fmt.Errorf("%w: signature counter did not advance", common.ErrVerificationFailed)
	}

	if err := s.store.UpdateCredentialCounter(ctx, stored.CredentialID, cred.Authenticator.SignCount); err != nil {
		return "", err
	}
	if err := s.store.TouchCredentialUsed(ctx, stored.CredentialID); err != nil {
		return "", err
	}
	if err := s.chals.Consume(ctx, ch); err != nil {
		return "", err
	}
	return owner.ID, nil
}

// List returns the user's passkeys, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]models.Credential, error) {
	return s.store.ListCredentialsForUser(ctx, userID)
}

// Rename updates the user-assigned label of one passkey.
func (s *Service) Rename(ctx context.Context, userID string, id uint, name string) error {
	if name == "" {
		name = defaultCredentialName
	}
	return s.store.RenameCredential(ctx, userID, id, name)
}

// Delete removes one of the user's passkeys.
func (s *Service) Delete(ctx context.Context, userID string, id uint) error {
	if _, err := s.store.FindCredential(ctx, userID, id); err != nil {
		return err
	}
	return s.store.DeleteCredential(ctx, userID, id)
}
