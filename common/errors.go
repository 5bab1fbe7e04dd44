package common

import "errors"

// Sentinel errors shared across the service. Handlers map these to HTTP
// statuses; everything else is treated as an internal error.
var (
	// ErrNotFound means the user, credential or record does not exist
	// (soft-deleted users count as absent).
	ErrNotFound = errors.New("not found")
	// ErrInvalidOrExpired means a challenge, code or token is missing,
	// expired or already consumed. Callers never learn which.
	ErrInvalidOrExpired = errors.New("invalid or expired")
	// ErrVerificationFailed means a cryptographic check failed, including
	// a signature counter that did not advance.
	ErrVerificationFailed = errors.New("verification failed")
	// ErrDuplicateCredential means the authenticator-reported credential id
	// is already registered, for any user.
	ErrDuplicateCredential = errors.New("credential already registered")
	// ErrConflict means a domain precondition failed (already verified,
	// email in use, wrong current password, ...).
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredentials means email/password sign-in failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTransientIO means the database, cache or mail backend was
	// unavailable. Safe to retry the whole operation.
	ErrTransientIO = errors.New("backend unavailable")
)
