package tokens

import "errors"

var (
	// Phase-1 failures, resolved locally without a ledger round-trip.
	ErrTokenMissing          = errors.New("no token presented")
	ErrTokenInvalidSignature = errors.New("token signature verification failed")
	ErrTokenExpired          = errors.New("token expired")

	// ErrTokenRevoked - the ledger no longer holds the fingerprint. This is
	// an authoritative rejection, not an outage.
	ErrTokenRevoked = errors.New("token revoked or unknown to ledger")

	// ErrValidationUnavailable - the ledger could not answer. Still treated
	// as not authenticated; the distinction exists for observability and
	// caller retry policy only.
	ErrValidationUnavailable = errors.New("ledger unavailable for validation")

	ErrIssuanceFailed   = errors.New("token issuance failed")
	ErrRevocationFailed = errors.New("token revocation failed")
)
