package tokens

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cwkr/ledger-auth/internal/ledger"
	"github.com/cwkr/ledger-auth/internal/tokencache"
)

// Grant is the result of a successful issuance. The service keeps no copy
// of the token itself, only the cache entry derived from it.
type Grant struct {
	Token     string
	Subject   string
	ExpiresAt time.Time
}

type Validation struct {
	Subject       string
	ExpiresAt     time.Time
	LedgerLatency time.Duration
}

// Service implements the token lifecycle: issuance, two-phase validation
// and revocation, all keyed by the token fingerprint. The ledger is the
// sole source of truth for revocation; the cache mirrors it for the
// sweeper and is never trusted for a positive validation decision.
type Service struct {
	creator TokenCreator
	ledger  ledger.Client
	cache   tokencache.Store
}

func NewService(creator TokenCreator, ledgerClient ledger.Client, cache tokencache.Store) *Service {
	return &Service{
		creator: creator,
		ledger:  ledgerClient,
		cache:   cache,
	}
}

// Issue mints a signed token for subject and registers its fingerprint on
// the ledger. The token is handed out only after the ledger confirms the
// registration; on any failure no token exists and no cache entry is left
// behind.
func (s *Service) Issue(ctx context.Context, subject string) (*Grant, error) {
	rawToken, expiresAt, err := s.creator.GenerateToken(subject)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIssuanceFailed, err)
	}

	var fingerprint = Fingerprint(rawToken)
	if _, err := s.ledger.Register(ctx, fingerprint, expiresAt); err != nil {
		log.Printf("!!! ledger registration failed for %s: %v", fingerprint, err)
		return nil, fmt.Errorf("%w: %v", ErrIssuanceFailed, err)
	}

	// A cache miss here only delays sweeper cleanup; validation is not
	// affected, so a confirmed registration still counts as issued.
	if err := s.cache.Put(fingerprint, expiresAt, time.Now()); err != nil {
		log.Printf("!!! cache insert failed for %s: %v", fingerprint, err)
	}

	return &Grant{Token: rawToken, Subject: subject, ExpiresAt: expiresAt}, nil
}

// Validate checks a presented token in two phases: locally (signature and
// expiry) and then against the ledger. Both must pass. Phase-1 failures
// short-circuit without a ledger call.
func (s *Service) Validate(ctx context.Context, rawToken string) (*Validation, error) {
	if rawToken == "" {
		return nil, ErrTokenMissing
	}

	claims, err := s.creator.Verify(rawToken)
	if err != nil {
		return nil, err
	}

	var fingerprint = Fingerprint(rawToken)
	result, err := s.ledger.Validate(ctx, fingerprint)
	if err != nil {
		log.Printf("!!! ledger validation failed for %s: %v", fingerprint, err)
		return nil, fmt.Errorf("%w: %v", ErrValidationUnavailable, err)
	}
	if !result.Valid {
		// The ledger dropped this fingerprint; the stale mirror entry can go.
		if err := s.cache.Evict(fingerprint); err != nil {
			log.Printf("!!! cache evict failed for %s: %v", fingerprint, err)
		}
		return nil, ErrTokenRevoked
	}

	return &Validation{
		Subject:       claims.Subject,
		ExpiresAt:     claims.Expiry,
		LedgerLatency: result.Latency,
	}, nil
}

// Revoke removes the token's fingerprint from the ledger and evicts the
// cache entry once the removal is confirmed. If the ledger call fails the
// cache entry stays, leaving the sweeper a retry queue. Removing an entry
// the ledger no longer holds succeeds as a no-op.
func (s *Service) Revoke(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return ErrTokenMissing
	}

	var fingerprint = Fingerprint(rawToken)
	if _, err := s.ledger.Remove(ctx, fingerprint); err != nil {
		log.Printf("!!! ledger removal failed for %s: %v", fingerprint, err)
		return fmt.Errorf("%w: %v", ErrRevocationFailed, err)
	}
	if err := s.cache.Evict(fingerprint); err != nil {
		log.Printf("!!! cache evict failed for %s: %v", fingerprint, err)
	}
	return nil
}
