package tokens

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cwkr/ledger-auth/internal/ledger"
	"github.com/cwkr/ledger-auth/internal/tokencache"
)

// stubLedger is an in-memory registry with per-operation call counts and
// injectable failures.
type stubLedger struct {
	mutex        sync.Mutex
	entries      map[string]time.Time
	registers    int
	validates    int
	removes      int
	registerErr  error
	validateErr  error
	removeErr    error
	removeErrFor map[string]error
}

func newStubLedger() *stubLedger {
	return &stubLedger{entries: map[string]time.Time{}}
}

func (s *stubLedger) Register(ctx context.Context, fingerprint string, expiresAt time.Time) (*ledger.WriteResult, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.registers++
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	s.entries[fingerprint] = expiresAt
	return &ledger.WriteResult{Confirmed: true, Latency: time.Millisecond}, nil
}

func (s *stubLedger) Validate(ctx context.Context, fingerprint string) (*ledger.ReadResult, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.validates++
	if s.validateErr != nil {
		return nil, s.validateErr
	}
	var _, found = s.entries[fingerprint]
	return &ledger.ReadResult{Valid: found, Latency: time.Millisecond}, nil
}

func (s *stubLedger) Remove(ctx context.Context, fingerprint string) (*ledger.WriteResult, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.removes++
	if s.removeErr != nil {
		return nil, s.removeErr
	}
	if err := s.removeErrFor[fingerprint]; err != nil {
		return nil, err
	}
	delete(s.entries, fingerprint)
	return &ledger.WriteResult{Confirmed: true, Latency: time.Millisecond}, nil
}

func (s *stubLedger) holds(fingerprint string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	var _, found = s.entries[fingerprint]
	return found
}

func newTestService(t *testing.T, tokenTTL int64) (*Service, *stubLedger, tokencache.Store) {
	t.Helper()
	var stub = newStubLedger()
	var cache = tokencache.NewMemStore()
	return NewService(newTestCreator(t, tokenTTL), stub, cache), stub, cache
}

func cacheLen(t *testing.T, cache tokencache.Store) int {
	t.Helper()
	var count, err = cache.Len()
	if err != nil {
		t.Fatalf("cache Len failed: %v", err)
	}
	return count
}

func TestIssueThenValidate(t *testing.T) {
	var service, stub, cache = newTestService(t, 300)

	grant, err := service.Issue(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if grant.Subject != "alice" {
		t.Errorf("grant subject = %s, want alice", grant.Subject)
	}
	if !stub.holds(Fingerprint(grant.Token)) {
		t.Error("fingerprint not registered on ledger")
	}
	if cacheLen(t, cache) != 1 {
		t.Errorf("cache holds %d entries, want 1", cacheLen(t, cache))
	}

	validation, err := service.Validate(context.Background(), grant.Token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if validation.Subject != "alice" {
		t.Errorf("validation subject = %s, want alice", validation.Subject)
	}
	if stub.validates != 1 {
		t.Errorf("ledger validate calls = %d, want 1", stub.validates)
	}
}

func TestValidateMissingToken(t *testing.T) {
	var service, stub, _ = newTestService(t, 300)

	if _, err := service.Validate(context.Background(), ""); !errors.Is(err, ErrTokenMissing) {
		t.Errorf("Validate = %v, want ErrTokenMissing", err)
	}
	if stub.validates != 0 {
		t.Errorf("ledger validate calls = %d, want 0", stub.validates)
	}
}

func TestValidateExpiredSkipsLedger(t *testing.T) {
	var service, stub, _ = newTestService(t, -10)

	grant, err := service.Issue(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := service.Validate(context.Background(), grant.Token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Validate = %v, want ErrTokenExpired", err)
	}
	if stub.validates != 0 {
		t.Errorf("ledger validate calls = %d, want 0 after local expiry", stub.validates)
	}
}

func TestValidateRevokedBeforeExpiry(t *testing.T) {
	var service, _, _ = newTestService(t, 300)

	grant, err := service.Issue(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if err := service.Revoke(context.Background(), grant.Token); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}

	if _, err := service.Validate(context.Background(), grant.Token); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("Validate = %v, want ErrTokenRevoked", err)
	}
}

func TestValidateEvictsCacheOnLedgerRejection(t *testing.T) {
	var service, stub, cache = newTestService(t, 300)

	grant, err := service.Issue(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Registry entry disappears out of band; the cache still mirrors it.
	stub.mutex.Lock()
	delete(stub.entries, Fingerprint(grant.Token))
	stub.mutex.Unlock()

	if _, err := service.Validate(context.Background(), grant.Token); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("Validate = %v, want ErrTokenRevoked", err)
	}
	if cacheLen(t, cache) != 0 {
		t.Error("stale cache entry not evicted after ledger rejection")
	}
}

func TestValidateUnavailableIsNotRevoked(t *testing.T) {
	var service, stub, cache = newTestService(t, 300)

	grant, err := service.Issue(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	stub.validateErr = ledger.ErrUnreachable
	_, err = service.Validate(context.Background(), grant.Token)
	if !errors.Is(err, ErrValidationUnavailable) {
		t.Errorf("Validate = %v, want ErrValidationUnavailable", err)
	}
	if errors.Is(err, ErrTokenRevoked) {
		t.Error("outage must not be reported as revocation")
	}
	if cacheLen(t, cache) != 1 {
		t.Error("cache entry must survive a ledger outage")
	}
}

func TestIssueFailsClosed(t *testing.T) {
	var service, stub, cache = newTestService(t, 300)
	stub.registerErr = ledger.ErrUnreachable

	grant, err := service.Issue(context.Background(), "alice")
	if !errors.Is(err, ErrIssuanceFailed) {
		t.Errorf("Issue = %v, want ErrIssuanceFailed", err)
	}
	if grant != nil {
		t.Error("no grant may exist without a confirmed registration")
	}
	if cacheLen(t, cache) != 0 {
		t.Error("no cache entry may exist without a confirmed registration")
	}
}

func TestRevokeIdempotent(t *testing.T) {
	var service, _, _ = newTestService(t, 300)

	grant, err := service.Issue(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if err := service.Revoke(context.Background(), grant.Token); err != nil {
		t.Fatalf("first Revoke failed: %v", err)
	}
	if err := service.Revoke(context.Background(), grant.Token); err != nil {
		t.Fatalf("second Revoke failed: %v", err)
	}
}

func TestRevokeFailureKeepsCacheEntry(t *testing.T) {
	var service, stub, cache = newTestService(t, 300)

	grant, err := service.Issue(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	stub.removeErr = ledger.ErrUnreachable
	if err := service.Revoke(context.Background(), grant.Token); !errors.Is(err, ErrRevocationFailed) {
		t.Errorf("Revoke = %v, want ErrRevocationFailed", err)
	}
	if cacheLen(t, cache) != 1 {
		t.Error("cache entry must stay as the sweeper's retry queue")
	}
}
