package tokencache

import (
	"time"
)

// Entry mirrors a registry entry for one fingerprint. The cache is not
// authoritative: it exists so the expiry sweeper can address registry
// entries without scanning the registry itself, and it may lag a
// registry-side removal until the next sweep.
type Entry struct {
	Fingerprint  string
	ExpiresAt    time.Time
	RegisteredAt time.Time
}

type Store interface {
	Put(fingerprint string, expiresAt, registeredAt time.Time) error
	Lookup(fingerprint string) (*Entry, error)
	Evict(fingerprint string) error
	ExpiredBefore(now time.Time) ([]Entry, error)
	Len() (int, error)
	Ping() error
}
