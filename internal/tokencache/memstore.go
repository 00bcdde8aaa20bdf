package tokencache

import (
	"sync"
	"time"
)

type memStore struct {
	mutex   sync.RWMutex
	entries map[string]Entry
}

func NewMemStore() Store {
	return &memStore{entries: map[string]Entry{}}
}

func (s *memStore) Put(fingerprint string, expiresAt, registeredAt time.Time) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.entries[fingerprint] = Entry{
		Fingerprint:  fingerprint,
		ExpiresAt:    expiresAt,
		RegisteredAt: registeredAt,
	}
	return nil
}

func (s *memStore) Lookup(fingerprint string) (*Entry, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if entry, found := s.entries[fingerprint]; found {
		return &entry, nil
	}
	return nil, nil
}

func (s *memStore) Evict(fingerprint string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.entries, fingerprint)
	return nil
}

// ExpiredBefore snapshots every entry whose expiry has passed. An entry
// added while the snapshot is taken may be missed; it cannot be expired
// yet and is picked up by a later cycle.
func (s *memStore) ExpiredBefore(now time.Time) ([]Entry, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	var expired []Entry
	for _, entry := range s.entries {
		if !entry.ExpiresAt.After(now) {
			expired = append(expired, entry)
		}
	}
	return expired, nil
}

func (s *memStore) Len() (int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.entries), nil
}

func (s *memStore) Ping() error {
	return nil
}
