package tokens

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/cwkr/ledger-auth/internal/ledger"
	"github.com/cwkr/ledger-auth/internal/tokencache"
)

// Sweeper reconciles the cache with the ledger on a fixed interval: every
// cache entry whose expiry has passed gets a ledger removal, and is
// evicted once the removal is confirmed. Entries whose removal fails stay
// in the cache and are retried on a later cycle.
type Sweeper struct {
	cache    tokencache.Store
	ledger   ledger.Client
	interval time.Duration
	cycle    sync.Mutex
}

func NewSweeper(cache tokencache.Store, ledgerClient ledger.Client, interval time.Duration) *Sweeper {
	return &Sweeper{
		cache:    cache,
		ledger:   ledgerClient,
		interval: interval,
	}
}

func (s *Sweeper) Run(ctx context.Context) {
	log.Printf("sweeping expired tokens every %v", s.interval)
	var ticker = time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx, time.Now())
		}
	}
}

// Sweep runs a single scan-and-remove cycle. A cycle still in progress
// suppresses the new one entirely; cycles never overlap. Entries with a
// future expiry are never touched, and one entry's failure does not stop
// the rest of the cycle.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (removed, failed int) {
	if !s.cycle.TryLock() {
		log.Printf("sweep cycle still in progress, skipping")
		return 0, 0
	}
	defer s.cycle.Unlock()

	expired, err := s.cache.ExpiredBefore(now)
	if err != nil {
		log.Printf("!!! cache scan failed: %v", err)
		return 0, 0
	}
	if len(expired) == 0 {
		log.Printf("no expired tokens to remove")
		return 0, 0
	}

	for _, entry := range expired {
		if _, err := s.ledger.Remove(ctx, entry.Fingerprint); err != nil {
			log.Printf("!!! failed to remove expired token %s: %v", entry.Fingerprint, err)
			failed++
			continue
		}
		if err := s.cache.Evict(entry.Fingerprint); err != nil {
			log.Printf("!!! cache evict failed for %s: %v", entry.Fingerprint, err)
		}
		removed++
	}

	log.Printf("sweep cycle done: %d removed, %d failed", removed, failed)
	return removed, failed
}
