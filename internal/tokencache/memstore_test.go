package tokencache

import (
	"testing"
	"time"
)

func TestPutAndLookup(t *testing.T) {
	var store = NewMemStore()
	var now = time.Now()
	var expiresAt = now.Add(5 * time.Minute)

	if err := store.Put("0xabc", expiresAt, now); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	entry, err := store.Lookup("0xabc")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if entry == nil {
		t.Fatal("Lookup returned nil for a stored fingerprint")
	}
	if entry.Fingerprint != "0xabc" {
		t.Errorf("fingerprint = %s, want 0xabc", entry.Fingerprint)
	}
	if !entry.ExpiresAt.Equal(expiresAt) || !entry.RegisteredAt.Equal(now) {
		t.Errorf("unexpected entry times: %+v", entry)
	}
}

func TestLookupUnknown(t *testing.T) {
	var store = NewMemStore()

	entry, err := store.Lookup("0xmissing")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if entry != nil {
		t.Errorf("Lookup = %+v, want nil for unknown fingerprint", entry)
	}
}

func TestPutOverwrites(t *testing.T) {
	var store = NewMemStore()
	var now = time.Now()

	store.Put("0xabc", now.Add(time.Minute), now)
	store.Put("0xabc", now.Add(10*time.Minute), now)

	entry, _ := store.Lookup("0xabc")
	if !entry.ExpiresAt.Equal(now.Add(10 * time.Minute)) {
		t.Errorf("expiry = %v, want the later Put to win", entry.ExpiresAt)
	}
	if count, _ := store.Len(); count != 1 {
		t.Errorf("Len = %d, want 1", count)
	}
}

func TestEvict(t *testing.T) {
	var store = NewMemStore()
	var now = time.Now()

	store.Put("0xabc", now.Add(time.Minute), now)
	if err := store.Evict("0xabc"); err != nil {
		t.Fatalf("Evict failed: %v", err)
	}
	if entry, _ := store.Lookup("0xabc"); entry != nil {
		t.Error("entry still present after Evict")
	}

	// Evicting an absent fingerprint is a no-op.
	if err := store.Evict("0xabc"); err != nil {
		t.Errorf("repeated Evict failed: %v", err)
	}
}

func TestExpiredBefore(t *testing.T) {
	var store = NewMemStore()
	var now = time.Now()

	store.Put("0xpast", now.Add(-time.Minute), now.Add(-6*time.Minute))
	store.Put("0xboundary", now, now.Add(-5*time.Minute))
	store.Put("0xfuture", now.Add(time.Minute), now)

	expired, err := store.ExpiredBefore(now)
	if err != nil {
		t.Fatalf("ExpiredBefore failed: %v", err)
	}
	if len(expired) != 2 {
		t.Fatalf("ExpiredBefore returned %d entries, want 2", len(expired))
	}
	for _, entry := range expired {
		if entry.Fingerprint == "0xfuture" {
			t.Error("entry with future expiry reported as expired")
		}
	}
}

func TestLen(t *testing.T) {
	var store = NewMemStore()
	var now = time.Now()

	if count, _ := store.Len(); count != 0 {
		t.Errorf("Len = %d, want 0 for empty store", count)
	}
	store.Put("0xa", now.Add(time.Minute), now)
	store.Put("0xb", now.Add(time.Minute), now)
	if count, _ := store.Len(); count != 2 {
		t.Errorf("Len = %d, want 2", count)
	}
}
