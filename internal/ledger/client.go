package ledger

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnreachable - the registry could not be reached at all: network
	// error, timeout or a 5xx answer. A write must never be assumed
	// durable when this is returned.
	ErrUnreachable = errors.New("ledger unreachable")

	// ErrRejected - the registry reached a decision and refused the
	// operation, e.g. insufficient authorization.
	ErrRejected = errors.New("ledger rejected operation")

	// ErrWriteConflict - the registry reported an ordering conflict for a
	// write (per-account sequencing). Transient; writes are retried.
	ErrWriteConflict = errors.New("ledger write conflict")
)

// WriteResult reports a confirmed register or remove. Latency is advisory
// and carries no correctness weight.
type WriteResult struct {
	Confirmed bool
	Latency   time.Duration
}

// ReadResult reports the registry's current view of a fingerprint.
type ReadResult struct {
	Valid   bool
	Latency time.Duration
}

// Client wraps the three token-registry operations. Register and Remove
// return only after the registry reports durable commitment; Validate is a
// plain read with no write side effects.
type Client interface {
	Register(ctx context.Context, fingerprint string, expiresAt time.Time) (*WriteResult, error)
	Validate(ctx context.Context, fingerprint string) (*ReadResult, error)
	Remove(ctx context.Context, fingerprint string) (*WriteResult, error)
}
