// Package store defines the persistence abstraction used by linkpreview.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly the
// same []byte that was previously passed to Set for a key (no prepended/appended
// metadata, no re-encoding, no mutation). If a store performs internal transforms
// (e.g., compression), they MUST be fully reversed so that the bytes returned by
// Get are identical to the bytes provided to Set.
//
// The keyspace may be shared with unrelated data. linkpreview writes only under
// its configured namespace prefix and treats every key returned by
// Keys(namespace) as one of its own entries; foreign writes under that prefix
// may be rejected by strict wire-format validation and deleted.
package store

import (
	"context"
	"errors"
)

// ErrQuotaExceeded is returned by Set when the store cannot accept the entry
// because a capacity or quota limit was reached. The cache reacts by running
// an eviction pass; the error never reaches consumers.
var ErrQuotaExceeded = errors.New("store: quota exceeded")

// Store is a minimal byte store with key enumeration.
// Must be safe for concurrent use.
type Store interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key, overwriting any previous value.
	// Returns ErrQuotaExceeded (possibly wrapped) when the store is full.
	Set(ctx context.Context, key string, value []byte) error

	// Del removes a key (best-effort; absent keys are not an error).
	Del(ctx context.Context, key string) error

	// Keys lists all keys starting with prefix. Used for size accounting
	// and bulk eviction scans.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Close releases resources.
	Close(ctx context.Context) error
}
