// Package kv provides small, size-constrained key-value stores.
//
// Every store enforces a byte quota over the keys it owns, mirroring the
// capacity limit of browser local storage: a Set that would push usage past
// the quota fails with ErrQuotaExceeded and leaves the previous value intact.
package kv

import (
	"context"
	"errors"
)

// DefaultQuota matches the usual 5 MiB local storage allowance.
const DefaultQuota = 5 * 1024 * 1024

var (
	ErrQuotaExceeded = errors.New("kv: quota exceeded")
	ErrClosed        = errors.New("kv: store closed")
)

// Store is a string-valued key-value store with a capacity limit.
type Store interface {
	// Get returns the value under key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
	Close() error
}

// entrySize is how much quota one entry consumes.
func entrySize(key, value string) int64 {
	return int64(len(key) + len(value))
}

func overQuota(quota, used int64) bool {
	return quota > 0 && used > quota
}
