// Package provider defines the byte store behind store.Store.
//
// Implementations must be byte-for-byte transparent: Get returns exactly the
// bytes given to Set for that key. Any internal transform such as
// compression has to be reversed before Get returns.
//
// The keyspaces "single:<ns>:" and "bulk:<ns>:" belong to the store. Foreign
// values under those prefixes fail frame validation and get deleted.
package provider

import (
	"context"
	"time"
)

// Provider is a minimal byte store with TTLs, safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit and (nil, false, nil) on miss.
	// IO or remote failures return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL; cost may be ignored.
	// ok=false means the store dropped the write under pressure.
	Set(ctx context.Context, key string, value []byte, cost int64, ttl time.Duration) (ok bool, err error)

	// Del removes a key. Deleting a missing key is not an error.
	Del(ctx context.Context, key string) error

	Close(ctx context.Context) error
}
